// Package cmd implements the hitcore CLI commands using Cobra.
//
// Available commands:
//   - request: Build, validate and send a single HTTP request
//   - bench: Send one request repeatedly and report latency percentiles
//   - url: Parse a URL and print its components
//   - json: Navigate, validate and compare JSON documents
//   - init: Create a starter config and .env file
//   - version: Show hitcore version information
//   - completion: Generate shell completion scripts
//
// Global flags select the config file, the .env file used for variable
// interpolation, the output format and verbosity.
package cmd
