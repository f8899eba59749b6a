// Package config handles configuration loading and management for hitcore.
//
// It provides functionality for:
//   - Loading configuration from .hitcore.yaml, .hitcore.yml or hitcore.config.json
//   - Default configuration values
//   - Turning a configuration into HTTP client options
package config
