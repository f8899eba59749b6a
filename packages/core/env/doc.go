// Package env loads .env files and interpolates variables into strings.
//
// It provides functionality for:
//   - Loading environment files (.env, .env.local, etc.)
//   - Variable interpolation using {{name}}, {{$ENV}} and ${NAME} syntax
//   - Defaults with ${NAME:-fallback}
package env
