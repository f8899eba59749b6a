package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

// Exit codes for hitcore CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitFailure indicates a failed check, such as an unexpected status
	// or a JSON document that does not match
	ExitFailure = 1

	// ExitBuildError indicates a URL or request that failed validation
	ExitBuildError = 2

	// ExitConfigError indicates a configuration or .env error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitJSONError indicates JSON that could not be parsed or navigated
	ExitJSONError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type configError struct{ err error }

func (e *configError) Error() string { return "config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// reportedError carries an exit code for a failure the command already
// printed.
type reportedError struct {
	code int
	err  error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// report prints err through the session formatter and marks it as printed.
func report(code int, err error) error {
	current.formatter.FormatError(err)
	return &reportedError{code: code, err: err}
}

// ExitCodeFor maps an error returned by a command to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var reported *reportedError
	if errors.As(err, &reported) {
		return reported.code
	}
	var cfgErr *configError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	kind, ok := reqerr.KindOf(err)
	if !ok {
		return ExitFailure
	}
	switch kind {
	case reqerr.URLParse:
		return ExitBuildError
	case reqerr.RequestBuild:
		if b, _ := reqerr.BuildKindOf(err); b == reqerr.InvalidResponse {
			return ExitFailure
		}
		return ExitBuildError
	case reqerr.Connection:
		return ExitNetworkError
	case reqerr.JSONParse, reqerr.JSONGet, reqerr.JSONFind, reqerr.JSONSearch, reqerr.JSONWrongType:
		return ExitJSONError
	default:
		return ExitFailure
	}
}
