package httpurl

import "fmt"

// ParseErrorKind identifies why a URL was rejected.
type ParseErrorKind int

const (
	// EmptyURL means the input string was empty.
	EmptyURL ParseErrorKind = iota
	// InvalidScheme means the scheme was missing or not http/https.
	InvalidScheme
	// IllFormed means the input could not be decomposed into URL components.
	IllFormed
	// InvalidPort means the port was not a number in 1-65535.
	InvalidPort
)

func (k ParseErrorKind) String() string {
	switch k {
	case EmptyURL:
		return "empty url"
	case InvalidScheme:
		return "invalid scheme"
	case IllFormed:
		return "ill-formed url"
	case InvalidPort:
		return "invalid port"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", int(k))
	}
}

// ParseError is returned by Parse and the decoding helpers.
type ParseError struct {
	Kind   ParseErrorKind
	Input  string
	Detail string
}

// Sentinels usable with errors.Is; they match any *ParseError of the same kind.
var (
	ErrEmptyURL      = &ParseError{Kind: EmptyURL}
	ErrInvalidScheme = &ParseError{Kind: InvalidScheme}
	ErrIllFormed     = &ParseError{Kind: IllFormed}
	ErrInvalidPort   = &ParseError{Kind: InvalidPort}
)

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parse url %q: %s", e.Input, e.Kind)
	}
	return fmt.Sprintf("parse url %q: %s: %s", e.Input, e.Kind, e.Detail)
}

// Is reports whether target is a *ParseError with the same Kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ParseErrorKind, input, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:   kind,
		Input:  input,
		Detail: fmt.Sprintf(format, args...),
	}
}
