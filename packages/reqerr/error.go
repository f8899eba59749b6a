// Package reqerr is the single error taxonomy shared by URL parsing, request
// building, JSON navigation and the transport.
package reqerr

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/hitcore/packages/httpurl"
	"github.com/abdul-hamid-achik/hitcore/packages/jsondoc"
)

// Kind names the subsystem that failed.
type Kind int

const (
	Generic Kind = iota
	Connection
	RequestBuild
	URLParse
	JSONParse
	JSONGet
	JSONFind
	JSONSearch
	JSONWrongType
)

func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case Connection:
		return "connection"
	case RequestBuild:
		return "request build"
	case URLParse:
		return "url parse"
	case JSONParse:
		return "json parse"
	case JSONGet:
		return "json get"
	case JSONFind:
		return "json find"
	case JSONSearch:
		return "json search"
	case JSONWrongType:
		return "json wrong type"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// BuildKind refines RequestBuild. The zero value is reserved so that a
// target of &Error{Kind: RequestBuild} matches every build error in errors.Is.
type BuildKind int

const (
	InvalidResponse BuildKind = iota + 1
	InvalidVersion
	InvalidHeaders
	VersionNeedsContentLength
	InvalidMethod
)

func (b BuildKind) String() string {
	switch b {
	case InvalidResponse:
		return "invalid response"
	case InvalidVersion:
		return "invalid version"
	case InvalidHeaders:
		return "invalid headers"
	case VersionNeedsContentLength:
		return "version needs content-length"
	case InvalidMethod:
		return "invalid method"
	default:
		return fmt.Sprintf("BuildKind(%d)", int(b))
	}
}

// Error carries exactly one populated case, selected by Kind:
//
//	Connection     Conn
//	RequestBuild   Build, Detail
//	URLParse       URL
//	JSON*          JSON (one of the jsondoc error types)
//	Generic        Message
type Error struct {
	Kind    Kind
	Build   BuildKind
	Detail  string
	URL     *httpurl.ParseError
	JSON    error
	Conn    *ConnectionError
	Message string

	cause error
}

// Targets for errors.Is.
var (
	ErrGeneric       = &Error{Kind: Generic}
	ErrConnection    = &Error{Kind: Connection}
	ErrRequestBuild  = &Error{Kind: RequestBuild}
	ErrURLParse      = &Error{Kind: URLParse}
	ErrJSONParse     = &Error{Kind: JSONParse}
	ErrJSONGet       = &Error{Kind: JSONGet}
	ErrJSONFind      = &Error{Kind: JSONFind}
	ErrJSONSearch    = &Error{Kind: JSONSearch}
	ErrJSONWrongType = &Error{Kind: JSONWrongType}

	ErrInvalidResponse           = &Error{Kind: RequestBuild, Build: InvalidResponse}
	ErrInvalidVersion            = &Error{Kind: RequestBuild, Build: InvalidVersion}
	ErrInvalidHeaders            = &Error{Kind: RequestBuild, Build: InvalidHeaders}
	ErrVersionNeedsContentLength = &Error{Kind: RequestBuild, Build: VersionNeedsContentLength}
	ErrInvalidMethod             = &Error{Kind: RequestBuild, Build: InvalidMethod}
)

func (e *Error) Error() string {
	switch e.Kind {
	case Connection:
		if e.Conn == nil {
			return "connection error"
		}
		return "connection error: " + e.Conn.Error()
	case RequestBuild:
		if e.Detail == "" {
			return "request build: " + e.Build.String()
		}
		return "request build: " + e.Build.String() + ": " + e.Detail
	case URLParse:
		if e.URL == nil {
			return "url parse error"
		}
		return e.URL.Error()
	case JSONParse, JSONGet, JSONFind, JSONSearch, JSONWrongType:
		if e.JSON == nil {
			return e.Kind.String() + " error"
		}
		return e.JSON.Error()
	default:
		if e.Message == "" {
			return "request error"
		}
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	switch {
	case e.Conn != nil:
		return e.Conn
	case e.URL != nil:
		return e.URL
	case e.JSON != nil:
		return e.JSON
	}
	return e.cause
}

// Is matches targets of the same Kind. For RequestBuild a target with a
// non-zero Build must also agree on it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	if t.Kind == RequestBuild && t.Build != 0 {
		return t.Build == e.Build
	}
	return true
}

// Build returns a RequestBuild error.
func Build(kind BuildKind, detail string) *Error {
	return &Error{Kind: RequestBuild, Build: kind, Detail: detail}
}

// Buildf is Build with a formatted detail.
func Buildf(kind BuildKind, format string, args ...any) *Error {
	return Build(kind, fmt.Sprintf(format, args...))
}

// Connect wraps a transport failure.
func Connect(c *ConnectionError) *Error {
	return &Error{Kind: Connection, Conn: c}
}

// New returns a Generic error.
func New(msg string) *Error {
	return &Error{Kind: Generic, Message: msg}
}

// Newf is New with formatting. A %w verb is kept as the unwrap cause.
func Newf(format string, args ...any) *Error {
	wrapped := fmt.Errorf(format, args...)
	return &Error{Kind: Generic, Message: wrapped.Error(), cause: errors.Unwrap(wrapped)}
}

// From classifies err into its single case. Errors already of type *Error
// anywhere in the chain are returned as is; unknown errors become Generic.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var re *Error
	if errors.As(err, &re) {
		return re
	}

	var (
		urlErr   *httpurl.ParseError
		connErr  *ConnectionError
		parseErr *jsondoc.ParseError
		getErr   *jsondoc.GetError
		findErr  *jsondoc.FindError
		srchErr  *jsondoc.SearchError
		typeErr  *jsondoc.WrongTypeError
	)
	switch {
	case errors.As(err, &urlErr):
		return &Error{Kind: URLParse, URL: urlErr}
	case errors.As(err, &connErr):
		return &Error{Kind: Connection, Conn: connErr}
	case errors.As(err, &parseErr):
		return &Error{Kind: JSONParse, JSON: parseErr}
	case errors.As(err, &getErr):
		return &Error{Kind: JSONGet, JSON: getErr}
	case errors.As(err, &findErr):
		return &Error{Kind: JSONFind, JSON: findErr}
	case errors.As(err, &srchErr):
		return &Error{Kind: JSONSearch, JSON: srchErr}
	case errors.As(err, &typeErr):
		return &Error{Kind: JSONWrongType, JSON: typeErr}
	}
	return &Error{Kind: Generic, Message: err.Error(), cause: err}
}

// KindOf reports the Kind err classifies as. ok is false for nil.
func KindOf(err error) (kind Kind, ok bool) {
	if err == nil {
		return Generic, false
	}
	return From(err).Kind, true
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// BuildKindOf returns the build sub-kind of a RequestBuild error.
func BuildKindOf(err error) (BuildKind, bool) {
	if k, ok := KindOf(err); !ok || k != RequestBuild {
		return 0, false
	}
	return From(err).Build, true
}
