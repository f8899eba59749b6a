package reqerr

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// ConnCode is a coarse, display-only classification of a transport failure.
type ConnCode int

const (
	Unknown ConnCode = iota
	Timeout
	Refused
	Reset
	Resolution
	TLS
	Canceled
)

func (c ConnCode) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case Refused:
		return "connection refused"
	case Reset:
		return "connection reset"
	case Resolution:
		return "name resolution failed"
	case TLS:
		return "tls failure"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ConnectionError is the transport-reported cause behind a Connection error.
type ConnectionError struct {
	Code ConnCode
	Op   string
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		msg = e.Op + " " + e.Addr + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Classify wraps err as a ConnectionError with a best-effort Code.
func Classify(op, addr string, err error) *ConnectionError {
	return &ConnectionError{Code: codeOf(err), Op: op, Addr: addr, Err: err}
}

func codeOf(err error) ConnCode {
	var (
		dnsErr    *net.DNSError
		unknownCA x509.UnknownAuthorityError
		hostErr   x509.HostnameError
		certErr   x509.CertificateInvalidError
		verifyErr *tls.CertificateVerificationError
		recordErr tls.RecordHeaderError
		netErr    net.Error
	)

	switch {
	case errors.Is(err, context.Canceled):
		return Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.As(err, &dnsErr):
		return Resolution
	case errors.Is(err, syscall.ECONNREFUSED):
		return Refused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return Reset
	case errors.As(err, &unknownCA), errors.As(err, &hostErr), errors.As(err, &certErr),
		errors.As(err, &verifyErr), errors.As(err, &recordErr):
		return TLS
	case errors.As(err, &netErr) && netErr.Timeout():
		return Timeout
	}
	return Unknown
}

// Wrap is shorthand for Connect(Classify(op, addr, err)).
func Wrap(op, addr string, err error) *Error {
	return Connect(Classify(op, addr, err))
}
