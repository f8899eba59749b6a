package http

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcore/packages/jsondoc"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Headers    *Headers
	Body       []byte
	Duration   time.Duration
	RequestID  string
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// JSON parses the body. Failures are *reqerr.Error with Kind JSONParse.
func (r *Response) JSON() (*jsondoc.Document, error) {
	doc, err := jsondoc.Parse(r.Body)
	if err != nil {
		return nil, reqerr.From(err)
	}
	return doc, nil
}

func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
