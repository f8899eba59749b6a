// Package curl turns curl command lines into validated requests and back.
package curl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitcore/packages/http"
)

// ErrNoURL is returned when a command line has no http or https URL.
var ErrNoURL = errors.New("no URL found in curl command")

// Command is the subset of a curl invocation that maps onto a request.
type Command struct {
	Method          string
	URL             string
	Version         string
	Headers         *http.Headers
	Body            string
	BasicAuth       string
	Insecure        bool
	FollowRedirects bool
	explicitMethod  bool
}

// valueFlags take the next token as their argument.
var valueFlags = map[string]bool{
	"-X": true, "--request": true,
	"-H": true, "--header": true,
	"-d": true, "--data": true, "--data-raw": true, "--data-binary": true, "--json": true,
	"-u": true, "--user": true,
	"-A": true, "--user-agent": true,
	"-e": true, "--referer": true,
	"-b": true, "--cookie": true,
}

// Parse reads a curl command line. The leading "curl" is optional and
// backslash-newline continuations are accepted.
func Parse(cmdline string) (*Command, error) {
	cmdline = strings.ReplaceAll(cmdline, "\\\n", " ")
	tokens := tokenize(strings.TrimSpace(cmdline))
	if len(tokens) > 0 && tokens[0] == "curl" {
		tokens = tokens[1:]
	}

	c := &Command{
		Method:  "GET",
		Headers: http.NewHeaders(),
	}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if valueFlags[token] {
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("missing value for %s", token)
			}
			i++
			if err := c.apply(token, tokens[i]); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case token == "-k" || token == "--insecure":
			c.Insecure = true
		case token == "-L" || token == "--location":
			c.FollowRedirects = true
		case token == "-I" || token == "--head":
			c.Method = "HEAD"
			c.explicitMethod = true
		case token == "--http1.0" || token == "-0":
			c.Version = "HTTP/1.0"
		case token == "--http1.1":
			c.Version = "HTTP/1.1"
		case token == "--http2":
			c.Version = "HTTP/2"
		case strings.HasPrefix(token, "-"):
			// Unknown switches are ignored.
		case c.URL == "" && isURL(token):
			c.URL = token
		}
	}

	if c.URL == "" {
		return nil, ErrNoURL
	}
	return c, nil
}

func (c *Command) apply(flag, value string) error {
	switch flag {
	case "-X", "--request":
		c.Method = strings.ToUpper(value)
		c.explicitMethod = true
	case "-H", "--header":
		name, v, err := http.ParseHeaderLine(value)
		if err != nil {
			return err
		}
		c.Headers.Add(name, v)
	case "-d", "--data", "--data-raw", "--data-binary", "--json":
		if c.Body != "" {
			c.Body += "&"
		}
		c.Body += value
		if !c.explicitMethod {
			c.Method = "POST"
		}
		if flag == "--json" {
			c.Headers.Set("Content-Type", "application/json")
			c.Headers.Set("Accept", "application/json")
		}
	case "-u", "--user":
		c.BasicAuth = value
	case "-A", "--user-agent":
		c.Headers.Set("User-Agent", value)
	case "-e", "--referer":
		c.Headers.Set("Referer", value)
	case "-b", "--cookie":
		c.Headers.Add("Cookie", value)
	}
	return nil
}

// Builder returns a request builder preloaded with the command.
func (c *Command) Builder() *http.Builder {
	b := http.NewBuilder(c.Method, c.URL).Headers(c.Headers)
	if c.Version != "" {
		b.VersionString(c.Version)
	}
	if c.Body != "" {
		b.BodyString(c.Body)
	}
	if c.BasicAuth != "" {
		user, pass, _ := strings.Cut(c.BasicAuth, ":")
		b.BasicAuth(user, pass)
	}
	return b
}

// Format renders req as a curl command line.
func Format(req *http.Request) string {
	parts := []string{"curl"}
	if req.Method() != "GET" || req.HasBody() {
		parts = append(parts, "-X", req.Method())
	}
	switch req.Version() {
	case http.HTTP10:
		parts = append(parts, "--http1.0")
	case http.HTTP2:
		parts = append(parts, "--http2")
	}
	req.Headers().Each(func(name, value string) {
		parts = append(parts, "-H", quote(name+": "+value))
	})
	if req.HasBody() {
		parts = append(parts, "--data-binary", quote(string(req.Body())))
	}
	return strings.Join(append(parts, quote(req.URL().String())), " ")
}

// quote wraps s in single quotes when the shell would otherwise split or
// expand it.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`&|;<>(){}*?!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// tokenize splits a command line into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var (
		tokens        []string
		current       strings.Builder
		inSingleQuote bool
		inDoubleQuote bool
		escaped       bool
		started       bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, current.String())
			current.Reset()
			started = false
		}
	}

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch {
		case r == '\\' && !inSingleQuote:
			escaped = true
			started = true
		case r == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			started = true
		case r == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			started = true
		case (r == ' ' || r == '\t' || r == '\n') && !inSingleQuote && !inDoubleQuote:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()

	return tokens
}

// isURL checks if a string looks like a URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{")
}
