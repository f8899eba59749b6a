package jsondoc

import (
	"fmt"
	"strings"
)

// ParseError reports the byte offset where parsing stopped and why.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("json: parse error at offset %d: %s", e.Offset, e.Reason)
}

// GetError names the first path segment that could not be resolved and the
// segments that were resolved before it.
type GetError struct {
	Segment Segment
	Walked  []Segment
	Reason  string
}

func (e *GetError) Error() string {
	return fmt.Sprintf("json: get %s at %s: %s", e.Segment, formatPath(e.Walked), e.Reason)
}

// FindError means key is not an immediate member of the node. NotObject is
// set when the node was not an object at all.
type FindError struct {
	Key       string
	NotObject bool
	Actual    Kind
}

func (e *FindError) Error() string {
	if e.NotObject {
		return fmt.Sprintf("json: find %q: node is %s, not object", e.Key, e.Actual)
	}
	return fmt.Sprintf("json: find %q: no such member", e.Key)
}

// SearchError means no key matched anywhere in the searched subtree.
type SearchError struct {
	Key string
}

func (e *SearchError) Error() string {
	if e.Key == "" {
		return "json: search: no node matched the predicate"
	}
	return fmt.Sprintf("json: search %q: no match in subtree", e.Key)
}

// WrongTypeError is returned by the As* extractors. Reason is set when the
// kind matched but the value still cannot be extracted, as for AsInt on a
// fractional number.
type WrongTypeError struct {
	Expected Kind
	Actual   Kind
	Reason   string
}

func (e *WrongTypeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("json: expected %s, got %s: %s", e.Expected, e.Actual, e.Reason)
	}
	return fmt.Sprintf("json: expected %s, got %s", e.Expected, e.Actual)
}

func formatPath(path []Segment) string {
	if len(path) == 0 {
		return "$"
	}
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range path {
		if s.IsIndex() {
			fmt.Fprintf(&b, "[%d]", s.index)
			continue
		}
		b.WriteByte('.')
		b.WriteString(s.key)
	}
	return b.String()
}
