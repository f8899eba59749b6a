package httpurl

import "strings"

// QueryPair is a single key=value entry of a query string.
type QueryPair struct {
	Key   string
	Value string
}

// Query is an ordered list of query pairs. Keys may repeat.
type Query struct {
	pairs []QueryPair
}

// NewQuery builds a Query from pairs, preserving their order.
func NewQuery(pairs ...QueryPair) Query {
	if len(pairs) == 0 {
		return Query{}
	}
	q := Query{pairs: make([]QueryPair, len(pairs))}
	copy(q.pairs, pairs)
	return q
}

// ParseQuery splits raw on '&' and then on the first '='. A key without '='
// gets an empty value. Empty segments ("a=1&&b=2") are skipped.
func ParseQuery(raw string) (Query, error) {
	var q Query
	if raw == "" {
		return q, nil
	}
	for _, segment := range strings.Split(raw, "&") {
		if segment == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(segment, "=")
		key, err := DecodeQueryComponent(rawKey)
		if err != nil {
			return Query{}, newError(IllFormed, raw, "query key %q: malformed escape", rawKey)
		}
		value, err := DecodeQueryComponent(rawValue)
		if err != nil {
			return Query{}, newError(IllFormed, raw, "query value %q: malformed escape", rawValue)
		}
		q.pairs = append(q.pairs, QueryPair{Key: key, Value: value})
	}
	return q, nil
}

// Get returns the first value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns every value for key in order.
func (q Query) Values(key string) []string {
	var out []string
	for _, p := range q.pairs {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

func (q Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

func (q Query) Len() int {
	return len(q.pairs)
}

// Pairs returns a copy of the pairs.
func (q Query) Pairs() []QueryPair {
	out := make([]QueryPair, len(q.pairs))
	copy(out, q.pairs)
	return out
}

// With returns a new Query with key=value appended; q is left untouched.
func (q Query) With(key, value string) Query {
	out := Query{pairs: make([]QueryPair, len(q.pairs), len(q.pairs)+1)}
	copy(out.pairs, q.pairs)
	out.pairs = append(out.pairs, QueryPair{Key: key, Value: value})
	return out
}

// Encode serializes the pairs as key=value joined by '&'.
func (q Query) Encode() string {
	if len(q.pairs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range q.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EncodeQueryComponent(p.Key))
		b.WriteByte('=')
		b.WriteString(EncodeQueryComponent(p.Value))
	}
	return b.String()
}

func (q Query) Equal(other Query) bool {
	if len(q.pairs) != len(other.pairs) {
		return false
	}
	for i := range q.pairs {
		if q.pairs[i] != other.pairs[i] {
			return false
		}
	}
	return true
}
