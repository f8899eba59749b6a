package jsondoc

import (
	"strconv"
	"strings"
)

// Segment is one step of a Get path: an object key or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a segment selecting the object member named k.
func Key(k string) Segment {
	return Segment{key: k}
}

// Index returns a segment selecting array element i.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

func (s Segment) IsIndex() bool { return s.isIndex }

// KeyName returns the key of a key segment.
func (s Segment) KeyName() string { return s.key }

// IndexValue returns the index of an index segment.
func (s Segment) IndexValue() int { return s.index }

func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return strconv.Quote(s.key)
}

// Keys is shorthand for a path made only of object keys.
func Keys(keys ...string) []Segment {
	path := make([]Segment, len(keys))
	for i, k := range keys {
		path[i] = Key(k)
	}
	return path
}

// ParsePath turns a dotted path such as "items.0.name" into segments.
// All-digit parts become indices; "\." escapes a literal dot inside a key.
// "" and "$" denote the root.
func ParsePath(path string) []Segment {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return nil
	}

	var (
		segments []Segment
		current  strings.Builder
	)
	flush := func() {
		part := current.String()
		current.Reset()
		if n, err := strconv.Atoi(part); err == nil && n >= 0 && isDigits(part) {
			segments = append(segments, Index(n))
			return
		}
		segments = append(segments, Key(part))
	}

	for i := 0; i < len(path); i++ {
		switch {
		case path[i] == '\\' && i+1 < len(path) && path[i+1] == '.':
			current.WriteByte('.')
			i++
		case path[i] == '.':
			flush()
		default:
			current.WriteByte(path[i])
		}
	}
	flush()
	return segments
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
