package jsondoc

import "math"

// Value is a read-only handle to one node of a Document. It is cheap to copy
// and never outlives the usefulness of its Document. The zero Value is
// Invalid.
type Value struct {
	doc *Document
	idx int
}

// Member is an object member as returned by AsObject and visited by SearchFunc.
// Array elements visited by SearchFunc have an empty Key.
type Member struct {
	Key   string
	Value Value
}

func (v Value) n() *node {
	return &v.doc.nodes[v.idx]
}

// IsValid reports whether v refers to a node.
func (v Value) IsValid() bool {
	return v.doc != nil
}

func (v Value) Kind() Kind {
	if v.doc == nil {
		return Invalid
	}
	return v.n().kind
}

// Len returns the number of elements or members of a container, 0 otherwise.
func (v Value) Len() int {
	if k := v.Kind(); k != Array && k != Object {
		return 0
	}
	return v.n().count
}

func (v Value) child(i int) Value {
	n := v.n()
	return Value{doc: v.doc, idx: v.doc.children[n.first+i]}
}

func (v Value) key(i int) string {
	return v.doc.keys[v.n().first+i]
}

// member looks key up among the immediate members of an object.
func (v Value) member(key string) (Value, bool) {
	n := v.n()
	for i := 0; i < n.count; i++ {
		if v.key(i) == key {
			return v.child(i), true
		}
	}
	return Value{}, false
}

// Get walks path from v. Each key segment must name a member of an object and
// each index segment must be in bounds of an array. An empty path returns v.
func (v Value) Get(path ...Segment) (Value, error) {
	cur := v
	for i, seg := range path {
		next, reason := cur.step(seg)
		if reason != "" {
			walked := make([]Segment, i)
			copy(walked, path[:i])
			return Value{}, &GetError{Segment: seg, Walked: walked, Reason: reason}
		}
		cur = next
	}
	return cur, nil
}

func (v Value) step(seg Segment) (Value, string) {
	kind := v.Kind()
	if seg.isIndex {
		if kind != Array {
			return Value{}, "not an array (" + kind.String() + ")"
		}
		if seg.index < 0 || seg.index >= v.n().count {
			return Value{}, "index out of range"
		}
		return v.child(seg.index), ""
	}
	if kind != Object {
		return Value{}, "not an object (" + kind.String() + ")"
	}
	next, ok := v.member(seg.key)
	if !ok {
		return Value{}, "key not found"
	}
	return next, ""
}

// Find returns the immediate member named key. It does not recurse.
func (v Value) Find(key string) (Value, error) {
	if k := v.Kind(); k != Object {
		return Value{}, &FindError{Key: key, NotObject: true, Actual: k}
	}
	if found, ok := v.member(key); ok {
		return found, nil
	}
	return Value{}, &FindError{Key: key, Actual: Object}
}

// Search returns the value of the first member named key in a depth-first
// traversal of v's subtree. Members are visited in stored order; a member's
// key is tested before its value is descended into.
func (v Value) Search(key string) (Value, error) {
	if found, ok := v.search(func(m Member) bool { return m.Key == key && m.Value.doc != nil }, true); ok {
		return found, nil
	}
	return Value{}, &SearchError{Key: key}
}

// SearchFunc is Search with an arbitrary predicate. Array elements are
// offered to pred with an empty Key.
func (v Value) SearchFunc(pred func(Member) bool) (Value, error) {
	if found, ok := v.search(pred, false); ok {
		return found, nil
	}
	return Value{}, &SearchError{}
}

func (v Value) search(pred func(Member) bool, objectsOnly bool) (Value, bool) {
	switch v.Kind() {
	case Object:
		for i := 0; i < v.n().count; i++ {
			m := Member{Key: v.key(i), Value: v.child(i)}
			if pred(m) {
				return m.Value, true
			}
			if found, ok := m.Value.search(pred, objectsOnly); ok {
				return found, true
			}
		}
	case Array:
		for i := 0; i < v.n().count; i++ {
			elem := v.child(i)
			if !objectsOnly && pred(Member{Value: elem}) {
				return elem, true
			}
			if found, ok := elem.search(pred, objectsOnly); ok {
				return found, true
			}
		}
	}
	return Value{}, false
}

func (v Value) expect(kind Kind) error {
	if actual := v.Kind(); actual != kind {
		return &WrongTypeError{Expected: kind, Actual: actual}
	}
	return nil
}

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool {
	return v.Kind() == Null
}

// AsNull succeeds only for JSON null.
func (v Value) AsNull() error {
	return v.expect(Null)
}

func (v Value) AsBool() (bool, error) {
	if err := v.expect(Bool); err != nil {
		return false, err
	}
	return v.n().b, nil
}

func (v Value) AsNumber() (float64, error) {
	if err := v.expect(Number); err != nil {
		return 0, err
	}
	return v.n().num, nil
}

// AsInt requires an integral number representable as int64. A number that
// is not comes back as a WrongTypeError with a Reason.
func (v Value) AsInt() (int64, error) {
	f, err := v.AsNumber()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &WrongTypeError{Expected: Number, Actual: Number, Reason: "not an integer"}
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, &WrongTypeError{Expected: Number, Actual: Number, Reason: "out of int64 range"}
	}
	return int64(f), nil
}

func (v Value) AsString() (string, error) {
	if err := v.expect(String); err != nil {
		return "", err
	}
	return v.n().str, nil
}

// AsArray returns handles to the elements in order.
func (v Value) AsArray() ([]Value, error) {
	if err := v.expect(Array); err != nil {
		return nil, err
	}
	out := make([]Value, v.n().count)
	for i := range out {
		out[i] = v.child(i)
	}
	return out, nil
}

// AsObject returns the members in insertion order.
func (v Value) AsObject() ([]Member, error) {
	if err := v.expect(Object); err != nil {
		return nil, err
	}
	out := make([]Member, v.n().count)
	for i := range out {
		out[i] = Member{Key: v.key(i), Value: v.child(i)}
	}
	return out, nil
}

// Keys returns the member names of an object, nil for other kinds.
func (v Value) Keys() []string {
	if v.Kind() != Object {
		return nil
	}
	out := make([]string, v.n().count)
	for i := range out {
		out[i] = v.key(i)
	}
	return out
}
