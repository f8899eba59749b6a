package jsondoc

import "fmt"

// Kind is the tag of a JSON value.
type Kind uint8

const (
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// node is one arena slot. Containers reference a contiguous run
// children[first:first+count]; for objects keys[first:first+count] holds the
// matching member names.
type node struct {
	kind  Kind
	b     bool
	num   float64
	str   string
	first int
	count int
}

// Document is an immutable parsed JSON tree. The root is always nodes[0].
type Document struct {
	nodes    []node
	children []int
	keys     []string
}

// Root returns the top-level value.
func (d *Document) Root() Value {
	return Value{doc: d, idx: 0}
}

// Get is Root().Get(path...).
func (d *Document) Get(path ...Segment) (Value, error) {
	return d.Root().Get(path...)
}

// Find is Root().Find(key).
func (d *Document) Find(key string) (Value, error) {
	return d.Root().Find(key)
}

// Search is Root().Search(key).
func (d *Document) Search(key string) (Value, error) {
	return d.Root().Search(key)
}

// SearchFunc is Root().SearchFunc(pred).
func (d *Document) SearchFunc(pred func(Member) bool) (Value, error) {
	return d.Root().SearchFunc(pred)
}

// String returns the compact JSON encoding of the whole document.
func (d *Document) String() string {
	return d.Root().String()
}

// Equal reports whether both documents hold structurally equal trees.
func (d *Document) Equal(other *Document) bool {
	return d.Root().Equal(other.Root())
}
