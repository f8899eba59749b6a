package jsondoc

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// String renders v as compact JSON. Object members keep their stored order.
func (v Value) String() string {
	var b strings.Builder
	v.encode(&b)
	return b.String()
}

func (v Value) encode(b *strings.Builder) {
	switch v.Kind() {
	case Null, Invalid:
		b.WriteString("null")
	case Bool:
		b.WriteString(strconv.FormatBool(v.n().b))
	case Number:
		b.WriteString(formatNumber(v.n().num))
	case String:
		writeString(b, v.n().str)
	case Array:
		b.WriteByte('[')
		for i := 0; i < v.n().count; i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			v.child(i).encode(b)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i := 0; i < v.n().count; i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			writeString(b, v.key(i))
			b.WriteByte(':')
			v.child(i).encode(b)
		}
		b.WriteByte('}')
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func writeString(b *strings.Builder, s string) {
	// Marshal of a string cannot fail.
	out, _ := json.Marshal(s)
	b.Write(out)
}

// Equal reports structural equality. Object member order is ignored, array
// order is not.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case Invalid, Null:
		return true
	case Bool:
		return v.n().b == other.n().b
	case Number:
		return v.n().num == other.n().num
	case String:
		return v.n().str == other.n().str
	case Array:
		if v.n().count != other.n().count {
			return false
		}
		for i := 0; i < v.n().count; i++ {
			if !v.child(i).Equal(other.child(i)) {
				return false
			}
		}
		return true
	case Object:
		if v.n().count != other.n().count {
			return false
		}
		for i := 0; i < v.n().count; i++ {
			peer, ok := other.member(v.key(i))
			if !ok || !v.child(i).Equal(peer) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v to the plain Go values encoding/json would produce:
// nil, bool, float64, string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.Kind() {
	case Bool:
		return v.n().b
	case Number:
		return v.n().num
	case String:
		return v.n().str
	case Array:
		out := make([]any, v.n().count)
		for i := range out {
			out[i] = v.child(i).Interface()
		}
		return out
	case Object:
		out := make(map[string]any, v.n().count)
		for i := 0; i < v.n().count; i++ {
			out[v.key(i)] = v.child(i).Interface()
		}
		return out
	}
	return nil
}
