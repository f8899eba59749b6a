package jsondoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"null", Null},
		{"true", Bool},
		{"false", Bool},
		{"0", Number},
		{"-12.5e3", Number},
		{`"hi"`, String},
		{"[]", Array},
		{"{}", Object},
		{"  \n\t[1, 2] \r\n", Array},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			doc := mustParse(t, tt.input)
			assert.Equal(t, tt.kind, doc.Root().Kind())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
		reason string
	}{
		{"empty", "", 0, "unexpected end of input"},
		{"whitespace only", "   ", 3, "unexpected end of input"},
		{"trailing data", "1 2", 2, "trailing data"},
		{"missing colon", `{"a" 1}`, 5, "expected ':'"},
		{"trailing comma in array", "[1,]", 3, "unexpected token"},
		{"trailing comma in object", `{"a":1,}`, 7, "expected string key"},
		{"single quotes", "'a'", 0, "unexpected token"},
		{"leading zero", "01", 1, "trailing data"},
		{"bare minus", "-", 1, "invalid number literal"},
		{"missing fraction", "1.", 2, "missing fraction digits"},
		{"missing exponent", "1e", 2, "missing exponent digits"},
		{"bad literal", "nul", 0, "invalid literal"},
		{"unterminated string", `"abc`, 0, "unterminated string"},
		{"unterminated array", "[1", 2, "unterminated array"},
		{"control char", "\"a\x01\"", 2, "control character"},
		{"bad escape", `"\x"`, 1, "invalid escape"},
		{"lone surrogate", `"\ud800"`, 1, "unpaired surrogate"},
		{"number out of range", "1e999", 0, "number out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(tt.input)
			require.Error(t, err)
			assert.Nil(t, doc)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.offset, perr.Offset)
			assert.Contains(t, perr.Reason, tt.reason)
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	ok := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	_, err := ParseString(ok)
	require.NoError(t, err)

	deep := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	_, err = ParseString(deep)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "nesting")
}

func TestParse_Strings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"plain"`, "plain"},
		{`"a\"b\\c\/d"`, `a"b\c/d`},
		{`"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{`"\u00e9"`, "é"},
		{`"\ud83d\ude00"`, "😀"},
		{`"héllo"`, "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := mustParse(t, tt.input).Root().AsString()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	doc := mustParse(t, `{"a":1,"b":2,"a":3}`)

	assert.Equal(t, []string{"a", "b"}, doc.Root().Keys())
	n, err := doc.Get(Key("a"))
	require.NoError(t, err)
	num, _ := n.AsNumber()
	assert.Equal(t, 3.0, num)
}

func TestParse_DuplicateKeysManyMembers(t *testing.T) {
	var b strings.Builder
	b.WriteByte('{')
	for i := 0; i < 40; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`"k` + string(rune('a'+i%26)) + string(rune('a'+i/26)) + `":` + "1")
	}
	b.WriteString(`,"kaa":2}`)

	doc := mustParse(t, b.String())
	assert.Equal(t, 40, doc.Root().Len())
	v, err := doc.Find("kaa")
	require.NoError(t, err)
	num, _ := v.AsNumber()
	assert.Equal(t, 2.0, num)
}

func TestGet(t *testing.T) {
	doc := mustParse(t, `{"user":{"name":"ann","tags":["x","y"]},"n":null}`)

	t.Run("empty path returns root", func(t *testing.T) {
		v, err := doc.Get()
		require.NoError(t, err)
		assert.True(t, v.Equal(doc.Root()))
	})

	t.Run("nested key and index", func(t *testing.T) {
		v, err := doc.Get(Key("user"), Key("tags"), Index(1))
		require.NoError(t, err)
		s, _ := v.AsString()
		assert.Equal(t, "y", s)
	})

	t.Run("parsed path", func(t *testing.T) {
		v, err := doc.Get(ParsePath("user.tags.0")...)
		require.NoError(t, err)
		s, _ := v.AsString()
		assert.Equal(t, "x", s)
	})

	failures := []struct {
		name    string
		path    []Segment
		walked  int
		reason  string
		failing Segment
	}{
		{"missing key", Keys("user", "age"), 1, "key not found", Key("age")},
		{"index on object", []Segment{Key("user"), Index(0)}, 1, "not an array", Index(0)},
		{"key on array", []Segment{Key("user"), Key("tags"), Key("x")}, 2, "not an object", Key("x")},
		{"index out of range", []Segment{Key("user"), Key("tags"), Index(2)}, 2, "index out of range", Index(2)},
		{"negative index", []Segment{Key("user"), Key("tags"), Index(-1)}, 2, "index out of range", Index(-1)},
		{"key on null", Keys("n", "x"), 1, "not an object (null)", Key("x")},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doc.Get(tt.path...)
			var gerr *GetError
			require.ErrorAs(t, err, &gerr)
			assert.Len(t, gerr.Walked, tt.walked)
			assert.Equal(t, tt.failing, gerr.Segment)
			assert.Contains(t, gerr.Reason, tt.reason)
		})
	}

	t.Run("error message names the path", func(t *testing.T) {
		_, err := doc.Get(Key("user"), Key("tags"), Index(5))
		require.Error(t, err)
		assert.Equal(t, "json: get [5] at $.user.tags: index out of range", err.Error())
	})
}

func TestFind(t *testing.T) {
	doc := mustParse(t, `{"a": 1, "b": {"a": 2, "c": 3}}`)

	v, err := doc.Find("a")
	require.NoError(t, err)
	num, _ := v.AsNumber()
	assert.Equal(t, 1.0, num)

	_, err = doc.Find("c")
	var ferr *FindError
	require.ErrorAs(t, err, &ferr)
	assert.False(t, ferr.NotObject)
	assert.Equal(t, "c", ferr.Key)

	arr := mustParse(t, `[1]`)
	_, err = arr.Find("a")
	require.ErrorAs(t, err, &ferr)
	assert.True(t, ferr.NotObject)
	assert.Equal(t, Array, ferr.Actual)
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		key      string
		expected string
	}{
		{"top level wins over nested when first", `{"a":1,"b":{"a":2}}`, "a", "1"},
		{"nested only", `{"b":{"a":2}}`, "a", "2"},
		{"earlier subtree wins", `{"b":{"a":2},"a":1}`, "a", "2"},
		{"key tested before its value", `{"a":{"a":3}}`, "a", `{"a":3}`},
		{"descends into arrays", `{"list":[{"x":1},{"id":"found"}]}`, "id", `"found"`},
		{"root array", `[[{"k":true}]]`, "k", "true"},
		{"null value still matches", `{"z":null}`, "z", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := mustParse(t, tt.input).Search(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v.String())
		})
	}

	t.Run("no match", func(t *testing.T) {
		_, err := mustParse(t, `{"b":{"a":2}}`).Search("z")
		var serr *SearchError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "z", serr.Key)
	})

	t.Run("scalar root", func(t *testing.T) {
		_, err := mustParse(t, `5`).Search("a")
		var serr *SearchError
		require.ErrorAs(t, err, &serr)
	})
}

func TestSearchFunc(t *testing.T) {
	doc := mustParse(t, `{"items":[{"id":1},{"id":2,"ok":true}]}`)

	v, err := doc.SearchFunc(func(m Member) bool {
		ok, err := m.Value.Find("ok")
		return err == nil && ok.Kind() == Bool
	})
	require.NoError(t, err)
	assert.Equal(t, `{"id":2,"ok":true}`, v.String())

	_, err = doc.SearchFunc(func(Member) bool { return false })
	var serr *SearchError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "predicate")
}

func TestExtractors(t *testing.T) {
	doc := mustParse(t, `{"s":"x","n":42,"f":1.5,"b":true,"z":null,"a":[1,2],"o":{"k":"v"}}`)
	get := func(key string) Value {
		v, err := doc.Find(key)
		require.NoError(t, err)
		return v
	}

	s, err := get("s").AsString()
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	n, err := get("n").AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	f, err := get("f").AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := get("b").AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	require.NoError(t, get("z").AsNull())
	assert.True(t, get("z").IsNull())

	arr, err := get("a").AsArray()
	require.NoError(t, err)
	assert.Len(t, arr, 2)

	members, err := get("o").AsObject()
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "k", members[0].Key)
}

func TestExtractors_WrongType(t *testing.T) {
	doc := mustParse(t, `{"s":"x","f":1.5}`)
	s, _ := doc.Find("s")

	_, err := s.AsNumber()
	var werr *WrongTypeError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, Number, werr.Expected)
	assert.Equal(t, String, werr.Actual)
	assert.Equal(t, "json: expected number, got string", err.Error())

	_, err = s.AsBool()
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, Bool, werr.Expected)

	_, err = s.AsArray()
	require.ErrorAs(t, err, &werr)
	_, err = s.AsObject()
	require.ErrorAs(t, err, &werr)
	require.ErrorAs(t, s.AsNull(), &werr)

	f, _ := doc.Find("f")
	_, err = f.AsInt()
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "not an integer", werr.Reason)
	assert.Contains(t, err.Error(), "not an integer")

	big := mustParse(t, `1e300`)
	_, err = big.Root().AsInt()
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "out of int64 range", werr.Reason)

	var zero Value
	_, err = zero.AsString()
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, Invalid, werr.Actual)
}

func TestString_RoundTrip(t *testing.T) {
	inputs := []string{
		`{"a":[1,2.5,-3e-7,true,null],"b":{"c":"d\n\"q\""}}`,
		`[]`,
		`{}`,
		`" "`,
		`1e+21`,
		`123456789`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			first := mustParse(t, in)
			second := mustParse(t, first.String())
			assert.True(t, first.Equal(second), "reparse of %s differs", first.String())
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, mustParse(t, `{"a":1,"b":2}`).Equal(mustParse(t, `{"b":2,"a":1}`)))
	assert.False(t, mustParse(t, `[1,2]`).Equal(mustParse(t, `[2,1]`)))
	assert.False(t, mustParse(t, `{"a":1}`).Equal(mustParse(t, `{"a":1,"b":2}`)))
	assert.False(t, mustParse(t, `1`).Equal(mustParse(t, `"1"`)))
}

func TestInterface(t *testing.T) {
	doc := mustParse(t, `{"a":[1,"x",null],"b":false}`)
	expected := map[string]any{
		"a": []any{1.0, "x", nil},
		"b": false,
	}
	assert.Equal(t, expected, doc.Root().Interface())
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		input    string
		expected []Segment
	}{
		{"", nil},
		{"$", nil},
		{"a", []Segment{Key("a")}},
		{"$.a.0.b", []Segment{Key("a"), Index(0), Key("b")}},
		{`a\.b.c`, []Segment{Key("a.b"), Key("c")}},
		{"items.-1", []Segment{Key("items"), Key("-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePath(tt.input))
		})
	}
}
