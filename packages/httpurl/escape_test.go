package httpurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "abc-_.~", Encode("abc-_.~"))
	assert.Equal(t, "a%20b%26c%3Dd", Encode("a b&c=d"))
	assert.Equal(t, "%C3%A9", Encode("é"))
}

func TestEncodePath(t *testing.T) {
	assert.Equal(t, "/", EncodePath("/"))
	assert.Equal(t, "/a%20b/c%3Dd", EncodePath("/a b/c=d"))
}

func TestDecode(t *testing.T) {
	s, err := Decode("a%20b+c")
	require.NoError(t, err)
	assert.Equal(t, "a b+c", s)

	s, err = DecodeQueryComponent("a%20b+c")
	require.NoError(t, err)
	assert.Equal(t, "a b c", s)

	_, err = Decode("%4")
	assert.ErrorIs(t, err, ErrIllFormed)

	_, err = Decode("%xy")
	assert.ErrorIs(t, err, ErrIllFormed)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "with space", "100%", "ü/ß?&=#"} {
		decoded, err := Decode(Encode(s))
		require.NoError(t, err)
		assert.Equal(t, s, decoded)
	}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("a=1&b&c=x=y&a=2")
	require.NoError(t, err)

	assert.Equal(t, []QueryPair{
		{Key: "a", Value: "1"},
		{Key: "b", Value: ""},
		{Key: "c", Value: "x=y"},
		{Key: "a", Value: "2"},
	}, q.Pairs())
	assert.True(t, q.Has("b"))
	assert.False(t, q.Has("z"))
	assert.Equal(t, "a=1&b=&c=x%3Dy&a=2", q.Encode())
}

func TestParseQuery_Empty(t *testing.T) {
	q, err := ParseQuery("")
	require.NoError(t, err)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, "", q.Encode())
}
