package http

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = AWSCredentials{
	AccessKey: "AKIDEXAMPLE",
	SecretKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
	Region:    "us-east-1",
	Service:   "execute-api",
}

func TestSignAWS(t *testing.T) {
	req, err := NewBuilder("GET", "https://api.example.com/v1/items?b=2&a=1").Build()
	require.NoError(t, err)

	now := time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)
	signed, err := SignAWS(req, testCreds, now)
	require.NoError(t, err)

	assert.Equal(t, "20240309T123000Z", signed.Header("X-Amz-Date"))
	assert.Equal(t, "api.example.com", signed.Header("Host"))
	// SHA-256 of the empty payload.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", signed.Header("X-Amz-Content-Sha256"))

	auth := signed.Header("Authorization")
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20240309/us-east-1/execute-api/aws4_request, "))
	assert.Contains(t, auth, "SignedHeaders=host;x-amz-date, Signature=")

	// The original request is untouched.
	assert.False(t, req.Headers().Has("Authorization"))
}

func TestSignAWS_Deterministic(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)
	a, err := NewBuilder("POST", "https://h/x?b=2&a=1").BodyString("{}").Build()
	require.NoError(t, err)
	b, err := NewBuilder("POST", "https://h/x?a=1&b=2").BodyString("{}").Build()
	require.NoError(t, err)

	sa, err := SignAWS(a, testCreds, now)
	require.NoError(t, err)
	sb, err := SignAWS(b, testCreds, now)
	require.NoError(t, err)
	assert.Equal(t, sa.Header("Authorization"), sb.Header("Authorization"))

	later, err := SignAWS(a, testCreds, now.Add(time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, sa.Header("Authorization"), later.Header("Authorization"))
}

func TestSignAWS_MissingCredentials(t *testing.T) {
	req, err := NewBuilder("GET", "https://h/").Build()
	require.NoError(t, err)

	_, err = SignAWS(req, AWSCredentials{AccessKey: "x"}, time.Now())
	assert.Error(t, err)
}
