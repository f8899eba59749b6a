package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcore/packages/httpurl"
	"github.com/abdul-hamid-achik/hitcore/packages/reqerr"
)

// AWSCredentials holds credentials for AWS Signature v4 authentication
type AWSCredentials struct {
	AccessKey string
	SecretKey string
	Region    string
	Service   string
}

// SignAWS returns a copy of req signed with AWS Signature Version 4 at time
// now. The copy carries Host, X-Amz-Date, X-Amz-Content-Sha256 and
// Authorization headers; req itself is not modified.
func SignAWS(req *Request, creds AWSCredentials, now time.Time) (*Request, error) {
	if creds.AccessKey == "" || creds.SecretKey == "" || creds.Region == "" || creds.Service == "" {
		return nil, reqerr.New("aws signing requires access key, secret key, region and service")
	}

	t := now.UTC()
	amzDate := t.Format("20060102T150405Z")
	dateStamp := t.Format("20060102")

	host := req.Header("Host")
	if host == "" {
		host = req.URL().Authority()
	}

	// Create canonical headers
	signedHeaders := "host;x-amz-date"
	canonicalHeaders := fmt.Sprintf("host:%s\nx-amz-date:%s\n", host, amzDate)

	// Calculate payload hash
	payloadHash := sha256Hash(req.body)

	// Create canonical request
	canonicalRequest := strings.Join([]string{
		req.Method(),
		httpurl.EncodePath(req.URL().Path()),
		canonicalQueryString(req.URL().Query()),
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	// Create string to sign
	credentialScope := fmt.Sprintf("%s/%s/%s/aws4_request",
		dateStamp, creds.Region, creds.Service)

	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		credentialScope,
		sha256Hash([]byte(canonicalRequest)),
	}, "\n")

	// Calculate signature
	signingKey := getSignatureKey(creds.SecretKey, dateStamp, creds.Region, creds.Service)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	authHeader := fmt.Sprintf("AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		creds.AccessKey, credentialScope, signedHeaders, signature)

	headers := req.headers.Clone().
		Set("Host", host).
		Set("X-Amz-Date", amzDate).
		Set("X-Amz-Content-Sha256", payloadHash).
		Set("Authorization", authHeader)
	return req.withHeaders(headers), nil
}

func canonicalQueryString(q httpurl.Query) string {
	pairs := q.Pairs()
	if len(pairs) == 0 {
		return ""
	}

	encoded := make([]string, 0, len(pairs))
	for _, p := range pairs {
		encoded = append(encoded, httpurl.Encode(p.Key)+"="+httpurl.Encode(p.Value))
	}
	sort.Strings(encoded)
	return strings.Join(encoded, "&")
}

func sha256Hash(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

func getSignatureKey(secretKey, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	kSigning := hmacSHA256(kService, "aws4_request")
	return kSigning
}
