// Package crypto provides request signing for providers that require
// HMAC-authenticated API access.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// HMACAuth holds the shared-secret credentials for HMAC-signed requests
// against the Simmer API.
type HMACAuth struct {
	Key    string // API key, sent verbatim in the key header
	Secret string // shared secret used as the HMAC key
}

// Headers returns the HTTP headers for a signed request. The signature is
// HMAC-SHA256 over the UTF-8 bytes of "METHOD\nPATH\nTIMESTAMP\nBODY",
// base64 standard-encoded.
//
// Returned header keys:
//   - X-SIMMER-KEY
//   - X-SIMMER-TIMESTAMP
//   - X-SIMMER-SIGNATURE
func (h *HMACAuth) Headers(method, path, body string) map[string]string {
	return h.HeadersAt(method, path, body, time.Now().Unix())
}

// HeadersAt is like Headers but lets the caller supply the Unix timestamp
// (useful for deterministic testing).
func (h *HMACAuth) HeadersAt(method, path, body string, unixTS int64) map[string]string {
	ts := strconv.FormatInt(unixTS, 10)

	message := method + "\n" + path + "\n" + ts + "\n" + body
	sig := hmacSHA256Base64([]byte(h.Secret), message)

	return map[string]string{
		"X-SIMMER-KEY":       h.Key,
		"X-SIMMER-TIMESTAMP": ts,
		"X-SIMMER-SIGNATURE": sig,
	}
}

// Configured reports whether both credentials are present. Safe on a nil
// receiver so callers can hold an optional *HMACAuth.
func (h *HMACAuth) Configured() bool {
	return h != nil && h.Key != "" && h.Secret != ""
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}

// hmacSHA256Base64 computes HMAC-SHA256 of message using key and returns the
// result as a base64 standard-encoded string.
func hmacSHA256Base64(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
