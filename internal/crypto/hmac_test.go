package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestHeadersAtDeterministic(t *testing.T) {
	auth := &HMACAuth{Key: "key-123", Secret: "topsecret"}

	h1 := auth.HeadersAt("GET", "/v1/markets/abc", "", 1700000000)
	h2 := auth.HeadersAt("GET", "/v1/markets/abc", "", 1700000000)

	if h1["X-SIMMER-SIGNATURE"] != h2["X-SIMMER-SIGNATURE"] {
		t.Fatalf("signature not stable: %q vs %q", h1["X-SIMMER-SIGNATURE"], h2["X-SIMMER-SIGNATURE"])
	}
	if h1["X-SIMMER-KEY"] != "key-123" {
		t.Errorf("key header = %q, want key-123", h1["X-SIMMER-KEY"])
	}
	if h1["X-SIMMER-TIMESTAMP"] != "1700000000" {
		t.Errorf("timestamp header = %q, want 1700000000", h1["X-SIMMER-TIMESTAMP"])
	}
}

func TestHeadersAtMessageFormat(t *testing.T) {
	auth := &HMACAuth{Key: "k", Secret: "s"}

	got := auth.HeadersAt("POST", "/v1/orders", `{"a":1}`, 42)["X-SIMMER-SIGNATURE"]

	mac := hmac.New(sha256.New, []byte("s"))
	mac.Write([]byte("POST\n/v1/orders\n42\n{\"a\":1}"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Fatalf("signature = %q, want %q", got, want)
	}
}

func TestHeadersAtDiffersByPath(t *testing.T) {
	auth := &HMACAuth{Key: "k", Secret: "s"}

	a := auth.HeadersAt("GET", "/v1/markets/a", "", 1)["X-SIMMER-SIGNATURE"]
	b := auth.HeadersAt("GET", "/v1/markets/b", "", 1)["X-SIMMER-SIGNATURE"]
	if a == b {
		t.Fatal("signatures for different paths should differ")
	}
}

func TestStringRedacts(t *testing.T) {
	auth := &HMACAuth{Key: "key-123456", Secret: "secret-abcdef"}
	s := auth.String()
	if want := "HMACAuth{key=key-****, secret=secr****}"; s != want {
		t.Fatalf("String() = %q, want %q", s, want)
	}
}

func TestConfigured(t *testing.T) {
	if (&HMACAuth{Key: "k"}).Configured() {
		t.Error("missing secret should not be configured")
	}
	if !(&HMACAuth{Key: "k", Secret: "s"}).Configured() {
		t.Error("both fields set should be configured")
	}
}
