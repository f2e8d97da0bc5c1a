// Package fingerprint derives the pseudonymous client identifier used to key
// upvotes, personal collections and rate limits.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Anonymous is returned when a request carries neither a forwarded address
// nor a user agent. All such clients share one identity.
const Anonymous = "anonymous"

// Derive computes the fingerprint from request headers. The result is
// deterministic across processes: the same headers always yield the same
// value.
func Derive(h http.Header) string {
	forwarded := headerValue(h, "X-Forwarded-For")
	userAgent := headerValue(h, "User-Agent")
	language := headerValue(h, "Accept-Language")

	if forwarded == "" && userAgent == "" {
		return Anonymous
	}

	sum := sha256.Sum256([]byte(forwarded + "|" + userAgent + "|" + language))
	return hex.EncodeToString(sum[:])
}

// FromRequest is Derive over r.Header.
func FromRequest(r *http.Request) string {
	return Derive(r.Header)
}

// headerValue joins repeated lines of a header the way a single
// comma-separated line would read.
func headerValue(h http.Header, key string) string {
	return normalize(strings.Join(h.Values(key), ", "))
}

func normalize(v string) string {
	if !utf8.ValidString(v) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(v))
}
