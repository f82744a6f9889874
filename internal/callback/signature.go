// Package callback correlates inbound provider webhooks back to the pending
// job records they belong to. Every payload is authenticated against a shared
// secret before it is parsed, and every terminal transition goes through the
// record store's conditional write so racing or duplicate deliveries collapse
// into no-ops.
package callback

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HeaderSignature carries the hex HMAC of the raw request body.
const HeaderSignature = "X-Callback-Signature"

// Sign computes the hex HMAC-SHA256 of body under secret. The same function
// signs outbound expectations in tests and verifies inbound deliveries.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under secret. Comparison is
// constant time.
func Verify(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
