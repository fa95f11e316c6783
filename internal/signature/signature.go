// Package signature authenticates payment-provider webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign computes the hex HMAC-SHA256 of body under secret. Exposed so tests
// and outbound tooling produce exactly what Verify expects.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether provided is a valid signature for body. It must be
// fed the verbatim request bytes; re-serializing the payload first would
// change the digest. A mismatch is an expected outcome, not an error.
func Verify(secret, body []byte, provided string) bool {
	claimed, err := hex.DecodeString(strings.TrimSpace(provided))
	if err != nil || len(claimed) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), claimed)
}
