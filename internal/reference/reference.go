// Package reference issues the opaque identifiers that correlate a pledge
// with its provider notification.
package reference

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// Prefix identifies donation references among other identifiers in logs and
// provider dashboards.
const Prefix = "don_"

const suffixBytes = 6

// New returns a unique, URL-safe reference: the fixed prefix, the creation
// time in base36 milliseconds, and a random suffix so that concurrent calls
// within the same millisecond cannot collide.
func New() string {
	var b [suffixBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process has no usable entropy
		// source; refusing to issue a reference is safer than reuse.
		panic(err)
	}
	return Prefix + strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(b[:])
}
