// Package otp generates one-time passcodes for email verification and
// password recovery.
package otp

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

// TTL is how long a generated code stays valid.
const TTL = 5 * time.Minute

var codeSpan = big.NewInt(9000)

// New returns a fresh 4-digit code in [1000, 9999] and its expiry timestamp.
func New() (code string, expiresAt time.Time) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		// crypto/rand failing means the process has no usable entropy source
		panic(err)
	}
	return strconv.FormatInt(n.Int64()+1000, 10), time.Now().Add(TTL)
}
