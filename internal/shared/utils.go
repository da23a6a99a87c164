// Package shared provides utility functions for working with
// random material and secure memory wiping.
package shared

import (
	"crypto/rand"
	"math/big"
)

// GenerateRandByteArray returns size cryptographically secure random bytes.
// It panics if the system random source fails; salt and key generation
// cannot proceed without it.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandString returns a string of length n whose characters are drawn
// uniformly from charset using crypto/rand.
func RandString(n int, charset string) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out)
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// This is useful for removing sensitive data such as passwords or derived
// keys from memory after use.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
