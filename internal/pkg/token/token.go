package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// CodeAlphabet is the character set of one-time codes.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID returns an opaque 32-character hex identifier backed by 128 bits
// from crypto/rand.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewCode returns an n-character code drawn uniformly from CodeAlphabet.
func NewCode(n int) (string, error) {
	size := big.NewInt(int64(len(CodeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b[i] = CodeAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// IntBetween returns a uniform integer in [lo, hi].
func IntBetween(lo, hi int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return 0, fmt.Errorf("generate integer: %w", err)
	}
	return lo + int(n.Int64()), nil
}
