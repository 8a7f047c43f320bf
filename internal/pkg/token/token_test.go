package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_LengthAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := NewID()
		require.NoError(t, err)
		assert.Len(t, id, 32)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestNewCode_UsesAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewCode(5)
		require.NoError(t, err)
		require.Len(t, code, 5)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, c), "unexpected rune %q", c)
		}
	}
}

func TestIntBetween_StaysInRange(t *testing.T) {
	hit := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		n, err := IntBetween(1, 10)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 10)
		hit[n] = true
	}
	assert.Len(t, hit, 10)
}
