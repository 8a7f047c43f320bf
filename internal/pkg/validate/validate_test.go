package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	assert.True(t, Identity("123456789012345678"))
	assert.True(t, Identity("12345678901234567"))
	assert.True(t, Identity("1234567890123456789"))
	assert.False(t, Identity("1234567890123456"))
	assert.False(t, Identity("12345678901234567890"))
	assert.False(t, Identity("12345678901234567a"))
	assert.False(t, Identity("+23456789012345678"))
	assert.False(t, Identity(""))
}

func TestCode(t *testing.T) {
	assert.True(t, Code("AB12Z"))
	assert.False(t, Code("ab12z"))
	assert.False(t, Code("AB12"))
	assert.False(t, Code("AB12Z9"))
	assert.False(t, Code("AB-2Z"))
	assert.False(t, Code(""))
}

func TestStruct_ReportsFailedTags(t *testing.T) {
	type body struct {
		Fingerprint string `validate:"required,max=8"`
	}
	assert.NoError(t, Struct(body{Fingerprint: "abc"}))
	err := Struct(body{})
	assert.ErrorContains(t, err, "field 'Fingerprint' failed 'required'")
	err = Struct(body{Fingerprint: "0123456789"})
	assert.ErrorContains(t, err, "failed 'max'")
}
