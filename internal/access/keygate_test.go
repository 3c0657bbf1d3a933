package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyVerifier(t *testing.T) {
	v := NewKeyVerifier("secret")
	assert.True(t, v.Configured())
	assert.True(t, v.Verify("secret"))
	assert.True(t, v.Verify("  secret  "))
	assert.False(t, v.Verify("Secret"))
	assert.False(t, v.Verify(""))
}

func TestKeyVerifierTrimsMaster(t *testing.T) {
	v := NewKeyVerifier("  secret\n")
	assert.True(t, v.Verify("secret"))
}

func TestKeyVerifierUnconfigured(t *testing.T) {
	v := NewKeyVerifier("   ")
	assert.False(t, v.Configured())
	assert.False(t, v.Verify(""))
	assert.False(t, v.Verify("anything"))
}
