package access

import (
	"crypto/subtle"
	"strings"
)

// KeyVerifier gates the vault behind a single process-wide master key.
type KeyVerifier struct {
	master string
}

func NewKeyVerifier(master string) *KeyVerifier {
	return &KeyVerifier{master: strings.TrimSpace(master)}
}

// Configured reports whether a master key is set at all.
func (v *KeyVerifier) Configured() bool {
	return v.master != ""
}

// Verify compares a whitespace-trimmed candidate against the master key in
// constant time. With no key configured every candidate is denied.
func (v *KeyVerifier) Verify(candidate string) bool {
	if v.master == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(candidate)), []byte(v.master)) == 1
}
