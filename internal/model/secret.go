package model

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// ClientSecret is the shared secret an analyse request must present to prove
// it's allowed to submit work against a given engine.
type ClientSecret []byte

// Equal performs a constant-time comparison; mismatched lengths compare
// unequal without inspecting the bytes.
func (s ClientSecret) Equal(other ClientSecret) bool {
	if len(s) != len(other) {
		return false
	}
	return subtle.ConstantTimeCompare(s, other) == 1
}

// ProviderSecret is the shared secret a provider presents when long-polling
// for work; it never appears in the Hub key directly, only its derived
// ProviderSelector does.
type ProviderSecret []byte

// ProviderSelector is the Hub's sharding/lookup key: a one-way digest of the
// provider secret, so a leaked selector never discloses the secret itself.
type ProviderSelector [sha256.Size]byte

func NewProviderSelector(secret ProviderSecret) ProviderSelector {
	h := sha256.New()
	h.Write([]byte("providerSecret:"))
	h.Write(secret)
	var out ProviderSelector
	copy(out[:], h.Sum(nil))
	return out
}

func (s ProviderSelector) String() string {
	return hex.EncodeToString(s[:])
}
