// Package model holds the broker's domain types: identifiers, secrets,
// variants, and the Work descriptor a provider is asked to analyse.
package model

import (
	"crypto/rand"
)

type EngineId string
type UserId string
type SessionId string
type JobId string

const jobIdAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewJobId mints a fresh 16-character random identifier, minted only once a
// job is actually acquired by a provider.
func NewJobId() JobId {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("model: crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, 16)
	for i, b := range buf {
		out[i] = jobIdAlphabet[int(b)%len(jobIdAlphabet)]
	}
	return JobId(out)
}
