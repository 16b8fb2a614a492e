package model

import (
	"fmt"
	"strings"
)

type Variant string

const (
	Chess         Variant = "chess"
	Antichess     Variant = "antichess"
	Atomic        Variant = "atomic"
	Crazyhouse    Variant = "crazyhouse"
	Horde         Variant = "horde"
	KingOfTheHill Variant = "kingofthehill"
	RacingKings   Variant = "racingkings"
	ThreeCheck    Variant = "threecheck"
)

var knownVariants = map[Variant]bool{
	Chess: true, Antichess: true, Atomic: true, Crazyhouse: true,
	Horde: true, KingOfTheHill: true, RacingKings: true, ThreeCheck: true,
}

// aliases maps incoming lichess-style names onto the variants above. Several
// lichess variant spellings collapse onto the plain "chess" rules engine,
// since this system enforces standard movement uniformly (see Non-goals).
var aliases = map[string]Variant{
	"standard":      Chess,
	"chess960":      Chess,
	"fromposition":  Chess,
	"antichess":     Antichess,
	"atomic":        Atomic,
	"crazyhouse":    Crazyhouse,
	"horde":         Horde,
	"kingofthehill": KingOfTheHill,
	"racingkings":   RacingKings,
	"3check":        ThreeCheck,
	"threecheck":    ThreeCheck,
}

// ParseVariant is tolerant of case and the hyphen/space/camelCase variations
// providers and clients tend to send.
func ParseVariant(s string) (Variant, error) {
	normalized := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	if v, ok := aliases[normalized]; ok {
		return v, nil
	}
	if v := Variant(normalized); knownVariants[v] {
		return v, nil
	}
	return "", fmt.Errorf("model: unsupported variant %q", s)
}

func (v Variant) SupportedBy(allowed []Variant) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
