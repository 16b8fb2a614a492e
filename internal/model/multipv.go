package model

import "fmt"

// MultiPv is the number of principal variations an engine reports,
// bounded to [1, 5].
type MultiPv int

const (
	MinMultiPv MultiPv = 1
	MaxMultiPv MultiPv = 5
)

func NewMultiPv(v int) (MultiPv, error) {
	if v < int(MinMultiPv) || v > int(MaxMultiPv) {
		return 0, fmt.Errorf("model: multipv %d out of range [%d, %d]", v, MinMultiPv, MaxMultiPv)
	}
	return MultiPv(v), nil
}

func DefaultMultiPv() MultiPv { return MinMultiPv }
