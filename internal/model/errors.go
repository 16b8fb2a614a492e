package model

import "errors"

var (
	ErrUnsupportedVariant = errors.New("model: unsupported variant for this engine")
	ErrIllegalPosition    = errors.New("model: initial position is not legal")
	ErrIllegalMove        = errors.New("model: move list contains an illegal move")
	ErrTooManyMoves       = errors.New("model: move list exceeds the maximum ply count")
)

// MaxMoves bounds how long a game history the broker will replay while
// sanitizing a Work request.
const MaxMoves = 600
