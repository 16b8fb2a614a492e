package model

import (
	"github.com/ocx/engine-broker/internal/chesscore"
)

// Search picks exactly one of MovetimeMs, Depth, or Nodes; the zero value of
// the unused fields is not meaningful.
type Search struct {
	MovetimeMs int64
	Depth      int
	Nodes      int64
}

type EngineConfig struct {
	Name         string
	ClientSecret ClientSecret
	UserId       UserId
	MaxThreads   int
	MaxHash      int
	DefaultDepth int
	Variants     []Variant
	ProviderData string
}

type Engine struct {
	Id     EngineId
	Config EngineConfig
}

// Work is the analysis request a requester submits. Moves is the raw,
// client-provided long-algebraic move list; Sanitize replays it and returns
// the canonicalized equivalent alongside the resulting Position.
type Work struct {
	SessionId  SessionId
	Threads    int
	Hash       int
	Search     Search
	MultiPv    MultiPv
	Variant    Variant
	InitialFen string
	Moves      []string
}

// Sanitize validates Work against the owning engine's limits and the actual
// chess rules, returning a canonicalized Work (clamped threads/hash, the
// re-serialized initial FEN, and moves rewritten in canonical Chess960
// long-algebraic form) plus the Position reached after replaying every move.
func (w Work) Sanitize(engine Engine) (Work, *chesscore.Position, error) {
	if !w.Variant.SupportedBy(engine.Config.Variants) {
		return Work{}, nil, ErrUnsupportedVariant
	}
	if len(w.Moves) > MaxMoves {
		return Work{}, nil, ErrTooManyMoves
	}

	pos, err := chesscore.ParseFEN(w.InitialFen)
	if err != nil {
		return Work{}, nil, ErrIllegalPosition
	}

	canonical := make([]string, 0, len(w.Moves))
	for _, tok := range w.Moves {
		mv, err := chesscore.ParseUCI(tok)
		if err != nil {
			return Work{}, nil, ErrIllegalMove
		}
		if !pos.IsLegal(mv) {
			return Work{}, nil, ErrIllegalMove
		}
		canonical = append(canonical, pos.Chess960UCI(mv))
		if err := pos.Play(mv); err != nil {
			return Work{}, nil, ErrIllegalMove
		}
	}

	startPos, err := chesscore.ParseFEN(w.InitialFen)
	if err != nil {
		return Work{}, nil, ErrIllegalPosition
	}

	out := w
	out.InitialFen = startPos.FEN()
	out.Moves = canonical
	if out.Threads > engine.Config.MaxThreads {
		out.Threads = engine.Config.MaxThreads
	}
	if out.Threads < 1 {
		out.Threads = 1
	}
	if out.Hash > engine.Config.MaxHash {
		out.Hash = engine.Config.MaxHash
	}
	if out.Hash < 1 {
		out.Hash = 1
	}
	return out, pos, nil
}
