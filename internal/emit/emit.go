// Package emit reduces a stream of parsed UCI "info" lines into coalesced
// progress snapshots suitable for forwarding to a waiting requester.
package emit

import (
	"math"
	"time"

	"github.com/ocx/engine-broker/internal/chesscore"
	"github.com/ocx/engine-broker/internal/uci"
)

const maxNormalizedPlies = 30

// EmitPv is one principal variation within a snapshot.
type EmitPv struct {
	Moves []string
	Eval  uci.Eval
	Depth int
}

// Emit is a coalesced progress snapshot ready to send to a requester.
type Emit struct {
	Time  time.Duration
	Depth int
	Nodes int64
	Pvs   []EmitPv
}

// Aggregator holds the running state for one analysis session. It is not
// safe for concurrent use; the broker owns one per streaming job.
type Aggregator struct {
	root    *chesscore.Position
	multiPv int

	time     time.Duration
	depth    int
	nodes    int64
	minDepth int
	pvs      []*EmitPv
}

// NewAggregator prepares an aggregator for a session that requested multiPv
// principal variations. pvs is pre-sized to multiPv and reset to that size
// (not emptied) on every new base-depth report, so a requester asking for
// multiPv:2 never sees a premature length-1 snapshot before slot 2 reports in.
func NewAggregator(root *chesscore.Position, multiPv int) *Aggregator {
	if multiPv < 1 {
		multiPv = 1
	}
	return &Aggregator{root: root, multiPv: multiPv, minDepth: math.MaxInt32, pvs: make([]*EmitPv, multiPv)}
}

// Update folds one parsed info line into the aggregator's state and reports
// whether the resulting state is ready to send as a snapshot.
func (a *Aggregator) Update(info *uci.Info) (Emit, bool) {
	k := info.MultiPv
	if k < 1 {
		k = 1
	}

	if k == 1 {
		a.time = info.Time
		a.nodes = info.Nodes
		if info.HasDepth {
			a.depth = info.Depth
			a.minDepth = info.Depth
		}
		a.pvs = make([]*EmitPv, a.multiPv)
	} else if info.HasDepth && info.Depth < a.minDepth {
		a.minDepth = info.Depth
		a.depth = a.minDepth
	}

	worthy := info.HasDepth && info.Score != nil && info.HasPv &&
		(k > 1 || !(info.Score.Lowerbound || info.Score.Upperbound))
	if worthy {
		eval := info.Score.Eval
		if a.root.Turn != chesscore.White {
			eval = eval.Negate()
		}
		slot := &EmitPv{
			Moves: a.normalizePv(info.Pv),
			Eval:  eval,
			Depth: info.Depth,
		}
		for len(a.pvs) < k {
			a.pvs = append(a.pvs, nil)
		}
		a.pvs[k-1] = slot
	}

	if !a.ShouldEmit() {
		return Emit{}, false
	}
	return a.snapshot(), true
}

// ShouldEmit reports whether every requested multipv slot is populated.
func (a *Aggregator) ShouldEmit() bool {
	if len(a.pvs) == 0 {
		return false
	}
	for _, pv := range a.pvs {
		if pv == nil {
			return false
		}
	}
	return true
}

func (a *Aggregator) snapshot() Emit {
	pvs := make([]EmitPv, len(a.pvs))
	for i, pv := range a.pvs {
		pvs[i] = *pv
	}
	return Emit{Time: a.time, Depth: a.depth, Nodes: a.nodes, Pvs: pvs}
}

// normalizePv replays moves from the aggregator's root position, re-rendering
// each in canonical Chess960 long-algebraic form and stopping at the first
// illegal move or after maxNormalizedPlies, whichever comes first.
func (a *Aggregator) normalizePv(moves []string) []string {
	pos := a.root.Clone()
	out := make([]string, 0, len(moves))
	for i, tok := range moves {
		if i >= maxNormalizedPlies {
			break
		}
		mv, err := chesscore.ParseUCI(tok)
		if err != nil || !pos.IsLegal(mv) {
			break
		}
		out = append(out, pos.Chess960UCI(mv))
		if err := pos.Play(mv); err != nil {
			break
		}
	}
	return out
}
