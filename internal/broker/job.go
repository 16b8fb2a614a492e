package broker

import (
	"context"

	"github.com/ocx/engine-broker/internal/chesscore"
	"github.com/ocx/engine-broker/internal/emit"
	"github.com/ocx/engine-broker/internal/model"
)

// Job is what sits in the Hub (keyed by ProviderSelector) and, after a
// provider acquires it, in the Ongoing table (keyed by JobId). ReqCtx is the
// analyse request's context: once it's done, the requester is gone, and
// IsValid reflects that to both containers' garbage collectors.
type Job struct {
	ReqCtx context.Context
	Ready  chan chan emit.Emit

	Work   model.Work
	Pos    *chesscore.Position
	Engine model.Engine
}

func NewJob(ctx context.Context, work model.Work, pos *chesscore.Position, engine model.Engine) *Job {
	return &Job{
		ReqCtx: ctx,
		Ready:  make(chan chan emit.Emit, 1),
		Work:   work,
		Pos:    pos,
		Engine: engine,
	}
}

func (j *Job) IsValid() bool {
	return j.ReqCtx.Err() == nil
}
