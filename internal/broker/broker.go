// Package broker implements the job lifecycle: the three-endpoint handshake
// that matches an analysis requester with a registered provider and streams
// parsed engine output between them.
package broker

import (
	"context"
	"log/slog"
	"time"

	"github.com/ocx/engine-broker/internal/hub"
	"github.com/ocx/engine-broker/internal/model"
	"github.com/ocx/engine-broker/internal/ongoing"
)

// Registry is the external collaborator that resolves an engine id and
// client secret into its configuration and provider selector. Implemented by
// internal/registry against Postgres in production, and by a fake in tests.
type Registry interface {
	Find(ctx context.Context, id model.EngineId, secret model.ClientSecret) (model.Engine, model.ProviderSelector, error)
}

type Broker struct {
	hub      *hub.Hub[model.ProviderSelector, *Job]
	ongoing  *ongoing.Ongoing[model.JobId, *Job]
	registry Registry
	log      *slog.Logger

	AnalyseTimeout time.Duration
	AcquireTimeout time.Duration

	// HubGCInterval and OngoingGCInterval override the default sweep cadence
	// (13s / 7s) when set; tests shrink these to avoid waiting on real time.
	HubGCInterval     time.Duration
	OngoingGCInterval time.Duration
}

func New(registry Registry, log *slog.Logger) *Broker {
	if log == nil {
		log = slog.Default()
	}
	return &Broker{
		hub: hub.New[model.ProviderSelector, *Job](func(s model.ProviderSelector) []byte {
			return s[:]
		}),
		ongoing: ongoing.New[model.JobId, *Job](func(id model.JobId) []byte {
			return []byte(id)
		}),
		registry:       registry,
		log:            log,
		AnalyseTimeout: 15 * time.Second,
		AcquireTimeout: 10 * time.Second,
	}
}

// RunGC starts the Hub's and Ongoing table's background collectors; it
// returns immediately, the goroutines run until ctx is done.
func (b *Broker) RunGC(ctx context.Context) {
	go b.hub.RunGC(ctx, b.HubGCInterval)
	go b.ongoing.RunGC(ctx, b.OngoingGCInterval)
}

// HubDepth and OngoingCount are exposed for internal/obsv's gauges.
func (b *Broker) HubDepth() int      { return b.hub.Depth() }
func (b *Broker) OngoingCount() int  { return b.ongoing.Len() }
