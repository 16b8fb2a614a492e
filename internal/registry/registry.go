// Package registry is the read-side adapter over the persistent engine
// store: a Postgres table keyed by engine id, queried via database/sql and
// github.com/lib/pq.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ocx/engine-broker/internal/model"
)

var ErrNotFound = errors.New("registry: no such engine")

// detachTimeout bounds how long a lookup may run once detached onto its own
// goroutine; it does not bound the caller's wait, which is governed by ctx.
const detachTimeout = 5 * time.Second

type configRow struct {
	Name         string   `json:"name"`
	UserId       string   `json:"userId"`
	MaxThreads   int      `json:"maxThreads"`
	MaxHash      int      `json:"maxHash"`
	DefaultDepth int      `json:"defaultDepth"`
	Variants     []string `json:"variants"`
	ProviderData string   `json:"providerData,omitempty"`
}

type Store struct {
	db  *sql.DB
	log *slog.Logger
}

func NewStore(db *sql.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log}
}

type findResult struct {
	engine         model.Engine
	clientSecret   []byte
	providerSecret []byte
	err            error
}

// Find resolves an engine id and validates the presented client secret. The
// actual query runs on a goroutine detached from ctx: database/sql does not
// reliably abandon an in-flight query for every driver on context
// cancellation, the same shape the distilled spec's Rust source hits with
// MongoDB ("the driver does not support cancellation"), so the query is
// given its own bounded deadline and the caller's ctx only bounds how long
// it's willing to wait for the result, not the query itself.
func (s *Store) Find(ctx context.Context, id model.EngineId, secret model.ClientSecret) (model.Engine, model.ProviderSelector, error) {
	resultCh := make(chan findResult, 1)
	go s.lookup(id, resultCh)

	select {
	case res := <-resultCh:
		if res.err != nil {
			return model.Engine{}, model.ProviderSelector{}, res.err
		}
		if !secret.Equal(res.clientSecret) {
			return model.Engine{}, model.ProviderSelector{}, ErrNotFound
		}
		selector := model.NewProviderSelector(model.ProviderSecret(res.providerSecret))
		return res.engine, selector, nil
	case <-ctx.Done():
		return model.Engine{}, model.ProviderSelector{}, ctx.Err()
	}
}

func (s *Store) lookup(id model.EngineId, out chan<- findResult) {
	ctx, cancel := context.WithTimeout(context.Background(), detachTimeout)
	defer cancel()

	var configJSON []byte
	var clientSecret []byte
	var providerSecret []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT config, client_secret, provider_secret FROM external_engine WHERE id = $1`, string(id))
	if err := row.Scan(&configJSON, &clientSecret, &providerSecret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			out <- findResult{err: ErrNotFound}
			return
		}
		s.log.Error("engine registry query failed", "engine_id", id, "error", err)
		out <- findResult{err: fmt.Errorf("registry: query failed: %w", err)}
		return
	}

	var cfg configRow
	if err := json.Unmarshal(configJSON, &cfg); err != nil {
		out <- findResult{err: fmt.Errorf("registry: malformed config row: %w", err)}
		return
	}

	variants := make([]model.Variant, 0, len(cfg.Variants))
	for _, v := range cfg.Variants {
		variant, err := model.ParseVariant(v)
		if err != nil {
			continue
		}
		variants = append(variants, variant)
	}

	engine := model.Engine{
		Id: id,
		Config: model.EngineConfig{
			Name:         cfg.Name,
			ClientSecret: model.ClientSecret(clientSecret),
			UserId:       model.UserId(cfg.UserId),
			MaxThreads:   cfg.MaxThreads,
			MaxHash:      cfg.MaxHash,
			DefaultDepth: cfg.DefaultDepth,
			Variants:     variants,
			ProviderData: cfg.ProviderData,
		},
	}
	out <- findResult{engine: engine, clientSecret: clientSecret, providerSecret: providerSecret}
}
