package broker

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ocx/engine-broker/internal/emit"
	"github.com/ocx/engine-broker/internal/model"
	"github.com/ocx/engine-broker/internal/registry"
	"github.com/ocx/engine-broker/internal/uci"
)

// Analyse handles POST /api/external-engine/{id}/analyse: it validates the
// request against the registry, sanitizes the work, enqueues a Job under the
// engine's provider selector, and streams newline-delimited Emit objects
// back for as long as the provider keeps submitting output.
func (b *Broker) Analyse(w http.ResponseWriter, r *http.Request, engineID string) {
	var req analyseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newError(Protocol, "malformed request body"))
		return
	}

	engine, selector, err := b.registry.Find(r.Context(), model.EngineId(engineID), model.ClientSecret(req.ClientSecret))
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			writeError(w, newError(EngineNotFound, "no such engine"))
			return
		}
		b.log.Error("registry lookup failed", "engine_id", engineID, "error", err)
		writeError(w, newError(Registry, "registry unavailable"))
		return
	}

	work, err := toWork(req.Work)
	if err != nil {
		writeError(w, newError(InvalidWork, err.Error()))
		return
	}
	sanitized, pos, err := work.Sanitize(engine)
	if err != nil {
		writeError(w, newError(InvalidWork, err.Error()))
		return
	}

	job := NewJob(r.Context(), sanitized, pos, engine)
	b.hub.Submit(selector, job)

	ctx, cancel := context.WithTimeout(r.Context(), b.AnalyseTimeout)
	defer cancel()

	select {
	case streamCh := <-job.Ready:
		b.streamEmits(w, r, streamCh)
	case <-ctx.Done():
		if r.Context().Err() != nil {
			return // requester disconnected before anyone acquired the job
		}
		writeError(w, newError(ProviderTimeout, "no provider available"))
	}
}

func (b *Broker) streamEmits(w http.ResponseWriter, r *http.Request, streamCh <-chan emit.Emit) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for {
		select {
		case e, ok := <-streamCh:
			if !ok {
				return
			}
			_ = enc.Encode(fromEmit(e))
			if flusher != nil {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// Acquire handles POST /api/external-engine/work: a provider long-polls for
// the next job queued under its provider selector.
func (b *Broker) Acquire(w http.ResponseWriter, r *http.Request) {
	var req acquireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, newError(Protocol, "malformed request body"))
		return
	}
	selector := model.NewProviderSelector(model.ProviderSecret(req.ProviderSecret))

	ctx, cancel := context.WithTimeout(r.Context(), b.AcquireTimeout)
	defer cancel()

	job, ok := b.hub.Acquire(ctx, selector)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	id := model.NewJobId()
	b.ongoing.Add(id, job)

	resp := acquireResponse{
		Id:     string(id),
		Work:   fromWork(job.Work),
		Engine: fromEngine(job.Engine),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Submit handles POST /api/external-engine/work/{id}: the provider streams
// raw UCI lines in the request body; each is parsed, folded into an emit
// aggregator, and forwarded to the waiting requester when it produces a
// ready snapshot. A bestmove line or a closed body ends the job.
func (b *Broker) Submit(w http.ResponseWriter, r *http.Request, jobID string) {
	job, ok := b.ongoing.Remove(model.JobId(jobID))
	if !ok {
		writeError(w, newError(WorkNotFound, "no such job"))
		return
	}

	streamCh := make(chan emit.Emit, 1)
	select {
	case job.Ready <- streamCh:
	case <-job.ReqCtx.Done():
		w.WriteHeader(http.StatusOK)
		return
	}

	agg := emit.NewAggregator(job.Pos, int(job.Work.MultiPv))
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out, err := uci.ParseLine(scanner.Text())
		if err != nil {
			close(streamCh)
			writeError(w, newError(Protocol, err.Error()))
			return
		}
		if out == nil {
			continue
		}
		if out.Bestmove != nil {
			close(streamCh)
			w.WriteHeader(http.StatusOK)
			return
		}
		if out.Info == nil {
			continue
		}
		e, ready := agg.Update(out.Info)
		if !ready {
			continue
		}
		select {
		case streamCh <- e:
		case <-job.ReqCtx.Done():
			close(streamCh)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	close(streamCh)
	if err := scanner.Err(); err != nil {
		writeError(w, newError(Io, err.Error()))
		return
	}
	w.WriteHeader(http.StatusOK)
}
