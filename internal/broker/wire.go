package broker

import (
	"fmt"

	"github.com/ocx/engine-broker/internal/emit"
	"github.com/ocx/engine-broker/internal/model"
)

type searchJSON struct {
	Movetime *int64 `json:"movetime,omitempty"`
	Depth    *int   `json:"depth,omitempty"`
	Nodes    *int64 `json:"nodes,omitempty"`
}

type workJSON struct {
	SessionId  string     `json:"sessionId"`
	Threads    int        `json:"threads"`
	Hash       int        `json:"hash"`
	Search     searchJSON `json:"search"`
	MultiPv    int        `json:"multiPv"`
	Variant    string     `json:"variant"`
	InitialFen string     `json:"initialFen"`
	Moves      []string   `json:"moves"`
}

type engineJSON struct {
	Id           string   `json:"id"`
	Name         string   `json:"name"`
	MaxThreads   int      `json:"maxThreads"`
	MaxHash      int      `json:"maxHash"`
	DefaultDepth int      `json:"defaultDepth"`
	Variants     []string `json:"variants"`
	ProviderData string   `json:"providerData,omitempty"`
}

type analyseRequest struct {
	ClientSecret string   `json:"clientSecret"`
	Work         workJSON `json:"work"`
}

type acquireRequest struct {
	ProviderSecret string `json:"providerSecret"`
}

type acquireResponse struct {
	Id     string     `json:"id"`
	Work   workJSON   `json:"work"`
	Engine engineJSON `json:"engine"`
}

type pvJSON struct {
	Moves []string `json:"moves"`
	Cp    *int64   `json:"cp,omitempty"`
	Mate  *int32   `json:"mate,omitempty"`
	Depth int      `json:"depth"`
}

type emitJSON struct {
	Time  int64    `json:"time"`
	Depth int      `json:"depth"`
	Nodes int64    `json:"nodes"`
	Pvs   []pvJSON `json:"pvs"`
}

func toWork(w workJSON) (model.Work, error) {
	variant, err := model.ParseVariant(w.Variant)
	if err != nil {
		return model.Work{}, err
	}
	mpv, err := model.NewMultiPv(w.MultiPv)
	if err != nil {
		mpv = model.DefaultMultiPv()
	}
	var search model.Search
	switch {
	case w.Search.Movetime != nil:
		search.MovetimeMs = *w.Search.Movetime
	case w.Search.Depth != nil:
		search.Depth = *w.Search.Depth
	case w.Search.Nodes != nil:
		search.Nodes = *w.Search.Nodes
	default:
		return model.Work{}, fmt.Errorf("broker: work.search must set movetime, depth, or nodes")
	}
	return model.Work{
		SessionId:  model.SessionId(w.SessionId),
		Threads:    w.Threads,
		Hash:       w.Hash,
		Search:     search,
		MultiPv:    mpv,
		Variant:    variant,
		InitialFen: w.InitialFen,
		Moves:      w.Moves,
	}, nil
}

func fromWork(w model.Work) workJSON {
	out := workJSON{
		SessionId:  string(w.SessionId),
		Threads:    w.Threads,
		Hash:       w.Hash,
		MultiPv:    int(w.MultiPv),
		Variant:    string(w.Variant),
		InitialFen: w.InitialFen,
		Moves:      w.Moves,
	}
	switch {
	case w.Search.MovetimeMs != 0:
		v := w.Search.MovetimeMs
		out.Search.Movetime = &v
	case w.Search.Depth != 0:
		v := w.Search.Depth
		out.Search.Depth = &v
	case w.Search.Nodes != 0:
		v := w.Search.Nodes
		out.Search.Nodes = &v
	}
	return out
}

func fromEngine(e model.Engine) engineJSON {
	variants := make([]string, len(e.Config.Variants))
	for i, v := range e.Config.Variants {
		variants[i] = string(v)
	}
	return engineJSON{
		Id:           string(e.Id),
		Name:         e.Config.Name,
		MaxThreads:   e.Config.MaxThreads,
		MaxHash:      e.Config.MaxHash,
		DefaultDepth: e.Config.DefaultDepth,
		Variants:     variants,
		ProviderData: e.Config.ProviderData,
	}
}

func fromEmit(e emit.Emit) emitJSON {
	pvs := make([]pvJSON, len(e.Pvs))
	for i, pv := range e.Pvs {
		p := pvJSON{Moves: pv.Moves, Depth: pv.Depth}
		if pv.Eval.IsMate {
			m := pv.Eval.Mate
			p.Mate = &m
		} else {
			c := pv.Eval.Cp
			p.Cp = &c
		}
		pvs[i] = p
	}
	return emitJSON{
		Time:  e.Time.Milliseconds(),
		Depth: e.Depth,
		Nodes: e.Nodes,
		Pvs:   pvs,
	}
}
