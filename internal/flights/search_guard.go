package flights

import (
	"context"
	"errors"
	"sync"
)

// ErrSearchSuperseded is the cancel cause of a search replaced by a newer one
var ErrSearchSuperseded = errors.New("search superseded")

type inflightSearch struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// SearchGuard keeps at most one live search per client key. Starting a search
// cancels the previous one for the same key, so only the newest can answer.
type SearchGuard struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflightSearch
}

func NewSearchGuard() *SearchGuard {
	return &SearchGuard{inflight: make(map[string]inflightSearch)}
}

// Begin registers a search and returns its context and a release func that
// must be called when the search is done
func (g *SearchGuard) Begin(parent context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	g.mu.Lock()
	g.seq++
	id := g.seq
	if prev, ok := g.inflight[key]; ok {
		prev.cancel(ErrSearchSuperseded)
	}
	g.inflight[key] = inflightSearch{id: id, cancel: cancel}
	g.mu.Unlock()

	return ctx, func() {
		g.mu.Lock()
		if cur, ok := g.inflight[key]; ok && cur.id == id {
			delete(g.inflight, key)
		}
		g.mu.Unlock()
		cancel(nil)
	}
}

// InFlight is the number of searches currently registered
func (g *SearchGuard) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

// Superseded reports whether ctx was cancelled by a newer search
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSearchSuperseded)
}
