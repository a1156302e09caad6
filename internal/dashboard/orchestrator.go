package dashboard

import (
	"context"
	"sync"

	"github.com/arlo/localdash/internal/location"
	"github.com/arlo/localdash/internal/widget"
)

// Fetcher is the widget-feed dependency.
type Fetcher interface {
	FetchWidgets(ctx context.Context, lat, lon float64) ([]widget.Descriptor, error)
}

// Orchestrator gates the widget fetch on a granted, present location and
// projects a loading/ready/failed view over the results. Every accepted
// location bumps a fetch generation; only the newest generation's result is
// applied, so a stale fetch that lands late is discarded instead of
// clobbering fresher data.
type Orchestrator struct {
	mu       sync.Mutex
	gen      uint64
	widgets  []widget.Descriptor
	seed     []widget.Descriptor
	fetched  bool
	denied   bool
	err      error
	location *location.Value
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{}
}

// Seed installs a prior session's payload as provisional content. Seeded
// widgets show until a fresh fetch completes and never count as one.
func (o *Orchestrator) Seed(ws []widget.Descriptor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fetched {
		return
	}
	o.seed = ws
}

// Observe consumes a resolver state and reports whether a fetch should be
// issued, and under which generation. A fetch is due only when the status
// is Granted and a location value is present; each such observation
// supersedes any fetch still in flight.
func (o *Orchestrator) Observe(st location.State) (uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch st.Status {
	case location.StatusDenied:
		o.denied = true
		return 0, false
	case location.StatusGranted:
		if st.Location == nil {
			return 0, false
		}
		v := *st.Location
		o.location = &v
		o.denied = false
		o.err = nil
		o.gen++
		return o.gen, true
	default:
		return 0, false
	}
}

// Apply installs a fetch result and reports whether it was accepted.
// Results carrying a superseded generation are dropped. A fetch error is
// recorded as a distinct failed state rather than leaving the view stuck
// on "loading".
func (o *Orchestrator) Apply(gen uint64, ws []widget.Descriptor, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		return false
	}
	if err != nil {
		o.err = err
		return true
	}
	o.widgets = ws
	o.fetched = true
	o.err = nil
	o.seed = nil
	return true
}

// Widgets returns the current ordered widget sequence: the fresh result
// once a fetch completed, otherwise the provisional seed.
func (o *Orchestrator) Widgets() []widget.Descriptor {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fetched {
		return o.widgets
	}
	return o.seed
}

// Loading reports whether the dashboard is still waiting for a first
// result in this cycle. It turns false as soon as a fetch completes, the
// cycle is denied, or the fetch fails — an empty successful payload is a
// completed fetch, not a loading state.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.denied || o.err != nil {
		return false
	}
	return !o.fetched
}

// Fetched reports whether a fetch for the current cycle completed
// successfully.
func (o *Orchestrator) Fetched() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fetched
}

// Stale reports whether the visible widgets come from the provisional seed
// rather than a completed fetch.
func (o *Orchestrator) Stale() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.fetched && len(o.seed) > 0
}

// Denied reports whether the location cycle ended Denied, meaning no fetch
// will occur this cycle.
func (o *Orchestrator) Denied() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.denied
}

// Err returns the recorded fetch failure, if any.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Location returns the coordinates the current generation was issued for.
func (o *Orchestrator) Location() *location.Value {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.location
}

// Reset clears all derived state for a new cycle. Fetches still in flight
// become stale and their results are discarded on arrival.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	o.widgets = nil
	o.seed = nil
	o.fetched = false
	o.denied = false
	o.err = nil
	o.location = nil
}
