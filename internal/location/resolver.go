package location

import (
	"context"
	"errors"
	"sync"
)

// State is a read-only projection of the resolver.
type State struct {
	Status PermissionState
	Reason Reason

	// Location is set only once the cycle reaches Granted.
	Location *Value

	// Cached is the record from a prior session, surfaced as a provisional
	// seed while the cycle is Pending. Its presence never implies Granted.
	Cached *Value
}

// Resolver runs one permission-and-location cycle at a time. Every
// transition is guarded by the cycle id captured in the Cycle token, so
// results from an abandoned cycle are dropped on arrival instead of
// reaching shared state.
type Resolver struct {
	mu     sync.Mutex
	source Source
	store  Store

	cycle    uint64
	status   PermissionState
	reason   Reason
	location *Value
	cached   *Value
}

// NewResolver wires a resolver to its collaborators. A nil source means the
// platform has no location capability; cycles then deny immediately without
// a permission query. A nil store disables the persistent cache.
func NewResolver(source Source, store Store) *Resolver {
	return &Resolver{source: source, store: store}
}

// Begin starts a fresh cycle: state returns to Pending, the cached record
// (if any) is loaded as a provisional seed, and the token for the new cycle
// is returned. Any still-running work from a previous cycle becomes stale.
func (r *Resolver) Begin(ctx context.Context) Cycle {
	var cached *Value
	if r.store != nil {
		if v, err := r.store.Load(ctx); err == nil {
			cached = v
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycle++
	r.status = StatusPending
	r.reason = ReasonNone
	r.location = nil
	r.cached = cached
	if r.source == nil {
		r.status = StatusDenied
		r.reason = ReasonCapabilityUnavailable
	}
	return Cycle{resolver: r, id: r.cycle}
}

// State returns the current projection.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{Status: r.status, Reason: r.reason, Location: r.location, Cached: r.cached}
}

// Reset abandons the current cycle, returning the resolver to its initial
// state. In-flight results for the abandoned cycle are dropped on arrival.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cycle++
	r.status = StatusPending
	r.reason = ReasonNone
	r.location = nil
	r.cached = nil
}

// Cycle identifies one resolution attempt. Its methods apply results only
// while the cycle is still the resolver's current one.
type Cycle struct {
	resolver *Resolver
	id       uint64
}

// Current reports whether this cycle is still the active one.
func (c Cycle) Current() bool {
	if c.resolver == nil {
		return false
	}
	c.resolver.mu.Lock()
	defer c.resolver.mu.Unlock()
	return c.id == c.resolver.cycle
}

// QueryPermission runs the source's permission query for this cycle.
func (c Cycle) QueryPermission(ctx context.Context) (Decision, error) {
	if c.resolver == nil || c.resolver.source == nil {
		return DecisionDenied, nil
	}
	return c.resolver.source.QueryPermission(ctx)
}

// ReadLocation runs the source's location reading for this cycle.
func (c Cycle) ReadLocation(ctx context.Context) (Value, error) {
	if c.resolver == nil || c.resolver.source == nil {
		return Value{}, errors.New("no location source")
	}
	return c.resolver.source.ReadLocation(ctx)
}

// HandlePermission applies a permission result and reports whether the
// cycle should proceed to a location reading. An ErrUndecided result leaves
// the cycle Pending so the caller can prompt the user and deliver the
// decision later. Stale results are dropped.
func (c Cycle) HandlePermission(d Decision, err error) bool {
	r := c.resolver
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.id != r.cycle || r.status != StatusPending {
		return false
	}
	if errors.Is(err, ErrUndecided) {
		return false
	}
	if err != nil || d != DecisionGranted {
		r.status = StatusDenied
		r.reason = ReasonPermissionDenied
		return false
	}
	return true
}

// HandleReading applies a location reading. Success transitions the cycle
// to Granted, publishes the value, and overwrites the persistent cache; a
// failed reading denies the cycle. Stale results are dropped. The returned
// error reports a cache-write failure only, which does not affect the
// resolved state.
func (c Cycle) HandleReading(ctx context.Context, v Value, err error) error {
	r := c.resolver
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if c.id != r.cycle || r.status != StatusPending {
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		r.status = StatusDenied
		r.reason = ReasonReadingFailed
		r.mu.Unlock()
		return nil
	}
	val := v
	r.status = StatusGranted
	r.location = &val
	store := r.store
	r.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Save(ctx, v)
}
