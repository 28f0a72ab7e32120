package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader is a single "data dependency" abstraction: every remote read the
// surface layer needs is keyed by (resource, params) and carries an explicit
// loading/error/success state, instead of each tab or widget hand-rolling its
// own fetch-and-error-handling. Concurrent loads of the same dependency are
// collapsed to one in-flight call.

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Result is the current state of one dependency.
type Result struct {
	State     State
	Value     any
	Err       error
	FetchedAt time.Time
}

// Func produces the value for a dependency.
type Func func(ctx context.Context) (any, error)

type Loader struct {
	mu   sync.Mutex
	deps map[string]Result
	sfg  singleflight.Group
}

func NewLoader() *Loader {
	return &Loader{deps: make(map[string]Result)}
}

func key(resource, params string) string {
	return resource + "?" + params
}

// Peek returns the dependency's state without triggering a load.
func (l *Loader) Peek(resource, params string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.deps[key(resource, params)]; ok {
		return r
	}
	return Result{State: StateIdle}
}

// Load fetches the dependency, collapsing concurrent callers onto one fetch.
// The stored state moves to loading for the duration and settles to ready or
// failed; a later Load retries a failed dependency.
func (l *Loader) Load(ctx context.Context, resource, params string, fn Func) (any, error) {
	k := key(resource, params)

	l.mu.Lock()
	l.deps[k] = Result{State: StateLoading}
	l.mu.Unlock()

	v, err, _ := l.sfg.Do(k, func() (any, error) {
		return fn(ctx)
	})

	l.mu.Lock()
	if err != nil {
		l.deps[k] = Result{State: StateFailed, Err: err, FetchedAt: time.Now()}
	} else {
		l.deps[k] = Result{State: StateReady, Value: v, FetchedAt: time.Now()}
	}
	l.mu.Unlock()

	return v, err
}

// Invalidate forgets a dependency so the next Load refetches it.
func (l *Loader) Invalidate(resource, params string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.deps, key(resource, params))
}
