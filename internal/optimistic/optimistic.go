package optimistic

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// This package implements the one reusable optimistic-mutation mechanism the
// whole app shares (likes, quantity edits, status toggles): apply a reversible
// local change immediately, fire the remote call, and on failure restore the
// exact pre-mutation state that was captured up front. Rollback never
// re-inverts the change, so concurrent edits to unrelated fields cannot be
// compounded into a wrong value.

// Notifier receives the human-readable message for every failed mutation.
type Notifier interface {
	Error(message string)
}

// Mutation describes one optimistic local/remote pair.
type Mutation struct {
	// Apply performs the local state change synchronously. It runs before any
	// network traffic and must capture whatever Rollback needs (the
	// pre-image), because Rollback restores, never re-derives.
	Apply func()

	// Remote issues the corresponding gateway call. A nil error commits the
	// mutation; any error triggers Rollback.
	Remote func(ctx context.Context) error

	// Rollback restores the exact pre-mutation state captured by Apply.
	Rollback func()

	// AfterRollback, if set, runs after Rollback with the remote error.
	// Used to re-fetch authoritative state so a stale pre-image cannot stick.
	AfterRollback func(err error)

	// FailureMessage produces the notification text for a given remote error.
	// Optional; a generic message is used when nil.
	FailureMessage func(err error) string
}

// Runner serializes mutations per key: while a mutation for key K is in
// flight, further triggers for K are no-ops. Mutations for different keys run
// independently.
type Runner struct {
	pending *PendingSet
	timeout time.Duration
	notify  Notifier
	log     *logrus.Logger
}

// NewRunner builds a runner. timeout bounds every Remote call; zero means the
// caller's context alone decides, and a hung request would leave the key
// pending until the caller gives up.
func NewRunner(timeout time.Duration, notify Notifier, log *logrus.Logger) *Runner {
	return &Runner{
		pending: NewPendingSet(),
		timeout: timeout,
		notify:  notify,
		log:     log,
	}
}

// Pending reports whether a mutation for key is currently in flight.
func (r *Runner) Pending(key string) bool {
	return r.pending.Has(key)
}

// Do runs one mutation for key. If a mutation for the same key is already
// pending, nothing happens and Do reports started=false: a rapid second click
// must have no observable effect until the first settles.
//
// Do blocks until the mutation settles. The local apply happens before the
// remote call is issued, so callers observe the optimistic value immediately
// even from other goroutines.
func (r *Runner) Do(ctx context.Context, key string, m Mutation) (started bool, err error) {
	if !r.pending.Add(key) {
		return false, nil
	}
	defer r.pending.Remove(key)

	m.Apply()

	remoteCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		remoteCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	remoteErr := m.Remote(remoteCtx)
	if remoteErr == nil {
		// Local state is already correct; commit is a no-op.
		return true, nil
	}

	// Roll back to the saved pre-image, then let the caller re-derive from
	// authoritative state if it wants to.
	m.Rollback()
	if m.AfterRollback != nil {
		m.AfterRollback(remoteErr)
	}

	r.log.WithFields(logrus.Fields{"key": key, "error": remoteErr}).
		Warn("optimistic mutation rolled back")

	if r.notify != nil {
		msg := "Something went wrong. Please try again."
		if m.FailureMessage != nil {
			msg = m.FailureMessage(remoteErr)
		}
		r.notify.Error(msg)
	}

	return true, remoteErr
}
