package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/notify"
	"github.com/remedyroot/remedyroot-golang/internal/payments"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Guard violations. Settled outcomes (success, decline, transport failure)
// are not errors: they are states of the returned session.
var (
	ErrEmptyCart            = errors.New("checkout: cart is empty")
	ErrNoSessionToken       = errors.New("checkout: missing session token")
	ErrCheckoutInProgress   = errors.New("checkout: a session is already in progress")
	ErrNoActiveSession      = errors.New("checkout: no active session")
	ErrAlreadySubmitted     = errors.New("checkout: payment already submitted")
	ErrNotAwaitingPayment   = errors.New("checkout: session is not awaiting a payment method")
	ErrInvalidPaymentMethod = errors.New("checkout: payment method is missing or invalid")
)

// Session is one checkout attempt. Snapshot and TotalAmount are frozen when
// the session begins; edits to the live cart during checkout apply only to a
// future checkout, never to the in-flight charge.
type Session struct {
	ID             string          `json:"id"`
	Snapshot       cart.Snapshot   `json:"snapshot"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ClientSecret   string          `json:"-"` // opaque charge handle, never serialized
	Status         Status          `json:"status"`
	FailureMessage string          `json:"failureMessage,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Recorder persists the order after a confirmed charge. Recording is
// best-effort from the machine's point of view: the charge already happened,
// so a recording failure is logged and surfaced, not rolled back.
type Recorder interface {
	RecordOrder(ctx context.Context, userID int64, snapshot cart.Snapshot) (int64, error)
}

// Machine drives one user's checkout. At most one session is active at a
// time; starting a new one while another has not settled is rejected so a
// charge can never be requested twice for the same intent.
type Machine struct {
	mu       sync.Mutex
	userID   int64
	cart     *cart.Cart
	payments payments.Client
	feed     *notify.Feed
	recorder Recorder // optional
	timeout  time.Duration
	log      *logrus.Logger

	session *Session
}

func NewMachine(userID int64, c *cart.Cart, p payments.Client, feed *notify.Feed, recorder Recorder, timeout time.Duration, log *logrus.Logger) *Machine {
	return &Machine{
		userID:   userID,
		cart:     c,
		payments: p,
		feed:     feed,
		recorder: recorder,
		timeout:  timeout,
		log:      log,
	}
}

// Current returns a copy of the active session, if any.
func (m *Machine) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// Begin opens checkout: freezes a cart snapshot, fixes the total, and asks
// the payment processor for a client secret. The bearer token is a hard
// precondition; without one no session is created at all.
//
// A previous failed (or succeeded) session is replaced; its client secret is
// never reused. Re-opening always requests a fresh intent.
func (m *Machine) Begin(ctx context.Context, bearerToken string) (Session, error) {
	m.mu.Lock()
	if bearerToken == "" {
		m.mu.Unlock()
		return Session{}, ErrNoSessionToken
	}
	if m.session != nil && !m.session.Status.IsTerminal() {
		m.mu.Unlock()
		return Session{}, ErrCheckoutInProgress
	}

	snap := m.cart.Snapshot()
	if snap.Empty() {
		m.mu.Unlock()
		return Session{}, ErrEmptyCart
	}

	sess := &Session{
		ID:          uuid.NewString(),
		Snapshot:    snap,
		TotalAmount: snap.TotalAmount,
		Status:      StatusInitializing,
		CreatedAt:   time.Now(),
	}
	m.session = sess
	m.mu.Unlock()

	intentCtx, cancel := m.bound(ctx)
	defer cancel()
	intent, err := m.payments.CreateIntent(intentCtx, snap, snap.TotalAmount, bearerToken)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		// No automatic retry: the user must re-open checkout, which requests
		// a fresh intent.
		sess.Status = StatusFailed
		sess.FailureMessage = "We could not start your checkout. Please try again."
		m.feed.Error(sess.FailureMessage)
		m.log.WithFields(logrus.Fields{"user_id": m.userID, "error": err}).
			Warn("payment intent request failed")
		return *sess, nil
	}

	sess.ClientSecret = intent.ClientSecret
	sess.Status = StatusAwaitingPaymentMethod
	m.log.WithFields(logrus.Fields{
		"user_id": m.userID,
		"session": sess.ID,
		"total":   sess.TotalAmount.StringFixed(2),
	}).Info("checkout session opened")
	return *sess, nil
}

// Submit confirms the pending charge with the user's payment method.
//
// Guards: there must be an awaiting session holding a client secret, and the
// widget must have produced a valid method; otherwise the session is left in
// awaiting_payment_method with a validation error. While the session is
// confirming or already succeeded, further submissions are rejected without
// side effects (double-submission guard).
func (m *Machine) Submit(ctx context.Context, method payments.Method) (Session, error) {
	m.mu.Lock()
	sess := m.session
	switch {
	case sess == nil:
		m.mu.Unlock()
		return Session{}, ErrNoActiveSession
	case sess.Status == StatusConfirming || sess.Status == StatusSucceeded:
		s := *sess
		m.mu.Unlock()
		return s, ErrAlreadySubmitted
	case sess.Status != StatusAwaitingPaymentMethod:
		s := *sess
		m.mu.Unlock()
		return s, ErrNotAwaitingPayment
	case !method.Valid():
		// Validation errors stay local; nothing is sent to the processor and
		// the session remains interactive.
		s := *sess
		m.mu.Unlock()
		return s, ErrInvalidPaymentMethod
	}

	sess.Status = StatusConfirming
	secret := sess.ClientSecret
	m.mu.Unlock()

	confirmCtx, cancel := m.bound(ctx)
	defer cancel()
	outcome, err := m.payments.ConfirmPayment(confirmCtx, secret, method)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		// Transport failure: the charge state is unknown, so treat it as a
		// failure, drop the secret, and let the user re-open checkout. The
		// cart is untouched so nothing has to be re-added.
		sess.Status = StatusFailed
		sess.ClientSecret = ""
		sess.FailureMessage = "Payment could not be completed. Please try again."
		m.feed.Error(sess.FailureMessage)
		m.log.WithFields(logrus.Fields{"user_id": m.userID, "session": sess.ID, "error": err}).
			Warn("payment confirmation failed")
		return *sess, nil
	}

	if !outcome.Succeeded {
		sess.Status = StatusFailed
		sess.ClientSecret = "" // a stale secret is never reused after a failure
		sess.FailureMessage = outcome.Message
		m.feed.Error(outcome.Message)
		m.log.WithFields(logrus.Fields{"user_id": m.userID, "session": sess.ID}).
			Info("payment declined")
		return *sess, nil
	}

	sess.Status = StatusSucceeded
	m.cart.Clear()
	m.feed.Success("Payment successful. Thank you for your order!")
	m.log.WithFields(logrus.Fields{
		"user_id": m.userID,
		"session": sess.ID,
		"total":   sess.TotalAmount.StringFixed(2),
	}).Info("checkout succeeded")

	if m.recorder != nil {
		if _, err := m.recorder.RecordOrder(ctx, m.userID, sess.Snapshot); err != nil {
			// The charge went through; the order row can be backfilled.
			m.log.WithFields(logrus.Fields{"user_id": m.userID, "session": sess.ID, "error": err}).
				Error("failed to record order after successful charge")
		}
	}

	return *sess, nil
}

func (m *Machine) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(ctx, m.timeout)
	}
	return context.WithCancel(ctx)
}
