package checkout

// Status is the checkout session state.
type Status string

const (
	StatusIdle                  Status = "idle"
	StatusInitializing          Status = "initializing"
	StatusAwaitingPaymentMethod Status = "awaiting_payment_method"
	StatusConfirming            Status = "confirming"
	StatusSucceeded             Status = "succeeded"
	StatusFailed                Status = "failed"
)

// IsTerminal reports whether the session has settled. From confirming the
// machine reaches exactly one of these, never both.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
