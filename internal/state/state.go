package state

import (
	"sync"
	"time"

	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/checkout"
	"github.com/remedyroot/remedyroot-golang/internal/fetch"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/likes"
	"github.com/remedyroot/remedyroot-golang/internal/notify"
	"github.com/remedyroot/remedyroot-golang/internal/optimistic"
	"github.com/remedyroot/remedyroot-golang/internal/payments"
	"github.com/remedyroot/remedyroot-golang/internal/session"
	"github.com/sirupsen/logrus"
)

// Client is one authenticated user's session-scoped state: the live cart, the
// checkout machine over it, the like store, the transient notification feed,
// and the dependency loader for dashboard data. Everything here is in-memory
// and rebuilt from the gateway when the user reconnects.
type Client struct {
	Session  *session.Session
	Cart     *cart.Cart
	Checkout *checkout.Machine
	Likes    *likes.Store
	Feed     *notify.Feed
	Loader   *fetch.Loader
	Runner   *optimistic.Runner
}

// Registry hands out one Client per user id.
type Registry struct {
	mu      sync.Mutex
	clients map[int64]*Client

	gw              gateway.Gateway
	payments        payments.Client
	mutationTimeout time.Duration
	checkoutTimeout time.Duration
	log             *logrus.Logger
}

func NewRegistry(gw gateway.Gateway, p payments.Client, mutationTimeout, checkoutTimeout time.Duration, log *logrus.Logger) *Registry {
	return &Registry{
		clients:         make(map[int64]*Client),
		gw:              gw,
		payments:        p,
		mutationTimeout: mutationTimeout,
		checkoutTimeout: checkoutTimeout,
		log:             log,
	}
}

// GetOrCreate returns the user's client state, building it on first access.
func (r *Registry) GetOrCreate(userID int64) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[userID]; ok {
		return c
	}

	feed := notify.NewFeed()
	runner := optimistic.NewRunner(r.mutationTimeout, feed, r.log)
	userCart := cart.New()

	c := &Client{
		Cart: userCart,
		Checkout: checkout.NewMachine(userID, userCart, r.payments, feed,
			checkout.NewGatewayRecorder(r.gw), r.checkoutTimeout, r.log),
		Likes:  likes.NewStore(userID, r.gw, runner, r.log),
		Feed:   feed,
		Loader: fetch.NewLoader(),
		Runner: runner,
	}
	r.clients[userID] = c
	return c
}

// Bind returns the user's client state with a fresh session object for the
// presented credentials. Called on every authenticated request so the stored
// bearer token always matches the one the caller is actually using.
func (r *Registry) Bind(userID int64, role, bearerToken string) *Client {
	c := r.GetOrCreate(userID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.Session != nil {
		if current, err := c.Session.BearerToken(); err == nil && current == bearerToken {
			return c
		}
	}
	c.Session = session.Start(userID, role, bearerToken)
	return c
}

// Drop discards a user's state, e.g. on logout. The next access starts from
// an empty cart restored from the gateway.
func (r *Registry) Drop(userID int64) {
	r.mu.Lock()
	if c, ok := r.clients[userID]; ok && c.Session != nil {
		c.Session.Invalidate()
	}
	delete(r.clients, userID)
	r.mu.Unlock()
}
