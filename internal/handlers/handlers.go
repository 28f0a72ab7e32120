package handlers

import (
	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/catalog"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/state"
	"github.com/sirupsen/logrus"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Gateway gateway.Gateway
	Catalog *catalog.Service
	Syncer  *cart.Syncer
	States  *state.Registry
	Log     *logrus.Logger
}
