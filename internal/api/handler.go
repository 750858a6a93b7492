package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"

	"netops-backend/internal/store"
)

// Refresher runs one liveness refresh pass on demand.
type Refresher interface {
	RefreshOnce(ctx context.Context)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	refresher Refresher
	webpush   *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, refresher Refresher, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:     s,
		refresher: refresher,
		webpush:   webpushOptions,
	}
}
