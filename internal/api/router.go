package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Receipts CRUD.
	r.Get("/receipts", h.ListReceipts)
	r.Post("/receipts", h.CreateReceipt)
	r.Get("/receipts/{id}", h.GetReceipt)
	r.Delete("/receipts/{id}", h.DeleteReceipt)
	r.Put("/receipts/{id}/items/{itemID}/schedule", h.UpdateItemSchedule)

	// Schedule derivation.
	r.Get("/items/{itemID}/occurrences", h.Occurrences)
	r.Get("/items/{itemID}/summary", h.Summary)
	r.Get("/items/{itemID}/chain", h.Chain)
	r.Get("/items/{itemID}/gaps", h.Gaps)

	// Calendar materialization.
	r.Get("/items/{itemID}/calendar", h.Events)
	r.Get("/items/{itemID}/calendar.ics", h.ICS)
	r.Post("/items/{itemID}/export", h.Export)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
