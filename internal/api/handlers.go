package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raidho/internal/apperr"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListReceipts handles GET /api/receipts.
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	category := q.Get("category")

	receipts, total, err := h.svc.ListReceipts(r.Context(), limit, offset, category)
	if err != nil {
		slog.Error("list receipts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReceiptListResponse{Receipts: receipts, Total: total})
}

// GetReceipt handles GET /api/receipts/{id}.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	receipt, err := h.svc.GetReceipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get receipt failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// CreateReceipt handles POST /api/receipts.
func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	receipt, err := h.svc.CreateReceipt(r.Context(), req.Receipt)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("receipt already exists"))
		} else {
			slog.Error("create receipt failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// DeleteReceipt handles DELETE /api/receipts/{id}.
func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteReceipt(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete receipt failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateItemSchedule handles PUT /api/receipts/{id}/items/{itemID}/schedule.
func (h *Handler) UpdateItemSchedule(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	receiptID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	var req ScheduleEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	receipt, err := h.svc.UpdateItemSchedule(r.Context(), receiptID, itemID, req)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update schedule failed", slog.String("item", itemID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// itemHandler wraps the common GetItem error plumbing for item routes.
func (h *Handler) itemHandler(w http.ResponseWriter, r *http.Request, fn func(itemID string) (any, error)) {
	itemID := chi.URLParam(r, "itemID")
	v, err := fn(itemID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("item request failed", slog.String("item", itemID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Occurrences handles GET /api/items/{itemID}/occurrences.
func (h *Handler) Occurrences(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(w, r, func(itemID string) (any, error) {
		occ, err := h.svc.Occurrences(r.Context(), itemID)
		if err != nil {
			return nil, err
		}
		return OccurrencesResponse{Occurrences: occ}, nil
	})
}

// Summary handles GET /api/items/{itemID}/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	sum, err := h.svc.Summary(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("summary failed", slog.String("item", itemID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if sum == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no schedulable dates"))
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Chain handles GET /api/items/{itemID}/chain.
func (h *Handler) Chain(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(w, r, func(itemID string) (any, error) {
		c, err := h.svc.Chain(r.Context(), itemID)
		if err != nil {
			return nil, err
		}
		return ChainResponse{Chain: c}, nil
	})
}

// Gaps handles GET /api/items/{itemID}/gaps.
func (h *Handler) Gaps(w http.ResponseWriter, r *http.Request) {
	tolerance := -1
	if raw := r.URL.Query().Get("tolerance"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("tolerance must be an integer"))
			return
		}
		tolerance = n
	}
	h.itemHandler(w, r, func(itemID string) (any, error) {
		gaps, err := h.svc.Gaps(r.Context(), itemID, tolerance)
		if err != nil {
			return nil, err
		}
		return GapsResponse{Gaps: gaps}, nil
	})
}

// Events handles GET /api/items/{itemID}/calendar.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(w, r, func(itemID string) (any, error) {
		events, err := h.svc.Events(r.Context(), itemID)
		if err != nil {
			return nil, err
		}
		return EventsResponse{Events: events}, nil
	})
}

// ICS handles GET /api/items/{itemID}/calendar.ics.
func (h *Handler) ICS(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	doc, err := h.svc.ICS(r.Context(), itemID)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, ErrNoSchedulableDates):
			writeJSON(w, http.StatusNotFound, errorBody("no schedulable dates"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+itemID+`.ics"`)
	_, _ = w.Write([]byte(doc))
}

// Export handles POST /api/items/{itemID}/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	h.itemHandler(w, r, func(itemID string) (any, error) {
		results, err := h.svc.Export(r.Context(), itemID)
		if err != nil {
			return nil, err
		}
		return ExportResponse{Results: results}, nil
	})
}
