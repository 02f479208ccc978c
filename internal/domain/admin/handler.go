package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paylink/paylink-api/internal/domain/ledger"
	"github.com/paylink/paylink-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	items, total, err := h.svc.ListPending(r.Context(), limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	pages := (total + limit - 1) / limit
	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid transaction ID")
		return
	}

	txn, err := fn(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			response.NotFound(w, "transaction not found")
		case errors.Is(err, ledger.ErrAlreadyDecided):
			response.Conflict(w, "transaction already decided")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, txn)
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/transactions/pending", h.ListPending)
	r.Post("/transactions/{id}/approve", h.Approve)
	r.Post("/transactions/{id}/reject", h.Reject)
	return r
}
