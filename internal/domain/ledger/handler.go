package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paylink/paylink-api/internal/middleware"
	"github.com/paylink/paylink-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	txs, total, err := h.svc.ListForUser(r.Context(), userID, page, limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	pages := (total + limit - 1) / limit
	response.WithMeta(w, txs, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid transaction id")
		return
	}

	t, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotOwner):
			response.NotFound(w, "transaction not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, t)
}

func (h *Handler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.svc.MarkViewed(r.Context(), userID); err != nil {
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

func (h *Handler) UnviewedCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	count, err := h.svc.UnviewedCount(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]int{"unviewed": count})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.List)
	r.Get("/unviewed", h.UnviewedCount)
	r.Post("/viewed", h.MarkViewed)
	r.Get("/{id}", h.Get)
	return r
}
