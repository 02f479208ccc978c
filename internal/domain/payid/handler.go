package payid

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paylink/paylink-api/internal/middleware"
	"github.com/paylink/paylink-api/internal/pkg/response"
	"github.com/paylink/paylink-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Status reports the caller's PAY-ID state for display
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	state, reg, err := h.svc.Status(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	data := map[string]interface{}{"state": state}
	if reg != nil {
		data["code_last4"] = reg.CodeLast4
	}
	response.OK(w, data)
}

type provisionRequest struct {
	Codes []string `json:"codes" validate:"required,min=1,max=500,dive,min=6,max=32"`
}

// Provision seeds pool codes; admin only
func (h *Handler) Provision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	added, err := h.svc.Provision(r.Context(), req.Codes)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]int{"added": added})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.Status)
	return r
}

func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(adminMiddleware)
	r.Post("/codes", h.Provision)
	return r
}
