package purchase

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paylink/paylink-api/internal/domain/evidence"
	"github.com/paylink/paylink-api/internal/domain/payid"
	"github.com/paylink/paylink-api/internal/domain/user"
	"github.com/paylink/paylink-api/internal/domain/wallet"
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

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	txn, err := h.svc.Purchase(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, payid.ErrNotRegistered):
			response.UnprocessableEntity(w, "INVALID_IDENTIFIER", "no PAY-ID registered")
		case errors.Is(err, payid.ErrInactive):
			response.UnprocessableEntity(w, "INVALID_IDENTIFIER", "PAY-ID not yet activated")
		case errors.Is(err, payid.ErrCodeMismatch):
			response.UnprocessableEntity(w, "INVALID_IDENTIFIER", "PAY-ID code does not match")
		case errors.Is(err, wallet.ErrInsufficientFunds):
			response.UnprocessableEntity(w, "INSUFFICIENT_FUNDS", "insufficient wallet balance")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, txn)
}

func (h *Handler) RequestActivation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req ActivationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	txn, err := h.svc.RequestActivation(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, payid.ErrAlreadyRegistered):
			response.Conflict(w, "a PAY-ID is already registered for this account")
		case errors.Is(err, payid.ErrUnknownCode):
			response.UnprocessableEntity(w, "INVALID_IDENTIFIER", "code is not available for activation")
		case errors.Is(err, payid.ErrCodeTaken):
			response.Conflict(w, "code already claimed by another user")
		case errors.Is(err, evidence.ErrNotFound):
			response.BadRequest(w, "unknown evidence key")
		case errors.Is(err, evidence.ErrNotOwner):
			response.Forbidden(w, "evidence belongs to another user")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, txn)
}

func (h *Handler) RequestUpgrade(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req UpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	txn, err := h.svc.RequestUpgrade(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUnknownLevel):
			response.BadRequest(w, "unknown level key")
		case errors.Is(err, evidence.ErrNotFound):
			response.BadRequest(w, "unknown evidence key")
		case errors.Is(err, evidence.ErrNotOwner):
			response.Forbidden(w, "evidence belongs to another user")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, txn)
}

func (h *Handler) Levels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.svc.Levels(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, levels)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/levels", h.Levels)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Purchase)
		r.Post("/activation", h.RequestActivation)
		r.Post("/upgrade", h.RequestUpgrade)
	})
	return r
}
