package withdrawal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paylink/paylink-api/internal/domain/referral"
	"github.com/paylink/paylink-api/internal/domain/wallet"
	"github.com/paylink/paylink-api/internal/middleware"
	"github.com/paylink/paylink-api/internal/pkg/response"
	"github.com/paylink/paylink-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

type submitRequest struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Source        string `json:"source" validate:"required,source_balance"`
	BankName      string `json:"bank_name" validate:"required,min=2,max=100"`
	AccountNumber string `json:"account_number" validate:"required,nuban"`
	AccountName   string `json:"account_name" validate:"required,min=2,max=100"`
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	result, err := h.svc.Submit(r.Context(), SubmitInput{
		UserID:        userID,
		Amount:        req.Amount,
		Source:        Source(req.Source),
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			response.UnprocessableEntity(w, "INSUFFICIENT_FUNDS", "insufficient wallet balance")
		case errors.Is(err, referral.ErrInsufficientRewardBalance):
			response.UnprocessableEntity(w, "INSUFFICIENT_REWARD_BALANCE", "insufficient reward balance")
		case errors.Is(err, referral.ErrUnevenAmount):
			response.UnprocessableEntity(w, "UNEVEN_AMOUNT", "amount must consume whole rewards")
		case errors.Is(err, ErrBelowMinimum):
			response.UnprocessableEntity(w, "BELOW_MINIMUM_WITHDRAWAL", "amount below the first-withdrawal minimum")
		case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, ErrInvalidSource):
			response.BadRequest(w, "invalid withdrawal request")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, result)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	reqs, err := h.svc.ListForUser(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, reqs)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Submit)
	r.Get("/", h.List)
	return r
}
