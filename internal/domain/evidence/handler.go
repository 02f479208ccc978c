package evidence

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paylink/paylink-api/internal/middleware"
	"github.com/paylink/paylink-api/internal/pkg/response"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload stages a proof screenshot and returns its key and URL
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart body or file too large")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	f, url, err := h.svc.Upload(r.Context(), userID, file)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			response.BadRequest(w, "file must be a PNG or JPEG image")
			return
		}
		response.InternalError(w)
		return
	}

	response.Created(w, map[string]string{
		"key": f.Key,
		"url": url,
	})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Upload)
	return r
}
