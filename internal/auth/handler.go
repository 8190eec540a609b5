package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pcpedia/leasing-api/internal/platform/httpx"
	"github.com/pcpedia/leasing-api/internal/platform/i18n"
	"github.com/pcpedia/leasing-api/internal/shared"
)

// Handler serves login and logout.
type Handler struct {
	service   *Service
	printer   *i18n.Printer
	logger    *slog.Logger
	validator *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(service *Service, printer *i18n.Printer, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		printer:   printer,
		logger:    logger,
		validator: validator.New(),
	}
}

// MountRoutes registers the auth endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token   string `json:"token"`
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Company string `json:"company_name,omitempty"`
	Admin   bool   `json:"admin"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", h.printer.T("auth.invalid.credentials"))
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:   token,
		UserID:  user.ID,
		Name:    user.Name,
		Company: user.CompanyName,
		Admin:   user.IsAdmin(),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}
