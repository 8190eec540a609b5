package requests

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pcpedia/leasing-api/internal/platform/httpx"
	"github.com/pcpedia/leasing-api/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())

	var req CreateRequestRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id, err := h.service.Create(r.Context(), caller.UserID, req)
	if err != nil {
		h.logger.Error("create request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request id")
		return
	}

	resp, err := h.service.Get(r.Context(), id, caller.UserID, caller.Admin)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())

	req := ListRequestsRequest{
		Page:    parseIntQuery(r, "page", 1),
		PerPage: parseIntQuery(r, "per_page", 20),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := RequestStatus(status)
		req.Status = &s
	}
	if client := r.URL.Query().Get("client_id"); client != "" {
		if id, err := strconv.ParseInt(client, 10, 64); err == nil {
			req.ClientID = &id
		}
	}

	records, page, err := h.service.List(r.Context(), req, caller.UserID, caller.Admin)
	if err != nil {
		h.logger.Error("list requests failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       records,
		"pagination": page,
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request id")
		return
	}

	if err := h.service.Reject(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
