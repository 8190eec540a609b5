package quotes

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
	var req CreateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create quote failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdateQuoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.Update(r.Context(), id, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Send(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Accept(r.Context(), id, caller.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Reject(r.Context(), id, caller.UserID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())
	id, ok := h.pathID(w, r)
	if !ok {
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

	req := ListQuotesRequest{
		Page:    parseIntQuery(r, "page", 1),
		PerPage: parseIntQuery(r, "per_page", 20),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := QuoteStatus(status)
		req.Status = &s
	}
	if client := r.URL.Query().Get("client_id"); client != "" {
		if id, err := strconv.ParseInt(client, 10, 64); err == nil {
			req.ClientID = &id
		}
	}

	records, page, err := h.service.List(r.Context(), req, caller.UserID, caller.Admin)
	if err != nil {
		h.logger.Error("list quotes failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       records,
		"pagination": page,
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quote id")
		return 0, false
	}
	return id, true
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
