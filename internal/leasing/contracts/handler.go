package contracts

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
	var req CreateContractRequest
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
		h.logger.Error("create contract failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Cancel(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Renew(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req RenewContractRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	newID, err := h.service.Renew(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": newID})
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

func (h *Handler) ShowByNumber(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())

	number := chi.URLParam(r, "number")
	if number == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "missing contract number")
		return
	}

	resp, err := h.service.GetByNumber(r.Context(), number, caller.UserID, caller.Admin)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())

	req := ListContractsRequest{
		Page:    parseIntQuery(r, "page", 1),
		PerPage: parseIntQuery(r, "per_page", 20),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := ContractStatus(status)
		req.Status = &s
	}
	if client := r.URL.Query().Get("client_id"); client != "" {
		if id, err := strconv.ParseInt(client, 10, 64); err == nil {
			req.ClientID = &id
		}
	}

	records, page, err := h.service.List(r.Context(), req, caller.UserID, caller.Admin)
	if err != nil {
		h.logger.Error("list contracts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       records,
		"pagination": page,
	})
}

func (h *Handler) ListClientEquipment(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())

	records, err := h.service.ListClientEquipment(r.Context(), caller.UserID)
	if err != nil {
		h.logger.Error("list client equipment failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": records})
}

func (h *Handler) ShowClientEquipment(w http.ResponseWriter, r *http.Request) {
	caller := shared.CallerFromContext(r.Context())

	equipmentID, err := strconv.ParseInt(chi.URLParam(r, "equipmentId"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid equipment id")
		return
	}

	resp, err := h.service.GetClientEquipmentByID(r.Context(), caller.UserID, equipmentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid contract id")
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
