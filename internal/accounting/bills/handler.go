package bills

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quartershq/quarters/internal/platform/httpx"
	"github.com/quartershq/quarters/internal/shared"
)

// Handler wires HTTP endpoints for AP bills.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers bill routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	limit, offset := shared.ListParams(r)
	bills, total, err := h.service.List(r.Context(), orgID, limit, offset)
	if err != nil {
		h.logger.Error("list bills", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if bills == nil {
		bills = []Bill{}
	}
	httpx.JSON(w, http.StatusOK, ListBillsResponse{
		Bills:      bills,
		Total:      total,
		Pagination: shared.NewPagination(shared.PageFromOffset(limit, offset), limit, total),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	var req CreateBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.service.Create(r.Context(), orgID, req)
	if err != nil {
		h.logger.Error("create bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	bill, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bill id")
		return
	}
	var req UpdateBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bill, err := h.service.Update(r.Context(), orgID, id, req)
	if err != nil {
		h.logger.Error("update bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}
