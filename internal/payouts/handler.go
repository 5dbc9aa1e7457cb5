package payouts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quartershq/quarters/internal/platform/httpx"
	"github.com/quartershq/quarters/internal/shared"
)

// Handler wires HTTP endpoints for owner statements and payout batches.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountStatementRoutes registers owner statement routes.
func (h *Handler) MountStatementRoutes(r chi.Router) {
	r.Get("/", h.ListStatements)
	r.Post("/", h.CreateStatement)
	r.Get("/{id}", h.GetStatement)
}

// MountBatchRoutes registers payout batch routes.
func (h *Handler) MountBatchRoutes(r chi.Router) {
	r.Get("/", h.ListBatches)
	r.Post("/", h.CreateBatch)
	r.Get("/{id}", h.GetBatch)
}

func (h *Handler) ListStatements(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	limit, offset := shared.ListParams(r)
	stmts, total, err := h.service.ListStatements(r.Context(), orgID, limit, offset)
	if err != nil {
		h.logger.Error("list owner statements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if stmts == nil {
		stmts = []OwnerStatement{}
	}
	httpx.JSON(w, http.StatusOK, ListStatementsResponse{
		Statements: stmts,
		Total:      total,
		Pagination: shared.NewPagination(shared.PageFromOffset(limit, offset), limit, total),
	})
}

func (h *Handler) CreateStatement(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	var req CreateStatementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	stmt, err := h.service.CreateStatement(r.Context(), orgID, req)
	if err != nil {
		h.logger.Error("create owner statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, stmt)
}

func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid statement id")
		return
	}
	stmt, err := h.service.GetStatement(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stmt)
}

func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	limit, offset := shared.ListParams(r)
	batches, total, err := h.service.ListBatches(r.Context(), orgID, limit, offset)
	if err != nil {
		h.logger.Error("list payout batches", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if batches == nil {
		batches = []PayoutBatch{}
	}
	httpx.JSON(w, http.StatusOK, ListBatchesResponse{
		Batches:    batches,
		Total:      total,
		Pagination: shared.NewPagination(shared.PageFromOffset(limit, offset), limit, total),
	})
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	var req CreateBatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	batch, err := h.service.CreateBatch(r.Context(), orgID, req)
	if err != nil {
		h.logger.Error("create payout batch", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, batch)
}

func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid batch id")
		return
	}
	batch, err := h.service.GetBatch(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, batch)
}
