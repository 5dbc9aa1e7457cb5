package journals

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quartershq/quarters/internal/platform/httpx"
	"github.com/quartershq/quarters/internal/shared"
)

// Handler wires HTTP endpoints for the journal engine.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers journal routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/post", h.Post)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	limit, offset := shared.ListParams(r)
	journals, total, err := h.service.List(r.Context(), orgID, limit, offset)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if journals == nil {
		journals = []Journal{}
	}
	httpx.JSON(w, http.StatusOK, ListJournalsResponse{
		Journals:   journals,
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
	var req CreateJournalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	journal, err := h.service.Create(r.Context(), orgID, req)
	if err != nil {
		h.logger.Error("create journal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, journal)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal id")
		return
	}
	journal, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, journal)
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid journal id")
		return
	}
	journal, err := h.service.Post(r.Context(), orgID, id)
	if err != nil {
		h.logger.Error("post journal", slog.Any("error", err), slog.Int64("journal_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, journal)
}
