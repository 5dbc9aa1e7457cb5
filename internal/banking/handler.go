package banking

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quartershq/quarters/internal/platform/httpx"
	"github.com/quartershq/quarters/internal/shared"
)

// Handler wires HTTP endpoints for bank accounts.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers banking routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/transactions", h.Import)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	limit, offset := shared.ListParams(r)
	accounts, total, err := h.service.ListAccounts(r.Context(), orgID, limit, offset)
	if err != nil {
		h.logger.Error("list bank accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if accounts == nil {
		accounts = []BankAccount{}
	}
	httpx.JSON(w, http.StatusOK, ListBankAccountsResponse{
		Accounts:   accounts,
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
	var req CreateBankAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.CreateAccount(r.Context(), orgID, req)
	if err != nil {
		h.logger.Error("create bank account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bank account id")
		return
	}
	detail, err := h.service.GetAccount(r.Context(), orgID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrOrgRequired)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid bank account id")
		return
	}
	var req ImportTransactionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.Import(r.Context(), orgID, id, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		h.logger.Error("import bank transactions", slog.Any("error", err), slog.Int64("bank_account_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}
