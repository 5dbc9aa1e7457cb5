package journals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quartershq/quarters/internal/platform/httpx"
	internalShared "github.com/quartershq/quarters/internal/shared"
)

func newTestRouter(t *testing.T) (chi.Router, *fakeJournalRepo) {
	t.Helper()
	repo := newFakeJournalRepo()
	svc := NewService(repo, nil, nil)
	handler := NewHandler(slog.New(slog.NewTextHandler(testWriter{t}, nil)), svc)
	r := chi.NewRouter()
	r.Use(orgContext)
	r.Route("/journals", handler.MountRoutes)
	return r, repo
}

// orgContext mirrors the server middleware that resolves the tenant header.
func orgContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID, err := internalShared.OrgFromRequest(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(internalShared.ContextWithOrg(r.Context(), orgID)))
	})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func doJSON(t *testing.T, r chi.Router, method, path string, orgID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", orgID.String())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJournalRoutesEndToEnd(t *testing.T) {
	router, _ := newTestRouter(t)
	orgID := uuid.New()

	create := map[string]any{
		"number": "JE-1000",
		"date":   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"lines": []map[string]any{
			{"account_id": 1, "debit": 500},
			{"account_id": 2, "credit": 500},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/journals", orgID, create)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Journal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, JournalStatusDraft, created.Status)
	require.Len(t, created.Lines, 2)

	postPath := fmt.Sprintf("/journals/%d/post", created.ID)
	rec = doJSON(t, router, http.MethodPost, postPath, orgID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var posted Journal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted))
	require.Equal(t, JournalStatusPosted, posted.Status)

	rec = doJSON(t, router, http.MethodPost, postPath, orgID, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "journal already posted")

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/journals/%d", created.ID), orgID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched Journal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, JournalStatusPosted, fetched.Status)
}

func TestJournalRoutesUnbalancedIsBadRequest(t *testing.T) {
	router, repo := newTestRouter(t)
	orgID := uuid.New()

	rec := doJSON(t, router, http.MethodPost, "/journals", orgID, map[string]any{
		"number": "JE-1001",
		"date":   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		"lines": []map[string]any{
			{"account_id": 1, "debit": 500},
			{"account_id": 2, "credit": 400},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, repo.journals)
}

func TestJournalRoutesNotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	orgID := uuid.New()

	rec := doJSON(t, router, http.MethodGet, "/journals/12345", orgID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/journals/12345/post", orgID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournalRoutesRequireOrgHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/journals", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJournalRoutesCrossOrgIsHidden(t *testing.T) {
	router, _ := newTestRouter(t)
	orgA := uuid.New()

	rec := doJSON(t, router, http.MethodPost, "/journals", orgA, map[string]any{
		"number": "JE-1002",
		"date":   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		"lines": []map[string]any{
			{"account_id": 1, "debit": 75},
			{"account_id": 2, "credit": 75},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Journal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/journals/%d", created.ID), uuid.New(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
