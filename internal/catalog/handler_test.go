package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pharmadesk/pharmadesk/internal/rbac"
	"github.com/pharmadesk/pharmadesk/internal/shared"
)

func newTestRouter(repo *memoryRepo) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo, nil), rbac.Middleware{Logger: logger})
	r := chi.NewRouter()
	r.Route("/medicines", handler.MountRoutes)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		ctx := shared.ContextWithPrincipal(req.Context(), &shared.Principal{UserID: 1, Email: "test@pharmadesk.local", Role: role})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListRequiresAuthentication(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	rec := doRequest(t, router, http.MethodGet, "/medicines/", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/medicines/", "customer", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateMedicineRoleMatrix(t *testing.T) {
	router := newTestRouter(newMemoryRepo())
	body := `{"name":"Aspirin","price":1.5,"category":"Analgesic","manufacturer":"Acme","stock":10}`

	rec := doRequest(t, router, http.MethodPost, "/medicines/", "pharmacist", body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/medicines/", "admin", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Medicine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Aspirin", created.Name)
	require.NotZero(t, created.ID)
}

func TestCreateMedicineValidation(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	rec := doRequest(t, router, http.MethodPost, "/medicines/", "admin", `{"name":"Aspirin"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/medicines/", "admin", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStockEndpointRoleAndClamp(t *testing.T) {
	repo := newMemoryRepo()
	m := repo.seed(Medicine{Name: "Ibuprofen 400mg", Category: "Analgesic", Price: 2.5, Stock: 3})
	router := newTestRouter(repo)
	path := "/medicines/" + strconv.FormatInt(m.ID, 10) + "/stock"

	rec := doRequest(t, router, http.MethodPatch, path, "customer", `{"quantity":5,"operation":"add"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodPatch, path, "pharmacist", `{"quantity":10,"operation":"subtract"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Medicine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 0, got.Stock)

	rec = doRequest(t, router, http.MethodPatch, path, "pharmacist", `{"quantity":5,"operation":"void"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnknownMedicine(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	rec := doRequest(t, router, http.MethodGet, "/medicines/42", "customer", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/medicines/abc", "customer", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
