package product_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hampers-api/internal/product"
)

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type productEnvelope struct {
	Data product.Product `json:"data"`
}

type listEnvelope struct {
	Data       []product.Product `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

func newTestRouter(t *testing.T) (*chi.Mux, *product.Service) {
	t.Helper()
	svc, _ := newTestService(t)
	handler := product.NewHandler(product.HandlerConfig{Service: svc, DefaultLimit: 20, MaxLimit: 100})

	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Get("/export", handler.Export)
		r.Post("/import", handler.Import)
		r.Get("/{id}", handler.Get)
		r.Patch("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return r, svc
}

func TestProductHandlersCRUD(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Lunar Hamper","supplyPrice":"25.00","shopPrice":"45.00"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created productEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)
	require.Equal(t, "Lunar Hamper", created.Data.Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+created.Data.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/products/"+created.Data.ID, strings.NewReader(`{"supplyPrice":"30"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated productEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "30", updated.Data.SupplyPrice)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+created.Data.ID, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+created.Data.ID, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	var notFound errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notFound))
	require.Equal(t, "NOT_FOUND", notFound.Error.Code)
}

func TestProductHandlersListPagination(t *testing.T) {
	router, svc := newTestRouter(t)
	ctx := context.Background()

	for _, name := range []string{"Alpha Box", "Beta Box", "Gamma Hamper"} {
		_, err := svc.Create(ctx, product.CreateInput{Name: name, SupplyPrice: "10"})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=2&limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "3", rec.Header().Get("X-Total-Count"))

	var resp listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Beta Box", resp.Data[0].Name)
	require.Equal(t, 2, resp.Pagination.Page)
	require.Equal(t, 1, resp.Pagination.PerPage)
	require.Equal(t, 3, resp.Pagination.TotalItems)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?q=box", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
}

func TestProductHandlersValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Box","supplyPrice":"1.999"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	require.Equal(t, "supplyPrice must be a number with at most two decimals", envelope.Error.Message)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "BAD_REQUEST", envelope.Error.Code)
}

func TestProductHandlersExportImport(t *testing.T) {
	router, svc := newTestRouter(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, product.CreateInput{Name: "Seed", SupplyPrice: "2"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "products-export.json")

	var exported product.ExportPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	require.Equal(t, "1.0", exported.Version)
	require.Len(t, exported.Products, 1)

	importBody := map[string]any{"products": []map[string]any{
		{"name": "Imported Box", "supplyPrice": "4.40"},
		{"name": "", "supplyPrice": "1"},
	}}
	raw, err := json.Marshal(importBody)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products/import", bytes.NewReader(raw)))
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data product.ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 1, result.Data.Imported)
	require.Equal(t, 1, result.Data.Failed)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products/import", strings.NewReader(`{"products":[]}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/products/import", strings.NewReader(`[{"name":"Bare","supplyPrice":"1"}]`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
