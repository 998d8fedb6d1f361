package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/internal/pricing"
	product "github.com/angelmondragon/catalog-backend/internal/products"
	"github.com/angelmondragon/catalog-backend/internal/testdb"
	"github.com/angelmondragon/catalog-backend/internal/variants"
	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type harness struct {
	handler http.Handler
	cfg     *config.Config
	db      *db.Client
}

func newHarness(t *testing.T, pinger stubPinger) harness {
	t.Helper()
	conn := testdb.Open(t)
	client := db.NewFromConn(conn)
	reg := prometheus.NewRegistry()
	catalogMetrics := metrics.NewCatalogMetrics(reg)
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "catalog-test", ExpirationMinutes: 60},
		Catalog: config.CatalogConfig{
			MaxGeneratedCombinations: 50,
			SKUSuffixLength:          6,
			SKUSuffixMaxLength:       16,
			GenerationRateWindow:     time.Minute,
			GenerationRateLimit:      5,
		},
	}

	productRepo := product.NewRepository(conn)
	variantRepo := variants.NewRepository(conn)

	productSvc, err := product.NewService(productRepo)
	require.NoError(t, err)
	pricingSvc, err := pricing.NewService(pricing.NewRepository(conn), client, productRepo, variantRepo, catalogMetrics, logg)
	require.NoError(t, err)
	variantSvc, err := variants.NewService(variantRepo, client, productRepo, cfg.Catalog, catalogMetrics, logg)
	require.NoError(t, err)

	handler := NewRouter(cfg, logg, pinger, nil, reg, Services{
		Products: productSvc,
		Pricing:  pricingSvc,
		Variants: variantSvc,
	})
	return harness{handler: handler, cfg: cfg, db: client}
}

func (h harness) token(t *testing.T, role enums.CatalogRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	require.NoError(t, err)
	return token
}

func (h harness) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return payload.Error.Code
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t, stubPinger{})

	live := h.do(t, http.MethodGet, "/health/live", "", "")
	require.Equal(t, http.StatusOK, live.Code)
	require.Equal(t, "test", live.Header().Get("X-Catalog-Env"))

	ready := h.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, ready.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeData(t, ready, &body)
	require.Equal(t, "ready", body.Status)
	require.Equal(t, "ok", body.Checks["database"])
	require.NotContains(t, body.Checks, "redis")
}

func TestHealthReadyReportsDatabaseFailure(t *testing.T) {
	h := newHarness(t, stubPinger{err: fmt.Errorf("down")})

	rec := h.do(t, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	h := newHarness(t, stubPinger{})

	rec := h.do(t, http.MethodGet, "/api/v1/product-pricing/units", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	viewer := h.token(t, enums.CatalogRoleViewer)
	rec = h.do(t, http.MethodGet, "/api/v1/product-pricing/units", viewer, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var units []pricing.UnitDTO
	decodeData(t, rec, &units)
	require.NotEmpty(t, units)
	require.Equal(t, enums.UnitTypePiece, units[0].Value)
}

func TestViewerCannotWrite(t *testing.T) {
	h := newHarness(t, stubPinger{})
	viewer := h.token(t, enums.CatalogRoleViewer)

	rec := h.do(t, http.MethodPost, "/api/v1/products", viewer, `{"sku":"X","name":"X","price":"1"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestOnlyAdminDeletesProducts(t *testing.T) {
	h := newHarness(t, stubPinger{})
	p := testdb.MustCreateProduct(t, h.db.DB(), "MUG", "12")

	rec := h.do(t, http.MethodDelete, "/api/v1/products/"+p.ID.String(), h.token(t, enums.CatalogRoleEditor), "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/v1/products/"+p.ID.String(), h.token(t, enums.CatalogRoleAdmin), "")
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestPricingFlowOverHTTP(t *testing.T) {
	h := newHarness(t, stubPinger{})
	editor := h.token(t, enums.CatalogRoleEditor)

	rec := h.do(t, http.MethodPost, "/api/v1/products", editor, `{"sku":"WIDGET","name":"Widget","price":"30","status":"active"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created product.ProductDTO
	decodeData(t, rec, &created)

	bulk := fmt.Sprintf(`{"product_id":"%s","tiers":[
		{"min_quantity":"1","max_quantity":"10","price":"30"},
		{"min_quantity":"11","price":"26"},
		{"min_quantity":"0","price":"1"}
	]}`, created.ID)
	rec = h.do(t, http.MethodPost, "/api/v1/product-pricing/bulk", editor, bulk)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var batch struct {
		CreatedCount int `json:"created_count"`
		FailedCount  int `json:"failed_count"`
	}
	decodeData(t, rec, &batch)
	require.Equal(t, 2, batch.CreatedCount)
	require.Equal(t, 1, batch.FailedCount)

	rec = h.do(t, http.MethodGet, "/api/v1/product-pricing/calculate/"+created.ID.String()+"/15", editor, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote struct {
		Price  string `json:"price"`
		Total  string `json:"total"`
		Source string `json:"source"`
	}
	decodeData(t, rec, &quote)
	require.Equal(t, "26", quote.Price)
	require.Equal(t, "390", quote.Total)
	require.Equal(t, pricing.PriceSourceTier, quote.Source)

	rec = h.do(t, http.MethodGet, "/api/v1/product-pricing/product/"+created.ID.String()+"/summary", editor, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		MinPrice  string `json:"min_price"`
		TierCount int    `json:"tier_count"`
	}
	decodeData(t, rec, &summary)
	require.Equal(t, "26", summary.MinPrice)
	require.Equal(t, 2, summary.TierCount)

	rec = h.do(t, http.MethodGet, "/api/v1/product-pricing/calculate/"+created.ID.String()+"/abc", editor, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/product-pricing/calculate/"+created.ID.String()+"/1e30000000", editor, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	require.Less(t, rec.Body.Len(), 1024)

	rec = h.do(t, http.MethodPost, "/api/v1/product-pricing/bulk", editor, fmt.Sprintf(`{"product_id":"%s","tiers":[{"min_quantity":"1e30000000","price":"1"}]}`, created.ID))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestVariantGenerationDryRunOverHTTP(t *testing.T) {
	h := newHarness(t, stubPinger{})
	editor := h.token(t, enums.CatalogRoleEditor)

	p := testdb.MustCreateProduct(t, h.db.DB(), "TSHIRT", "20")
	size := testdb.MustCreateVariantType(t, h.db.DB(), p.ID, "Size", 0, "S", "M")
	color := testdb.MustCreateVariantType(t, h.db.DB(), p.ID, "Color", 1, "Red", "Blue")

	body := fmt.Sprintf(`{"product_id":"%s","variant_type_ids":["%s","%s"],"base_data":{"stock_quantity":3}}`, p.ID, size.ID, color.ID)
	rec := h.do(t, http.MethodPost, "/api/v1/product-variants/bulk-create?dry_run=true", editor, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Combinations int  `json:"combinations"`
		DryRun       bool `json:"dry_run"`
		Preview      []struct {
			VariantName string `json:"variant_name"`
		} `json:"preview"`
	}
	decodeData(t, rec, &result)
	require.True(t, result.DryRun)
	require.Equal(t, 4, result.Combinations)
	require.Len(t, result.Preview, 4)
	require.Equal(t, "S - Red", result.Preview[0].VariantName)

	rec = h.do(t, http.MethodGet, "/api/v1/product-variants/product/"+p.ID.String()+"/combinations", editor, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var combos []json.RawMessage
	decodeData(t, rec, &combos)
	require.Empty(t, combos)

	rec = h.do(t, http.MethodPost, "/api/v1/product-variants/bulk-create", editor, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/api/v1/product-variants/sku-exists?sku=TSHIRT-nope", editor, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var exists struct {
		Exists bool `json:"exists"`
	}
	decodeData(t, rec, &exists)
	require.False(t, exists.Exists)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, stubPinger{})
	h.do(t, http.MethodGet, "/health/live", "", "")

	rec := h.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "catalog_http_request_duration_seconds")
}
