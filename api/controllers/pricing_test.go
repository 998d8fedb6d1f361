package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/internal/pricing"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type stubPricingService struct {
	pricing.Service

	update    pricing.TierUpdateInput
	variantID *uuid.UUID
	quantity  decimal.Decimal
	replaced  []pricing.TierInput
}

func (s *stubPricingService) UpdateTier(ctx context.Context, tierID uuid.UUID, input pricing.TierUpdateInput) (*pricing.TierDTO, error) {
	s.update = input
	return &pricing.TierDTO{ID: tierID}, nil
}

func (s *stubPricingService) CalculatePrice(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal, variantID *uuid.UUID) (*pricing.PriceQuoteDTO, error) {
	s.quantity = quantity
	s.variantID = variantID
	return &pricing.PriceQuoteDTO{ProductID: productID, Quantity: quantity}, nil
}

func (s *stubPricingService) ReplaceAll(ctx context.Context, productID uuid.UUID, items []pricing.TierInput) (*types.BatchResult, error) {
	s.replaced = items
	return types.NewBatchResult(len(items)), nil
}

func TestPricingHandlersRequireService(t *testing.T) {
	rec := httptest.NewRecorder()
	PricingUnits(nil, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPricingGetTierRejectsBadID(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"tierId": "not-a-uuid"})
	rec := httptest.NewRecorder()
	PricingGetTier(&stubPricingService{}, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPricingUpdateTierDistinguishesNullFromOmitted(t *testing.T) {
	stub := &stubPricingService{}
	tierID := uuid.New()
	body := `{"max_quantity":null,"price":"12.50"}`
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)), map[string]string{"tierId": tierID.String()})
	rec := httptest.NewRecorder()

	PricingUpdateTier(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, stub.update.MaxQuantity.Valid)
	require.Nil(t, stub.update.MaxQuantity.Value)
	require.False(t, stub.update.CostPrice.Valid)
	require.NotNil(t, stub.update.Price)
	require.Equal(t, "12.5", stub.update.Price.String())
	require.Nil(t, stub.update.MinQuantity)
}

func TestPricingUpdateTierRejectsUnknownFields(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"prize":"1"}`)), map[string]string{"tierId": uuid.NewString()})
	rec := httptest.NewRecorder()
	PricingUpdateTier(&stubPricingService{}, testLogger()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPricingCalculateVariantSources(t *testing.T) {
	productID := uuid.New()
	variantID := uuid.New()

	t.Run("path", func(t *testing.T) {
		stub := &stubPricingService{}
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{
			"productId": productID.String(),
			"quantity":  "8",
			"variantId": variantID.String(),
		})
		rec := httptest.NewRecorder()
		PricingCalculate(stub, testLogger()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, stub.variantID)
		require.Equal(t, variantID, *stub.variantID)
		require.Equal(t, "8", stub.quantity.String())
	})

	t.Run("query", func(t *testing.T) {
		stub := &stubPricingService{}
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/?variant_id="+variantID.String(), nil), map[string]string{
			"productId": productID.String(),
			"quantity":  "2.5",
		})
		rec := httptest.NewRecorder()
		PricingCalculate(stub, testLogger()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, stub.variantID)
		require.Equal(t, variantID, *stub.variantID)
	})

	t.Run("none", func(t *testing.T) {
		stub := &stubPricingService{}
		req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{
			"productId": productID.String(),
			"quantity":  "3",
		})
		rec := httptest.NewRecorder()
		PricingCalculate(stub, testLogger()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, stub.variantID)
	})
}

func TestPricingBulkReplaceMapsItems(t *testing.T) {
	stub := &stubPricingService{}
	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","tiers":[{"min_quantity":1,"max_quantity":10,"price":30,"unit_type":" kg "},{"min_quantity":"11","price":"26","is_active":false}]}`
	rec := httptest.NewRecorder()

	PricingBulkReplace(stub, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, stub.replaced, 2)
	require.Equal(t, productID, stub.replaced[0].ProductID)
	require.Equal(t, "kg", stub.replaced[0].UnitType)
	require.Equal(t, "10", stub.replaced[0].MaxQuantity.String())
	require.Nil(t, stub.replaced[1].MaxQuantity)
	require.NotNil(t, stub.replaced[1].IsActive)
	require.False(t, *stub.replaced[1].IsActive)
}

func TestPricingBulkReplaceRequiresProduct(t *testing.T) {
	rec := httptest.NewRecorder()
	PricingBulkReplace(&stubPricingService{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"tiers":[]}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
