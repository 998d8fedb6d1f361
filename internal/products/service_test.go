package product

import (
	"context"
	"testing"

	"github.com/angelmondragon/catalog-backend/internal/testdb"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(testdb.Open(t)))
	require.NoError(t, err)
	return svc
}

func TestCreateProductDefaultsAndConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		SKU:   "  TSHIRT ",
		Name:  "T-Shirt",
		Price: decimal.RequireFromString("30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "TSHIRT", created.SKU)
	assert.Equal(t, enums.ProductStatusDraft, created.Status)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.CreateProduct(ctx, CreateProductInput{SKU: "TSHIRT", Name: "Other", Price: decimal.Zero})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "No SKU"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, CreateProductInput{SKU: "NEG", Name: "Neg", Price: decimal.NewFromInt(-1)})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, CreateProductInput{SKU: "ST", Name: "Status", Status: "archived"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, CreateProductInput{SKU: "BIG", Name: "Big", Price: decimal.RequireFromString("1e30000000")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))

	_, err = svc.CreateProduct(ctx, CreateProductInput{SKU: "FINE", Name: "Fine", Price: decimal.RequireFromString("9.99999")})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestUpdateProductKeepsOwnSKU(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{SKU: "MUG", Name: "Mug", Price: decimal.NewFromInt(12)})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, CreateProductInput{SKU: "CUP", Name: "Cup", Price: decimal.NewFromInt(8)})
	require.NoError(t, err)

	sameSKU := "MUG"
	price := decimal.RequireFromString("14.5")
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{SKU: &sameSKU, Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))

	taken := "CUP"
	_, err = svc.UpdateProduct(ctx, created.ID, UpdateProductInput{SKU: &taken})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
}

func TestGetAndDeleteProductNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, uuid.New())
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.Is(svc.DeleteProduct(ctx, uuid.New()), pkgerrors.CodeNotFound))

	created, err := svc.CreateProduct(ctx, CreateProductInput{SKU: "GONE", Name: "Gone", Price: decimal.Zero})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	_, err = svc.GetProduct(ctx, created.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}
