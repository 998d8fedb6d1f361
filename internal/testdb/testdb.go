// Package testdb opens throwaway sqlite databases carrying the production schema.
package testdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/migrate"
)

// Open returns an in-memory sqlite connection migrated with the goose files.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.RunDialect(context.Background(), sqlDB, migrate.DialectSQLite, migrationsDir(), "up"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return conn
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "pkg", "migrate", "migrations")
}

// MustCreateProduct seeds a product with the given base price.
func MustCreateProduct(t *testing.T, conn *gorm.DB, sku string, price string) *models.Product {
	t.Helper()
	if sku == "" {
		sku = fmt.Sprintf("SKU-%s", uuid.NewString()[:8])
	}
	product := &models.Product{
		SKU:    sku,
		Name:   "Test Product " + sku,
		Price:  decimal.RequireFromString(price),
		Status: enums.ProductStatusActive,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustCreateVariantType seeds a type with its values in the given order.
func MustCreateVariantType(t *testing.T, conn *gorm.DB, productID uuid.UUID, name string, sortOrder int, values ...string) *models.VariantType {
	t.Helper()
	vt := &models.VariantType{
		ProductID: productID,
		Name:      name,
		Slug:      name,
		Kind:      enums.VariantKindDropdown,
		SortOrder: sortOrder,
	}
	if err := conn.Create(vt).Error; err != nil {
		t.Fatalf("create variant type: %v", err)
	}
	for i, v := range values {
		val := models.VariantValue{VariantTypeID: vt.ID, Value: v, SortOrder: i}
		if err := conn.Create(&val).Error; err != nil {
			t.Fatalf("create variant value: %v", err)
		}
		vt.Values = append(vt.Values, val)
	}
	return vt
}
