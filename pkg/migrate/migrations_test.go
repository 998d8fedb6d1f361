package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/migrate"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestShouldAutoRun(t *testing.T) {
	cases := []struct {
		name   string
		env    string
		driver string
		flag   bool
		want   bool
	}{
		{name: "sqlite always", env: "prod", driver: "sqlite", want: true},
		{name: "dev with flag", env: "dev", driver: "postgres", flag: true, want: true},
		{name: "dev without flag", env: "dev", driver: "postgres"},
		{name: "prod with flag", env: "prod", driver: "postgres", flag: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				App:          config.AppConfig{Env: tc.env},
				DB:           config.DBConfig{Driver: tc.driver},
				FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: tc.flag},
			}
			require.Equal(t, tc.want, migrate.ShouldAutoRun(cfg))
		})
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Tier Notes")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_tier_notes.sql"))
	require.NoError(t, migrate.ValidateDir(dir))
}

func TestCreateSQLMigrationSortsAfterExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "29990101000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := migrate.CreateSQLMigration(dir, "next")
	require.NoError(t, err)
	require.Equal(t, "29990101000001_next.sql", filepath.Base(path))
}

func TestValidateDirRejectsDownBeforeUp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_swap.sql"), []byte("-- +goose Down\n-- +goose Up\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func TestVariantSKUUniqueIndexDeclared(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_product_variant_tables.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	require.Contains(t, string(data), "CREATE UNIQUE INDEX IF NOT EXISTS uq_variant_combinations_variant_sku")
}

func TestMigrationsApplyOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, migrate.RunDialect(ctx, sqlDB, migrate.DialectSQLite, "migrations", "up"))

	for _, table := range []string{"products", "product_pricing_tiers", "product_variant_types", "product_variant_values", "product_variant_combinations"} {
		require.Truef(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}

	require.NoError(t, conn.Exec(`INSERT INTO products (id, sku, name, price) VALUES ('p1', 'SKU-1', 'Shirt', 10)`).Error)
	require.NoError(t, conn.Exec(`INSERT INTO product_variant_combinations (id, product_id, variant_sku, variant_name, variant_data) VALUES ('c1', 'p1', 'SKU-1-a', 'S', '[]')`).Error)
	err = conn.Exec(`INSERT INTO product_variant_combinations (id, product_id, variant_sku, variant_name, variant_data) VALUES ('c2', 'p1', 'SKU-1-a', 'M', '[]')`).Error
	require.Error(t, err, "variant_sku must be unique")

	err = conn.Exec(`INSERT INTO product_pricing_tiers (id, product_id, min_quantity, max_quantity, price) VALUES ('t1', 'p1', 10, 5, 1)`).Error
	require.Error(t, err, "max_quantity must exceed min_quantity")

	require.NoError(t, migrate.RunDialect(ctx, sqlDB, migrate.DialectSQLite, "migrations", "down-to", "0"))
	require.False(t, conn.Migrator().HasTable("product_pricing_tiers"))
}

func TestDialectFor(t *testing.T) {
	require.Equal(t, migrate.DialectSQLite, migrate.DialectFor("sqlite"))
	require.Equal(t, migrate.DialectPostgres, migrate.DialectFor("postgres"))
	require.Equal(t, migrate.DialectPostgres, migrate.DialectFor(""))
}
