package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const migrationsDir = "migrations"

func readMigration(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(migrationsDir, name))
	require.NoError(t, err)
	return string(b)
}

func TestMigrationsValidate(t *testing.T) {
	require.NoError(t, ValidateDir(migrationsDir))
}

func TestOrdersMigrationShape(t *testing.T) {
	sql := readMigration(t, "20250810120300_orders.sql")

	for _, fragment := range []string{
		"CREATE TABLE orders",
		"CREATE TABLE order_items",
		"CREATE TABLE order_status_logs",
		"CREATE UNIQUE INDEX idx_orders_order_number",
		"payment_status SMALLINT NOT NULL DEFAULT 0",
		"income NUMERIC(11,2)",
		"retailcrm_id BIGINT",
		"ON DELETE CASCADE",
	} {
		require.Contains(t, sql, fragment)
	}
}

func TestHandbooksMigrationShape(t *testing.T) {
	sql := readMigration(t, "20250810120100_handbooks.sql")

	for _, table := range []string{
		"regions", "delivery_types", "delivery_regions",
		"payment_types", "pickup_points", "self_pickup_points", "order_statuses",
	} {
		require.Contains(t, sql, "CREATE TABLE "+table)
	}
	require.Contains(t, sql, "commission_percent NUMERIC(5,2)")
}

func TestEveryMigrationHasDown(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		sql := readMigration(t, e.Name())
		require.Contains(t, sql, "-- +goose Down", "migration %s", e.Name())
	}
}
