package database

import (
	"testing"

	"github.com/buzcart/buzcart-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "shop", DBPassword: "secret", DBHost: "db", DBPort: "3306", DBName: "buzcart"}

	dsn := MySQLDSN(cfg)

	assert.Contains(t, dsn, "shop:secret@tcp(db:3306)/buzcart")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DatabaseURL: "file::memory:"}

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"products", "carts", "cart_items", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})

	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
