package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksred/fxjournal/internal/equity"
	"github.com/ksred/fxjournal/internal/types"
)

func TestMigrateCreatesListingIndexAndIntegerEquity(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "migrate.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))
	// Reruns are no-ops
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasIndex(&types.Trade{}, "idx_trades_created_at_id"))
	assert.True(t, db.Migrator().HasColumn(&equity.Equity{}, "equity_units"))
	assert.False(t, db.Migrator().HasColumn(&equity.Equity{}, "equity"))

	var columns []struct {
		Name string `gorm:"column:name"`
	}
	require.NoError(t, db.Raw("SELECT name FROM pragma_index_info('idx_trades_created_at_id') ORDER BY seqno").Scan(&columns).Error)
	require.Len(t, columns, 2)
	assert.Equal(t, "created_at", columns[0].Name)
	assert.Equal(t, "id", columns[1].Name)
}

func TestOpenDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := openDialector("mysql", "dsn")
	assert.ErrorContains(t, err, `unsupported DB_DRIVER "mysql"`)
}
