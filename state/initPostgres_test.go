package state

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitPostgres_Integration_Success(t *testing.T) {
	testDsn := os.Getenv("POSTGRES_TEST_DSN")
	if testDsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set, skipping postgres integration test")
	}

	db, sqlDB, err := InitPostgres(testDsn)

	require.NoError(t, err)
	require.NotNil(t, db)
	require.NotNil(t, sqlDB)

	stats := sqlDB.Stats()
	assert.Equal(t, 100, stats.MaxOpenConnections)

	var result int
	err = db.Raw("SELECT 1").Scan(&result).Error
	assert.NoError(t, err)
	assert.Equal(t, 1, result)

	defer sqlDB.Close()
}

func TestInitPostgres_InvalidDSN(t *testing.T) {
	db, sqlDB, err := InitPostgres("invalid-dsn-format")

	assert.Error(t, err, "InitPostgres should return error with invalid DSN")
	assert.Nil(t, db, "GORM DB should be nil on error")
	assert.Nil(t, sqlDB, "SQL DB should be nil on error")
}

func TestInitPostgres_DatabaseConnectionFailure(t *testing.T) {
	nonExistentDSN := "host=nonexistent-host user=test password=test dbname=test port=5432 sslmode=disable"

	db, sqlDB, err := InitPostgres(nonExistentDSN)

	assert.Error(t, err, "InitPostgres should return error when database is unreachable")
	assert.Nil(t, db, "GORM DB should be nil on error")
	assert.Nil(t, sqlDB, "SQL DB should be nil on error")
}
