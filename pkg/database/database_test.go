package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/study-partner/config"
	"github.com/d60-Lab/study-partner/internal/model"
)

func TestInitDBSQLiteMemory(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", AutoMigrate: true}}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.NoError(t, Ping(context.Background(), db))
	assert.True(t, db.Migrator().HasTable(&model.Partner{}))
	assert.True(t, db.Migrator().HasTable(&model.Request{}))
	assert.True(t, db.Migrator().HasIndex(&model.Request{}, "ux_request_pair"))
}

func TestInitDBUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.Config{Database: config.DatabaseConfig{Driver: "oracle", DSN: "x"}})
	assert.Error(t, err)
}
