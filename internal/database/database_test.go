package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"eventhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:       5,
		DBMaxIdleConns:       0,
		DBConnMaxIdleSeconds: 10,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 5, sqlDB.Stats().MaxOpenConnections)
}

func TestMigrateAndPing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("events"))
	assert.True(t, db.Migrator().HasIndex("events", "idx_events_creator_created_at"))
	assert.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, Close(db))
}

func TestDSN(t *testing.T) {
	dsn := DSN(&config.Config{
		DBHost:                  "db",
		DBPort:                  "5432",
		DBUser:                  "u",
		DBPassword:              "p",
		DBName:                  "events",
		DBAcquireTimeoutSeconds: 30,
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=events sslmode=disable connect_timeout=30", dsn)
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, buf.String(), "fast successful queries are not logged at warn level")

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 2", 0 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "record not found is ignored")

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 3", 0 }, errors.New("syntax error"))
	assert.True(t, strings.Contains(buf.String(), "GORM query error"))

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 4", 0 }, nil)
	assert.True(t, strings.Contains(buf.String(), "GORM slow query"))

	buf.Reset()
	silent := l.LogMode(logger.Silent)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 5", 0 }, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
