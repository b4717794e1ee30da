// Package dbtest opens isolated sqlite databases carrying the application
// schema.
package dbtest

import (
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aidanjnn/lost-found-app/pkg/db"
	"github.com/aidanjnn/lost-found-app/pkg/migrate"
)

// Open returns a fresh in-memory database for t. A single pooled connection
// mirrors the one-writer model the engine relies on under sqlite.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	return open(t, "file:"+uuid.NewString()+"?mode=memory&cache=shared", 1)
}

// OpenConcurrent returns a file-backed database that several connections
// can use at once. Transactions begin IMMEDIATE, so writers queue on the
// database lock (up to the busy timeout) the way row locks queue them on
// postgres.
func OpenConcurrent(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lostfound.db")
	return open(t, "file:"+path+"?_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL", conns)
}

// Client wraps Open in the transaction-capable db client.
func Client(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromConn(conn), conn
}

// ConcurrentClient wraps OpenConcurrent in the db client.
func ConcurrentClient(t *testing.T, conns int) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := OpenConcurrent(t, conns)
	return db.NewFromConn(conn), conn
}

func open(t *testing.T, dsn string, conns int) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.SQLiteSchema(conn); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return conn
}
