package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/golang/glog"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	// DriverCGO is github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPure is modernc.org/sqlite, for builds without cgo.
	DriverPure = "sqlite"

	memoryDSN = ":memory:"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the workspace database. An empty path keeps the workspace in
// memory for the lifetime of the process.
func NewSQLiteStore(driver, path string) (*SQLiteStore, error) {
	switch strings.TrimSpace(driver) {
	case "":
		driver = DriverCGO
	case DriverCGO, DriverPure:
	default:
		return nil, errors.Errorf("unsupported sqlite driver %q", driver)
	}
	if strings.TrimSpace(path) == "" {
		path = memoryDSN
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	// A single connection also keeps an in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init schema")
	}

	glog.Infof("workspace store ready driver=%s path=%s", driver, path)
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
