package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rileyhilliard/lsview/internal/errors"
)

//go:embed schema/schema.sql
var schemaSQL string

const busyTimeout = 5000 // milliseconds

// SQLiteStore keeps all documents in one SQLite database, <dir>/options.db.
// Updates run in immediate transactions, so the database lock is held from
// the read to the write.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (and creates) the database in dir.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't create %s", dir), "Check options.dir")
	}
	path := filepath.Join(dir, "options.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate", path, busyTimeout)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Failed to open %s", path), "")
	}
	// One connection per process; other processes are kept out by the
	// immediate transactions.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schemaSQL); err != nil {
		_ = conn.Close()
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Failed to initialize %s", path),
			"Delete the file if it is not an lsview options database")
	}
	return &SQLiteStore{conn: conn}, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadDoc(ctx context.Context, q queryer, user, key string) (map[string]any, error) {
	var raw string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM user_settings WHERE user = ? AND key = ?`, user, key).Scan(&raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Failed to load %s of %s", key, user), "")
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Stored %s of %s is corrupt", key, user), "")
	}
	return normalizeDoc(doc), nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, user, key string) (map[string]any, error) {
	return loadDoc(ctx, s.conn, user, key)
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, user, key string, fn UpdateFunc) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, "Failed to begin transaction", "")
	}

	doc, err := loadDoc(ctx, tx, user, key)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if doc, err = fn(doc); err != nil {
		_ = tx.Rollback()
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		_ = tx.Rollback()
		return errors.WrapWithCode(err, errors.ErrStore, "Can't encode settings", "")
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_settings (user, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		user, key, string(raw), time.Now().UnixNano())
	if err != nil {
		_ = tx.Rollback()
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Failed to save %s of %s", key, user), "")
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, "Failed to commit transaction", "")
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
