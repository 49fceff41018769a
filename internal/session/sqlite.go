package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
	user       TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// SQLiteStore keeps one JSON document per user in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, user string) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM user_settings WHERE user = ?`, user).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings for %s: %w", user, err)
	}
	return []byte(doc), nil
}

func (s *SQLiteStore) Put(ctx context.Context, user string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user, doc) VALUES (?, ?)
		ON CONFLICT(user) DO UPDATE SET doc = excluded.doc, updated_at = datetime('now')`,
		user, string(doc))
	if err != nil {
		return fmt.Errorf("save settings for %s: %w", user, err)
	}
	return nil
}
