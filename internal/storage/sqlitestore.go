// internal/storage/sqlitestore.go
//
// SQLite 後端：每次保存在單一交易內改寫整份帳戶表，
// 以 position 欄位保留 registry 的內部順序。

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id        TEXT NOT NULL,
	storage   TEXT NOT NULL,
	version   INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	note      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS accounts (
	position    INTEGER PRIMARY KEY,
	category    TEXT NOT NULL,
	first_name  TEXT NOT NULL,
	last_name   TEXT NOT NULL,
	dob         TEXT NOT NULL,
	balance     TEXT NOT NULL,
	campus      INTEGER NOT NULL DEFAULT 0,
	loyal       INTEGER NOT NULL DEFAULT 0,
	withdrawals INTEGER NOT NULL DEFAULT 0
);`

// SQLiteStore 將快照保存於 SQLite 資料庫。
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore 開啟（必要時建立）path 的資料庫並建立資料表。
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "rubank.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close 關閉資料庫連線。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load 讀回最近一次保存的快照；從未保存過時回傳 ErrNoSnapshot。
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		ts   string
	)
	row := s.db.QueryRowContext(ctx, `SELECT id, storage, version, timestamp, note FROM snapshot_meta LIMIT 1`)
	err := row.Scan(&snap.Meta.ID, &snap.Meta.Storage, &snap.Meta.Version, &ts, &snap.Meta.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, ErrNoSnapshot
	}
	if err != nil {
		return snap, fmt.Errorf("select meta: %w", err)
	}
	if snap.Meta.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return snap, fmt.Errorf("parse timestamp: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, first_name, last_name, dob, balance, campus, loyal, withdrawals
		FROM accounts ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("select accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			pa      PersistAccount
			balance string
		)
		if err := rows.Scan(&pa.Category, &pa.FirstName, &pa.LastName, &pa.DOB, &balance, &pa.Campus, &pa.Loyal, &pa.Withdrawals); err != nil {
			return snap, fmt.Errorf("scan: %w", err)
		}
		if pa.Balance, err = decimal.NewFromString(balance); err != nil {
			return snap, fmt.Errorf("decode balance %q: %w", balance, err)
		}
		snap.Accounts = append(snap.Accounts, pa)
	}
	return snap, rows.Err()
}

// Save 在單一交易內取代整份快照。
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) (retErr error) {
	snap.Meta = stamp(snap.Meta, "sqlite_snapshot")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO snapshot_meta (id, storage, version, timestamp, note) VALUES (?, ?, ?, ?, ?)`,
		snap.Meta.ID, snap.Meta.Storage, snap.Meta.Version, snap.Meta.Timestamp.Format(time.RFC3339Nano), snap.Meta.Note); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	for i, pa := range snap.Accounts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO accounts
			(position, category, first_name, last_name, dob, balance, campus, loyal, withdrawals)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, pa.Category, pa.FirstName, pa.LastName, pa.DOB, pa.Balance.String(), pa.Campus, pa.Loyal, pa.Withdrawals); err != nil {
			return fmt.Errorf("insert account %d: %w", i, err)
		}
	}
	return tx.Commit()
}
