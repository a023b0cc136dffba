package idempotency

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/hansjm10/Idle-Game-Engine-sub005/internal/protocol"
)

// SQLiteStore persists idempotency records in a single-table SQLite
// database (modernc driver, no cgo). The registry writes through to it and
// warm-loads from it at startup.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS idempotency (
		client_id      TEXT    NOT NULL,
		request_id     TEXT    NOT NULL,
		response       TEXT    NOT NULL,
		recorded_at_ms INTEGER NOT NULL,
		PRIMARY KEY (client_id, request_id)
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(rec Record) error {
	b, err := json.Marshal(rec.Response)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO idempotency (client_id, request_id, response, recorded_at_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id, request_id)
		DO UPDATE SET response=excluded.response, recorded_at_ms=excluded.recorded_at_ms`,
		rec.Key.ClientID, rec.Key.RequestID, string(b), rec.RecordedAtMs)
	return err
}

func (s *SQLiteStore) Load() ([]Record, error) {
	rows, err := s.db.Query(`SELECT client_id, request_id, response, recorded_at_ms FROM idempotency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var rec Record
		var raw string
		if err := rows.Scan(&rec.Key.ClientID, &rec.Key.RequestID, &raw, &rec.RecordedAtMs); err != nil {
			return nil, err
		}
		var resp protocol.CommandResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return nil, fmt.Errorf("record %s/%s: %w", rec.Key.ClientID, rec.Key.RequestID, err)
		}
		rec.Response = resp
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Purge(beforeMs int64) error {
	_, err := s.db.Exec(`DELETE FROM idempotency WHERE recorded_at_ms <= ?`, beforeMs)
	return err
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
