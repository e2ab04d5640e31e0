// Package history persists check-cycle outcomes for the status API.
package history

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/pulseworks/rustwatch/internal/monitor"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts one cycle outcome. It satisfies monitor.Recorder.
func (s *Store) Record(rec monitor.CycleRecord) error {
	id := uuid.New().String()[:8]
	_, err := s.db.Exec(
		`INSERT INTO checks (id, ok, classification, consecutive_failures, attempts, response, error, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.OK, rec.Classification.String(), rec.ConsecutiveFailures,
		rec.Attempts, rec.Response, rec.Error, rec.At.UTC(),
	)
	return err
}

// Row is one persisted check as served by the API.
type Row struct {
	ID                  string    `json:"id"`
	OK                  bool      `json:"ok"`
	Classification      string    `json:"classification"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Attempts            int       `json:"attempts"`
	Response            string    `json:"response,omitempty"`
	Error               string    `json:"error,omitempty"`
	CheckedAt           time.Time `json:"checked_at"`
}

// Recent returns up to limit checks, newest first.
func (s *Store) Recent(limit int) ([]Row, error) {
	rows, err := s.db.Query(
		`SELECT id, ok, classification, consecutive_failures, attempts, response, error, checked_at
		FROM checks ORDER BY checked_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.OK, &r.Classification, &r.ConsecutiveFailures,
			&r.Attempts, &r.Response, &r.Error, &r.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
