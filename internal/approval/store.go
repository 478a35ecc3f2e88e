package approval

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/domain"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed approval persistence
type Store struct {
	db *sql.DB
}

var _ Registry = (*Store)(nil)

// NewStore opens (and migrates) the approval database at dbPath
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// IsApproved reports whether hash has been approved
func (s *Store) IsApproved(hash string) (bool, error) {
	var state string
	err := s.db.QueryRow(`SELECT state FROM classpath_approvals WHERE hash = ?`, hash).Scan(&state)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return State(state) == StateApproved, nil
}

// RegisterPending inserts a pending record unless hash is already known
func (s *Store) RegisterPending(entry domain.ClasspathEntry, hash string) (bool, error) {
	res, err := s.db.Exec(`
		INSERT INTO classpath_approvals (hash, url, state, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, entry.URL, string(StatePending), time.Now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) ListPending() ([]Record, error) {
	return s.list(StatePending)
}

func (s *Store) ListApproved() ([]Record, error) {
	return s.list(StateApproved)
}

// Approve marks a pending record approved. Approving an approved hash is a no-op.
func (s *Store) Approve(hash string) error {
	res, err := s.db.Exec(`
		UPDATE classpath_approvals SET state = ?, approved_at = ?
		WHERE hash = ? AND state = ?
	`, string(StateApproved), time.Now(), hash, string(StatePending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	approved, err := s.IsApproved(hash)
	if err != nil {
		return err
	}
	if !approved {
		return ErrNotPending
	}
	return nil
}

// Deny drops a pending record
func (s *Store) Deny(hash string) error {
	res, err := s.db.Exec(`DELETE FROM classpath_approvals WHERE hash = ? AND state = ?`,
		hash, string(StatePending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Store) list(state State) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT hash, url, state, created_at, approved_at
		FROM classpath_approvals WHERE state = ?
		ORDER BY created_at, hash
	`, string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var state string
	var approvedAt sql.NullTime

	if err := rows.Scan(&rec.Hash, &rec.URL, &state, &rec.CreatedAt, &approvedAt); err != nil {
		return Record{}, err
	}

	rec.State = State(state)
	if approvedAt.Valid {
		t := approvedAt.Time
		rec.ApprovedAt = &t
	}
	return rec, nil
}
