package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// PGConn is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type PGConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore persists each appointment as a jsonb document row. Creation order
// is preserved through a serial column; merge and not-found semantics match
// the file store.
type PGStore struct {
	db     PGConn
	logger *logging.Logger
}

// NewPGStore creates a Postgres-backed appointment store.
func NewPGStore(db PGConn, logger *logging.Logger) *PGStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &PGStore{db: db, logger: logger}
}

// EnsureSchema creates the appointments table when it does not exist. The id
// column carries no unique constraint: the store does not enforce id
// uniqueness, duplicate ids are a caller error.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS appointments (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL,
			doc JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("appointments: ensure schema: %w", err)
	}
	return nil
}

// ListAll returns every stored appointment in creation order; query failures
// degrade to an empty slice.
func (s *PGStore) ListAll(ctx context.Context) []Appointment {
	rows, err := s.db.Query(ctx, `SELECT doc FROM appointments ORDER BY seq`)
	if err != nil {
		s.logger.Warn("appointment store unreadable, serving empty collection", "error", err)
		return []Appointment{}
	}
	defer rows.Close()

	appts := []Appointment{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			s.logger.Warn("appointment row unreadable, serving empty collection", "error", err)
			return []Appointment{}
		}
		var appt Appointment
		if err := json.Unmarshal(doc, &appt); err != nil {
			s.logger.Warn("appointment document corrupt, serving empty collection", "error", err)
			return []Appointment{}
		}
		appts = append(appts, appt)
	}
	if err := rows.Err(); err != nil {
		s.logger.Warn("appointment scan failed, serving empty collection", "error", err)
		return []Appointment{}
	}
	return appts
}

// Append adds a new record to the collection.
func (s *PGStore) Append(ctx context.Context, appt Appointment) (Appointment, error) {
	doc, err := json.Marshal(appt)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: encode record: %w", err)
	}
	if _, err := s.db.Exec(ctx, `INSERT INTO appointments (id, doc) VALUES ($1, $2)`, appt.ID, doc); err != nil {
		return Appointment{}, fmt.Errorf("appointments: insert record: %w", err)
	}
	return appt, nil
}

// Update merges fields into the record with the given id. Returns
// ErrNotFound, without writing, when no record matches.
func (s *PGStore) Update(ctx context.Context, id string, fields map[string]any) (Appointment, error) {
	var doc []byte
	err := s.db.QueryRow(ctx, `SELECT doc FROM appointments WHERE id = $1 ORDER BY seq LIMIT 1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: load record: %w", err)
	}

	var appt Appointment
	if err := json.Unmarshal(doc, &appt); err != nil {
		return Appointment{}, fmt.Errorf("appointments: decode record: %w", err)
	}

	updated, err := applyUpdate(appt, fields)
	if err != nil {
		return Appointment{}, err
	}

	merged, err := json.Marshal(updated)
	if err != nil {
		return Appointment{}, fmt.Errorf("appointments: encode record: %w", err)
	}
	if _, err := s.db.Exec(ctx, `UPDATE appointments SET doc = $2 WHERE id = $1`, id, merged); err != nil {
		return Appointment{}, fmt.Errorf("appointments: update record: %w", err)
	}
	return updated, nil
}

// FindByPhoneAndDate returns the first appointment for the phone number
// scheduled on the given ISO date.
func (s *PGStore) FindByPhoneAndDate(ctx context.Context, phoneNumber, dateISO string) (Appointment, bool) {
	for _, appt := range s.ListAll(ctx) {
		if matchesPhoneAndDate(appt, phoneNumber, dateISO) {
			return appt, true
		}
	}
	return Appointment{}, false
}
