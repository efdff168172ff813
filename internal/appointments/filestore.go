package appointments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

// FileStore persists the whole appointment collection as one JSON array on
// disk. Every mutation is a full read-modify-write of the collection, which
// bounds it to small record counts. A store-level mutex serializes those
// cycles so concurrent writers cannot clobber each other.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *logging.Logger
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// ListAll returns every stored appointment in creation order. A missing,
// corrupt or unreadable file yields an empty slice.
func (s *FileStore) ListAll(ctx context.Context) []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Append adds a new record to the collection.
func (s *FileStore) Append(ctx context.Context, appt Appointment) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appts := s.read()
	appts = append(appts, appt)
	if err := s.write(appts); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// Update merges fields into the record with the given id and stamps a fresh
// updatedAt. Returns ErrNotFound, without writing, when no record matches.
func (s *FileStore) Update(ctx context.Context, id string, fields map[string]any) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appts := s.read()
	for i, appt := range appts {
		if appt.ID != id {
			continue
		}
		updated, err := applyUpdate(appt, fields)
		if err != nil {
			return Appointment{}, err
		}
		appts[i] = updated
		if err := s.write(appts); err != nil {
			return Appointment{}, err
		}
		return updated, nil
	}
	return Appointment{}, ErrNotFound
}

// FindByPhoneAndDate returns the first appointment for the phone number
// scheduled on the given ISO date.
func (s *FileStore) FindByPhoneAndDate(ctx context.Context, phoneNumber, dateISO string) (Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, appt := range s.read() {
		if matchesPhoneAndDate(appt, phoneNumber, dateISO) {
			return appt, true
		}
	}
	return Appointment{}, false
}

func (s *FileStore) read() []Appointment {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("appointment store unreadable, serving empty collection", "path", s.path, "error", err)
		}
		return []Appointment{}
	}

	var appts []Appointment
	if err := json.Unmarshal(raw, &appts); err != nil {
		s.logger.Warn("appointment store corrupt, serving empty collection", "path", s.path, "error", err)
		return []Appointment{}
	}
	if appts == nil {
		appts = []Appointment{}
	}
	return appts
}

func (s *FileStore) write(appts []Appointment) error {
	raw, err := json.MarshalIndent(appts, "", "  ")
	if err != nil {
		return fmt.Errorf("appointments: encode collection: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("appointments: create data dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("appointments: write collection: %w", err)
	}
	return nil
}
