package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

const defaultRedisKey = "clinic:appointments"

// RedisStore keeps the whole appointment collection serialized under a
// single key, mirroring the file store's read-modify-write discipline. The
// observable contract (creation order, shallow merge, not-found semantics,
// empty-on-corrupt reads) is identical.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	mu     sync.Mutex
	logger *logging.Logger
}

// NewRedisStore creates a Redis-backed appointment store. An empty key
// selects the default.
func NewRedisStore(client redis.UniversalClient, key string, logger *logging.Logger) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// ListAll returns every stored appointment in creation order; unreachable or
// corrupt data degrades to an empty slice.
func (s *RedisStore) ListAll(ctx context.Context) []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Append adds a new record to the collection.
func (s *RedisStore) Append(ctx context.Context, appt Appointment) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appts := s.read(ctx)
	appts = append(appts, appt)
	if err := s.write(ctx, appts); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// Update merges fields into the record with the given id. Returns
// ErrNotFound, without writing, when no record matches.
func (s *RedisStore) Update(ctx context.Context, id string, fields map[string]any) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appts := s.read(ctx)
	for i, appt := range appts {
		if appt.ID != id {
			continue
		}
		updated, err := applyUpdate(appt, fields)
		if err != nil {
			return Appointment{}, err
		}
		appts[i] = updated
		if err := s.write(ctx, appts); err != nil {
			return Appointment{}, err
		}
		return updated, nil
	}
	return Appointment{}, ErrNotFound
}

// FindByPhoneAndDate returns the first appointment for the phone number
// scheduled on the given ISO date.
func (s *RedisStore) FindByPhoneAndDate(ctx context.Context, phoneNumber, dateISO string) (Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, appt := range s.read(ctx) {
		if matchesPhoneAndDate(appt, phoneNumber, dateISO) {
			return appt, true
		}
	}
	return Appointment{}, false
}

func (s *RedisStore) read(ctx context.Context) []Appointment {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("appointment store unreachable, serving empty collection", "key", s.key, "error", err)
		}
		return []Appointment{}
	}

	var appts []Appointment
	if err := json.Unmarshal(raw, &appts); err != nil {
		s.logger.Warn("appointment store corrupt, serving empty collection", "key", s.key, "error", err)
		return []Appointment{}
	}
	if appts == nil {
		appts = []Appointment{}
	}
	return appts
}

func (s *RedisStore) write(ctx context.Context, appts []Appointment) error {
	raw, err := json.Marshal(appts)
	if err != nil {
		return fmt.Errorf("appointments: encode collection: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("appointments: write collection: %w", err)
	}
	return nil
}
