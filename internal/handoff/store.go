package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"aerolink/internal/shared/constants"
	"aerolink/internal/wizard"
	"aerolink/pkg/cache"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrMissing means nothing usable is stored: never written, expired or discarded
	ErrMissing = errors.New("hand-off not found or expired")
	// ErrStale means something is stored but it cannot be trusted
	ErrStale = errors.New("hand-off is stale")
)

// StaleError lists why a stored hand-off was rejected
type StaleError struct {
	Kind     Kind
	Problems []string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s hand-off is stale: %s", e.Kind, strings.Join(e.Problems, "; "))
}

func (e *StaleError) Unwrap() error {
	return ErrStale
}

// IsUnavailable reports whether err means the hand-off cannot be used
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrMissing) || errors.Is(err, ErrStale)
}

// Store keeps the typed per-step hand-offs of booking sessions
type Store interface {
	SaveDraft(ctx context.Context, d *wizard.BookingDraft) error
	LoadDraft(ctx context.Context, sessionID string) (*wizard.BookingDraft, error)

	SaveSeats(ctx context.Context, h *SeatHandoff) error
	LoadSeats(ctx context.Context, sessionID string) (*SeatHandoff, error)

	SavePassengers(ctx context.Context, h *PassengerHandoff) error
	LoadPassengers(ctx context.Context, sessionID string) (*PassengerHandoff, error)

	SaveReceipt(ctx context.Context, h *ReceiptHandoff) error
	LoadReceipt(ctx context.Context, sessionID string) (*ReceiptHandoff, error)

	// Discard drops the given slots, or all of them when none are named
	Discard(ctx context.Context, sessionID string, kinds ...Kind) error
}

type store struct {
	cache   cache.Service
	ttl     time.Duration
	now     func() time.Time
	schemas map[Kind]*gojsonschema.Schema
}

// NewStore returns a Redis-backed store whose entries live for ttl
func NewStore(c cache.Service, ttl time.Duration) (Store, error) {
	return newStore(c, ttl, time.Now)
}

func newStore(c cache.Service, ttl time.Duration, now func() time.Time) (*store, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("hand-off ttl must be positive, got %s", ttl)
	}
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	return &store{cache: c, ttl: ttl, now: now, schemas: schemas}, nil
}

func key(sessionID string, kind Kind) string {
	return constants.BuildSessionKey(sessionID, string(kind))
}

func (s *store) stamp(h *Header, sessionID string) {
	now := s.now().UTC()
	h.Version = SchemaVersion
	h.SessionID = sessionID
	h.StoredAt = now
	h.ExpiresAt = now.Add(s.ttl)
}

func (s *store) save(ctx context.Context, sessionID string, kind Kind, v interface{}) error {
	if sessionID == "" {
		return fmt.Errorf("save %s hand-off: empty session id", kind)
	}
	if err := s.cache.Set(ctx, key(sessionID, kind), v, s.ttl); err != nil {
		return fmt.Errorf("save %s hand-off: %w", kind, err)
	}
	return nil
}

// load fetches, schema-checks and decodes one slot. hdr must point into dest.
func (s *store) load(ctx context.Context, sessionID string, kind Kind, dest interface{}, hdr *Header) error {
	raw, err := s.cache.GetBytes(ctx, key(sessionID, kind))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return ErrMissing
		}
		return fmt.Errorf("load %s hand-off: %w", kind, err)
	}

	problems, err := checkSchema(s.schemas[kind], raw)
	if err != nil {
		return &StaleError{Kind: kind, Problems: []string{err.Error()}}
	}
	if len(problems) > 0 {
		return &StaleError{Kind: kind, Problems: problems}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return &StaleError{Kind: kind, Problems: []string{err.Error()}}
	}
	if hdr.SessionID != sessionID {
		return &StaleError{Kind: kind, Problems: []string{"session id mismatch"}}
	}
	if !s.now().Before(hdr.ExpiresAt) {
		return ErrMissing
	}
	return nil
}

func (s *store) SaveDraft(ctx context.Context, d *wizard.BookingDraft) error {
	env := draftEnvelope{Draft: d}
	s.stamp(&env.Header, d.SessionID)
	return s.save(ctx, d.SessionID, KindDraft, env)
}

func (s *store) LoadDraft(ctx context.Context, sessionID string) (*wizard.BookingDraft, error) {
	var env draftEnvelope
	if err := s.load(ctx, sessionID, KindDraft, &env, &env.Header); err != nil {
		return nil, err
	}
	return env.Draft, nil
}

func (s *store) SaveSeats(ctx context.Context, h *SeatHandoff) error {
	s.stamp(&h.Header, h.SessionID)
	return s.save(ctx, h.SessionID, KindSeats, h)
}

func (s *store) LoadSeats(ctx context.Context, sessionID string) (*SeatHandoff, error) {
	var h SeatHandoff
	if err := s.load(ctx, sessionID, KindSeats, &h, &h.Header); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *store) SavePassengers(ctx context.Context, h *PassengerHandoff) error {
	s.stamp(&h.Header, h.SessionID)
	return s.save(ctx, h.SessionID, KindPassengers, h)
}

func (s *store) LoadPassengers(ctx context.Context, sessionID string) (*PassengerHandoff, error) {
	var h PassengerHandoff
	if err := s.load(ctx, sessionID, KindPassengers, &h, &h.Header); err != nil {
		return nil, err
	}
	if len(h.Seats) != len(h.Passengers) {
		return nil, &StaleError{Kind: KindPassengers, Problems: []string{"seat and passenger counts differ"}}
	}
	return &h, nil
}

func (s *store) SaveReceipt(ctx context.Context, h *ReceiptHandoff) error {
	s.stamp(&h.Header, h.SessionID)
	return s.save(ctx, h.SessionID, KindReceipt, h)
}

func (s *store) LoadReceipt(ctx context.Context, sessionID string) (*ReceiptHandoff, error) {
	var h ReceiptHandoff
	if err := s.load(ctx, sessionID, KindReceipt, &h, &h.Header); err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *store) Discard(ctx context.Context, sessionID string, kinds ...Kind) error {
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	keys := make([]string, 0, len(kinds))
	for _, k := range kinds {
		keys = append(keys, key(sessionID, k))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("discard hand-offs: %w", err)
	}
	return nil
}
