package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shipstat/record"
)

// ErrSessionNotFound is returned when a session's data is absent or expired.
var ErrSessionNotFound = errors.New("session not found")

const (
	dataKeyPrefix = "shipping:data:"
	metaKeyPrefix = "shipping:meta:"
)

// SessionMeta is the sidecar stored next to a session's records.
type SessionMeta struct {
	SessionID string    `json:"sessionId"`
	TotalRows int       `json:"totalRows"`
	Timestamp time.Time `json:"timestamp"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore keeps each uploaded dataset under a session id with a TTL.
type SessionStore struct {
	kv  KV
	ttl time.Duration
}

// NewSessionStore wraps the KV with the configured dataset TTL.
func NewSessionStore(kv KV, ttl time.Duration) *SessionStore {
	return &SessionStore{kv: kv, ttl: ttl}
}

// NewSessionID mints a fresh session id.
func NewSessionID() string {
	return uuid.New().String()
}

// SaveRecords stores the records and their metadata sidecar under the
// session id, both with the dataset TTL. Saving over an existing session
// replaces its data.
func (s *SessionStore) SaveRecords(ctx context.Context, sessionID string, records []record.Record) (SessionMeta, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return SessionMeta{}, fmt.Errorf("failed to encode records: %w", err)
	}

	now := time.Now()
	meta := SessionMeta{
		SessionID: sessionID,
		TotalRows: len(records),
		Timestamp: now,
		ExpiresAt: now.Add(s.ttl),
	}
	metaPayload, err := json.Marshal(meta)
	if err != nil {
		return SessionMeta{}, fmt.Errorf("failed to encode metadata: %w", err)
	}

	if err := s.kv.Set(ctx, dataKeyPrefix+sessionID, string(payload), s.ttl); err != nil {
		return SessionMeta{}, fmt.Errorf("failed to store records: %w", err)
	}
	if err := s.kv.Set(ctx, metaKeyPrefix+sessionID, string(metaPayload), s.ttl); err != nil {
		return SessionMeta{}, fmt.Errorf("failed to store metadata: %w", err)
	}
	return meta, nil
}

// FetchRecords loads a session's records. ErrSessionNotFound distinguishes
// an absent or expired session from a transport failure.
func (s *SessionStore) FetchRecords(ctx context.Context, sessionID string) ([]record.Record, error) {
	payload, err := s.kv.Get(ctx, dataKeyPrefix+sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	var records []record.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// Metadata loads the session's sidecar.
func (s *SessionStore) Metadata(ctx context.Context, sessionID string) (SessionMeta, error) {
	payload, err := s.kv.Get(ctx, metaKeyPrefix+sessionID)
	if errors.Is(err, ErrNotFound) {
		return SessionMeta{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return SessionMeta{}, fmt.Errorf("failed to fetch metadata: %w", err)
	}

	var meta SessionMeta
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return SessionMeta{}, fmt.Errorf("failed to decode metadata: %w", err)
	}
	return meta, nil
}

// TTL reports the remaining lifetime of the session's data.
func (s *SessionStore) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := s.kv.TTL(ctx, dataKeyPrefix+sessionID)
	if errors.Is(err, ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return ttl, err
}

// Valid reports whether the session still has live data.
func (s *SessionStore) Valid(ctx context.Context, sessionID string) bool {
	_, err := s.kv.TTL(ctx, dataKeyPrefix+sessionID)
	return err == nil
}

// Delete removes a session's records and metadata.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.kv.Delete(ctx, dataKeyPrefix+sessionID, metaKeyPrefix+sessionID)
}
