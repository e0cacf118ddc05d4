// Package assessment runs interview and practice submissions: it loads an
// aggregate, applies the ledger and completion rules, and saves the result
// under optimistic concurrency.
package assessment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/krshsl/mulakat/backend/apperr"
	"github.com/krshsl/mulakat/backend/repository"
)

const (
	DefaultUpdateTimeout = 5 * time.Second
	DefaultMaxRetries    = 5
)

// Event types published on an interview's topic.
const (
	EventParticipantRegistered = "participant_registered"
	EventResponseRecorded      = "response_recorded"
	EventParticipantCompleted  = "participant_completed"
	EventInterviewArchived     = "interview_archived"
)

// Event is pushed to live listeners of an interview.
type Event struct {
	Type         string      `json:"type"`
	InterviewURL string      `json:"interviewUrl"`
	Email        string      `json:"email,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	At           time.Time   `json:"at"`
}

// Publisher receives events after the change they describe has been saved.
type Publisher interface {
	Publish(topic string, event interface{})
}

type Options struct {
	UpdateTimeout time.Duration
	MaxRetries    int
	Publisher     Publisher
	Now           func() time.Time
}

type Service struct {
	store         repository.SessionStore
	updateTimeout time.Duration
	maxRetries    int
	publisher     Publisher
	now           func() time.Time
}

func NewService(store repository.SessionStore, opts Options) *Service {
	s := &Service{
		store:         store,
		updateTimeout: opts.UpdateTimeout,
		maxRetries:    opts.MaxRetries,
		publisher:     opts.Publisher,
		now:           opts.Now,
	}
	if s.updateTimeout <= 0 {
		s.updateTimeout = DefaultUpdateTimeout
	}
	if s.maxRetries <= 0 {
		s.maxRetries = DefaultMaxRetries
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// NewCapabilityToken returns 64 hex characters from 32 random bytes.
func NewCapabilityToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// withRetry runs cycle until it succeeds, fails with anything but a write
// conflict, or the retry budget is spent. Every attempt starts from a fresh
// load.
func withRetry[T any](ctx context.Context, s *Service, kind, key string, cycle func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		result, err := bounded(ctx, s.updateTimeout, cycle)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, repository.ErrWriteConflict) {
			return zero, err
		}
		lastErr = err
		slog.Warn("Update conflict, retrying", "aggregate", kind, "key", key, "attempt", attempt)
	}
	slog.Error("Update retries exhausted", "aggregate", kind, "key", key, "error", lastErr)
	return zero, lastErr
}

// bounded runs one load-modify-save cycle under timeout. A cycle that runs
// out of time surfaces as a retryable Timeout error.
func bounded[T any](ctx context.Context, timeout time.Duration, cycle func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := cycle(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var zero T
		return zero, apperr.Timeout("update timed out", err)
	}
	return result, err
}

func (s *Service) publish(topic string, event Event) {
	if s.publisher == nil {
		return
	}
	event.InterviewURL = topic
	if event.At.IsZero() {
		event.At = s.now()
	}
	s.publisher.Publish(topic, event)
}
