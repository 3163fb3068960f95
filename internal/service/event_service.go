package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classgrid/classgrid-backend/internal/config"
	"github.com/classgrid/classgrid-backend/internal/model"
)

// Event is one scope-level happening: a member joined, a role changed,
// an undo was applied. Events fan out two ways: published on the scope's
// Redis channel for live stream subscribers, and queued for the audit
// worker to persist.
type Event struct {
	Kind      string    `json:"kind"`
	SubjectID string    `json:"subject_id"`
	ScopeType string    `json:"scope_type"`
	ScopeID   string    `json:"scope_id"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

// EventService publishes scope events. Publishing is fire-and-forget:
// a Redis hiccup is logged, never surfaced to the mutation that caused
// the event.
type EventService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(rdb *redis.Client, log zerolog.Logger) *EventService {
	return &EventService{
		rdb: rdb,
		log: log.With().Str("component", "event_service").Logger(),
	}
}

// Publish fans the event out to live subscribers and the audit queue.
func (s *EventService) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal event")
		return
	}

	if ev.ScopeType == "class" {
		channel := config.CacheKey.ClassEventChannel(ev.ScopeID)
		if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
			s.log.Warn().Err(err).Str("channel", channel).Msg("Publish event")
		}
	}

	audit := model.AuditEvent{
		Kind:      ev.Kind,
		SubjectID: ev.SubjectID,
		ScopeType: ev.ScopeType,
		ScopeID:   ev.ScopeID,
		Detail:    ev.Detail,
		CreatedAt: ev.At,
	}
	auditPayload, err := json.Marshal(audit)
	if err != nil {
		s.log.Error().Err(err).Msg("Marshal audit event")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, auditPayload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Enqueue audit event")
	}
}
