package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNothingPending is returned by Undo when the subject has no
// registered action. Callers usually treat it as a no-op.
var ErrNothingPending = errors.New("undo: nothing pending")

// Mutator is the slice of the entity store the log needs to replay
// inverses. Every call is atomic in the store.
type Mutator interface {
	CreateWithID(ctx context.Context, entityType, id string, data map[string]any) error
	Update(ctx context.Context, entityType, id string, data map[string]any) error
	Delete(ctx context.Context, entityType, id string) error
	Link(ctx context.Context, entityType, id, label string, targetIDs []string) error
	Unlink(ctx context.Context, entityType, id, label string, targetIDs []string) error
}

// Pending describes a subject's currently undoable action, for surfacing
// the affordance to the client.
type Pending struct {
	Action    Action    `json:"action"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type slot struct {
	action    Action
	message   string
	expiresAt time.Time
	// seq ties the expiry timer to this specific registration so a
	// stale timer can never clear a newer action's slot.
	seq   uint64
	timer *time.Timer
}

// Log holds one pending undo per subject. Registration replaces any
// previous pending action; expiry clears silently.
type Log struct {
	mu      sync.Mutex
	slots   map[string]*slot
	nextSeq uint64

	mutator Mutator
	window  time.Duration
	log     zerolog.Logger
}

// NewLog creates a Log replaying inverses through mutator, with the given
// undo window.
func NewLog(mutator Mutator, window time.Duration, log zerolog.Logger) *Log {
	return &Log{
		slots:   make(map[string]*slot),
		mutator: mutator,
		window:  window,
		log:     log.With().Str("component", "undo_log").Logger(),
	}
}

// Register stores action as subjectID's single pending undo and schedules
// its expiry. A previously pending action is discarded, not queued.
func (l *Log) Register(subjectID string, action Action, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.slots[subjectID]; ok {
		prev.timer.Stop()
	}

	l.nextSeq++
	s := &slot{
		action:    action,
		message:   message,
		expiresAt: time.Now().Add(l.window),
		seq:       l.nextSeq,
	}
	seq := s.seq
	s.timer = time.AfterFunc(l.window, func() {
		l.expire(subjectID, seq)
	})
	l.slots[subjectID] = s

	l.log.Debug().
		Str("subject_id", subjectID).
		Str("action", string(action.Type)).
		Str("entity_type", action.EntityType).
		Msg("Undo registered")
}

// Pending returns the subject's pending undo, if any.
func (l *Log) Pending(subjectID string) (Pending, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[subjectID]
	if !ok {
		return Pending{}, false
	}
	return Pending{Action: s.action, Message: s.message, ExpiresAt: s.expiresAt}, true
}

// Clear drops the subject's pending undo without replaying it.
func (l *Log) Clear(subjectID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remove(subjectID)
}

// Undo replays the inverse of the subject's pending action. The slot is
// cleared whether or not the replay succeeds: a failed undo is terminal,
// matching the at-most-once nature of the affordance.
func (l *Log) Undo(ctx context.Context, subjectID string) error {
	l.mu.Lock()
	s, ok := l.slots[subjectID]
	if !ok {
		l.mu.Unlock()
		return ErrNothingPending
	}
	action := s.action
	l.remove(subjectID)
	l.mu.Unlock()

	if err := l.replay(ctx, action); err != nil {
		l.log.Warn().
			Err(err).
			Str("subject_id", subjectID).
			Str("action", string(action.Type)).
			Msg("Undo replay failed")
		return fmt.Errorf("replay %s inverse: %w", action.Type, err)
	}

	l.log.Debug().
		Str("subject_id", subjectID).
		Str("action", string(action.Type)).
		Msg("Undo applied")
	return nil
}

// replay issues the inverse mutation for action.
func (l *Log) replay(ctx context.Context, action Action) error {
	switch action.Type {
	case ActionCreate:
		return l.mutator.Delete(ctx, action.EntityType, action.EntityID)
	case ActionDelete:
		return l.mutator.CreateWithID(ctx, action.EntityType, action.EntityID, action.Data)
	case ActionUpdate:
		return l.mutator.Update(ctx, action.EntityType, action.EntityID, action.PreviousData)
	case ActionLink:
		return l.mutator.Unlink(ctx, action.EntityType, action.EntityID, action.LinkLabel, action.TargetIDs)
	case ActionUnlink:
		return l.mutator.Link(ctx, action.EntityType, action.EntityID, action.LinkLabel, action.TargetIDs)
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

// expire clears the slot when the window elapses, but only if the slot
// still belongs to the registration that scheduled this timer.
func (l *Log) expire(subjectID string, seq uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[subjectID]
	if !ok || s.seq != seq {
		return
	}
	delete(l.slots, subjectID)
}

// remove must be called with l.mu held.
func (l *Log) remove(subjectID string) {
	if s, ok := l.slots[subjectID]; ok {
		s.timer.Stop()
		delete(l.slots, subjectID)
	}
}
