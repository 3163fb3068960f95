package undo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMutator records replayed mutations and can be told to fail.
type fakeMutator struct {
	mu    sync.Mutex
	calls []string
	fail  error
}

func (f *fakeMutator) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail
}

func (f *fakeMutator) CreateWithID(ctx context.Context, entityType, id string, data map[string]any) error {
	return f.record("create:" + entityType + ":" + id)
}

func (f *fakeMutator) Update(ctx context.Context, entityType, id string, data map[string]any) error {
	return f.record("update:" + entityType + ":" + id)
}

func (f *fakeMutator) Delete(ctx context.Context, entityType, id string) error {
	return f.record("delete:" + entityType + ":" + id)
}

func (f *fakeMutator) Link(ctx context.Context, entityType, id, label string, targetIDs []string) error {
	return f.record("link:" + entityType + ":" + id + ":" + label)
}

func (f *fakeMutator) Unlink(ctx context.Context, entityType, id, label string, targetIDs []string) error {
	return f.record("unlink:" + entityType + ":" + id + ":" + label)
}

func (f *fakeMutator) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestLog(m Mutator, window time.Duration) *Log {
	return NewLog(m, window, zerolog.Nop())
}

func TestUndoNothingPending(t *testing.T) {
	l := newTestLog(&fakeMutator{}, time.Minute)
	err := l.Undo(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestUndoCreateReplaysDelete(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, time.Minute)

	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-1"}, "Organization created")

	require.NoError(t, l.Undo(context.Background(), "u1"))
	assert.Equal(t, []string{"delete:organizations:org-1"}, m.recorded())

	// At most once.
	err := l.Undo(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestUndoDeleteReplaysCreate(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, time.Minute)

	snapshot := map[string]any{"name": "Algebra"}
	l.Register("u1", Action{Type: ActionDelete, EntityType: "classes", EntityID: "class-1", Data: snapshot}, "Class deleted")

	require.NoError(t, l.Undo(context.Background(), "u1"))
	assert.Equal(t, []string{"create:classes:class-1"}, m.recorded())
}

func TestUndoUpdateReplaysPreviousData(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, time.Minute)

	l.Register("u1", Action{
		Type:         ActionUpdate,
		EntityType:   "organizations",
		EntityID:     "org-1",
		Data:         map[string]any{"name": "After"},
		PreviousData: map[string]any{"name": "Before"},
	}, "Organization updated")

	require.NoError(t, l.Undo(context.Background(), "u1"))
	assert.Equal(t, []string{"update:organizations:org-1"}, m.recorded())
}

func TestUndoLinkReplaysUnlink(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, time.Minute)

	l.Register("u1", Action{Type: ActionLink, EntityType: "classes", EntityID: "c1", LinkLabel: "students", TargetIDs: []string{"s1"}}, "Student added")
	require.NoError(t, l.Undo(context.Background(), "u1"))

	l.Register("u1", Action{Type: ActionUnlink, EntityType: "classes", EntityID: "c1", LinkLabel: "students", TargetIDs: []string{"s1"}}, "Student removed")
	require.NoError(t, l.Undo(context.Background(), "u1"))

	assert.Equal(t, []string{"unlink:classes:c1:students", "link:classes:c1:students"}, m.recorded())
}

func TestRegisterReplacesPending(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, time.Minute)

	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-1"}, "first")
	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-2"}, "second")

	p, ok := l.Pending("u1")
	require.True(t, ok)
	assert.Equal(t, "org-2", p.Action.EntityID)
	assert.Equal(t, "second", p.Message)

	// Only the replacement replays.
	require.NoError(t, l.Undo(context.Background(), "u1"))
	assert.Equal(t, []string{"delete:organizations:org-2"}, m.recorded())
}

func TestSlotsAreIndependentPerSubject(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, time.Minute)

	l.Register("alice", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "a-org"}, "")
	l.Register("bob", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "b-org"}, "")

	require.NoError(t, l.Undo(context.Background(), "alice"))

	// Bob's slot is untouched by Alice's undo.
	p, ok := l.Pending("bob")
	require.True(t, ok)
	assert.Equal(t, "b-org", p.Action.EntityID)
}

func TestExpiryClearsSlot(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, 20*time.Millisecond)

	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-1"}, "")

	assert.Eventually(t, func() bool {
		_, ok := l.Pending("u1")
		return !ok
	}, time.Second, 5*time.Millisecond)

	err := l.Undo(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNothingPending)
	assert.Empty(t, m.recorded())
}

func TestStaleTimerCannotClearNewerAction(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, 100*time.Millisecond)

	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-1"}, "")

	// Re-register just before the first window elapses; the first timer
	// may still fire but must not clear the replacement.
	time.Sleep(60 * time.Millisecond)
	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-2"}, "")

	time.Sleep(70 * time.Millisecond)
	p, ok := l.Pending("u1")
	require.True(t, ok)
	assert.Equal(t, "org-2", p.Action.EntityID)
}

func TestFailedReplayClearsSlot(t *testing.T) {
	m := &fakeMutator{fail: errors.New("db down")}
	l := newTestLog(m, time.Minute)

	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-1"}, "")

	err := l.Undo(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNothingPending)

	// Terminal: the failed action is not retryable.
	_, ok := l.Pending("u1")
	assert.False(t, ok)
	err = l.Undo(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestClearDropsWithoutReplay(t *testing.T) {
	m := &fakeMutator{}
	l := newTestLog(m, time.Minute)

	l.Register("u1", Action{Type: ActionCreate, EntityType: "organizations", EntityID: "org-1"}, "")
	l.Clear("u1")

	_, ok := l.Pending("u1")
	assert.False(t, ok)
	assert.Empty(t, m.recorded())
}
