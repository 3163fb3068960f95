package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classgrid/classgrid-backend/internal/joincode"
	"github.com/classgrid/classgrid-backend/internal/model"
	"github.com/classgrid/classgrid-backend/internal/store"
	"github.com/classgrid/classgrid-backend/internal/undo"
)

// ClassService handles class business logic.
type ClassService struct {
	classes  *store.ClassStore
	entities *store.EntityStore
	undoLog  *undo.Log
	events   *EventService
	log      zerolog.Logger
}

// NewClassService creates a new ClassService.
func NewClassService(classes *store.ClassStore, entities *store.EntityStore, undoLog *undo.Log, events *EventService, log zerolog.Logger) *ClassService {
	return &ClassService{
		classes:  classes,
		entities: entities,
		undoLog:  undoLog,
		events:   events,
		log:      log.With().Str("component", "class_service").Logger(),
	}
}

// GetByID retrieves a class with memberships loaded.
func (s *ClassService) GetByID(ctx context.Context, id string) (*model.Class, error) {
	return s.classes.GetByID(ctx, id)
}

// ListByOrganization retrieves an organization's classes.
func (s *ClassService) ListByOrganization(ctx context.Context, orgID string) ([]model.Class, error) {
	return s.classes.ListByOrganization(ctx, orgID)
}

// Create issues the three role-channel codes and inserts the class. On a
// code collision at insert time the whole batch is regenerated; nothing
// from the failed batch is kept.
func (s *ClassService) Create(ctx context.Context, ownerID, orgID string, req model.CreateClassRequest) (*model.Class, error) {
	var lastErr error
	for attempt := 0; attempt <= createRetries; attempt++ {
		codes, err := joincode.GenerateClassCodeSet(ctx, s.classes.JoinCodeExists)
		if err != nil {
			return nil, fmt.Errorf("generate class codes: %w", err)
		}

		class := &model.Class{
			ID:              uuid.New().String(),
			Name:            req.Name,
			Description:     req.Description,
			Icon:            req.Icon,
			OwnerID:         ownerID,
			OrganizationID:  orgID,
			JoinCodeStudent: codes.Student,
			JoinCodeTeacher: codes.Teacher,
			JoinCodeParent:  codes.Parent,
		}
		err = s.classes.Create(ctx, class)
		if err == nil {
			s.undoLog.Register(ownerID, undo.Action{
				Type:       undo.ActionCreate,
				EntityType: "classes",
				EntityID:   class.ID,
			}, fmt.Sprintf("Class %q created", class.Name))

			s.events.Publish(ctx, Event{
				Kind:      model.AuditScopeCreated,
				SubjectID: ownerID,
				ScopeType: "class",
				ScopeID:   class.ID,
			})
			return class, nil
		}
		if !errors.Is(err, store.ErrUniqueViolation) {
			return nil, err
		}

		lastErr = err
		s.log.Warn().
			Int("attempt", attempt+1).
			Str("org_id", orgID).
			Msg("Class code batch collided at insert, regenerating")
	}
	return nil, fmt.Errorf("create class after %d retries: %w", createRetries, lastErr)
}

// Update replaces the class's editable fields, registering an undo that
// restores the previous values.
func (s *ClassService) Update(ctx context.Context, subjectID, classID string, req model.UpdateClassRequest) (*model.Class, error) {
	prev, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	err = s.entities.Update(ctx, "classes", classID, map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"icon":        req.Icon,
	})
	if err != nil {
		return nil, err
	}

	s.undoLog.Register(subjectID, undo.Action{
		Type:       undo.ActionUpdate,
		EntityType: "classes",
		EntityID:   classID,
		PreviousData: map[string]any{
			"name":        prev.Name,
			"description": prev.Description,
			"icon":        prev.Icon,
		},
	}, fmt.Sprintf("Class %q updated", req.Name))

	return s.classes.GetByID(ctx, classID)
}

// Delete snapshots the class, removes it, and registers an undo that
// restores it under its original id, join codes included.
func (s *ClassService) Delete(ctx context.Context, subjectID, classID string) error {
	snapshot, err := s.entities.Snapshot(ctx, "classes", classID)
	if err != nil {
		return err
	}
	name, _ := snapshot["name"].(string)

	if err := s.classes.Delete(ctx, classID); err != nil {
		return err
	}

	s.undoLog.Register(subjectID, undo.Action{
		Type:       undo.ActionDelete,
		EntityType: "classes",
		EntityID:   classID,
		Data:       snapshot,
	}, fmt.Sprintf("Class %q deleted", name))

	s.events.Publish(ctx, Event{
		Kind:      model.AuditScopeDeleted,
		SubjectID: subjectID,
		ScopeType: "class",
		ScopeID:   classID,
	})
	return nil
}

// ReissueJoinCodes replaces all three class codes with a fresh batch.
// The old codes stop working immediately; there is no undo for this,
// since restoring revoked codes would quietly re-grant access.
func (s *ClassService) ReissueJoinCodes(ctx context.Context, subjectID, classID string) (*model.Class, error) {
	var lastErr error
	for attempt := 0; attempt <= createRetries; attempt++ {
		codes, err := joincode.GenerateClassCodeSet(ctx, s.classes.JoinCodeExists)
		if err != nil {
			return nil, fmt.Errorf("generate class codes: %w", err)
		}

		err = s.classes.UpdateJoinCodes(ctx, classID, codes.Student, codes.Teacher, codes.Parent)
		if err == nil {
			s.events.Publish(ctx, Event{
				Kind:      model.AuditCodesReissued,
				SubjectID: subjectID,
				ScopeType: "class",
				ScopeID:   classID,
			})
			return s.classes.GetByID(ctx, classID)
		}
		if !errors.Is(err, store.ErrUniqueViolation) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("reissue class codes after %d retries: %w", createRetries, lastErr)
}

// RemoveMember unlinks a user from one of the class's role sets and
// registers the inverse link as the pending undo.
func (s *ClassService) RemoveMember(ctx context.Context, subjectID, classID, label, userID string) error {
	if err := s.entities.Unlink(ctx, "classes", classID, label, []string{userID}); err != nil {
		return err
	}

	s.undoLog.Register(subjectID, undo.Action{
		Type:       undo.ActionUnlink,
		EntityType: "classes",
		EntityID:   classID,
		LinkLabel:  label,
		TargetIDs:  []string{userID},
	}, fmt.Sprintf("Removed from %s", label))

	s.events.Publish(ctx, Event{
		Kind:      model.AuditLeftScope,
		SubjectID: userID,
		ScopeType: "class",
		ScopeID:   classID,
		Detail:    label,
	})
	return nil
}
