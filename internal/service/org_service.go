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

// createRetries bounds how many times a create is restarted after the
// store rejects a join code the precheck missed. Each retry regenerates
// from scratch; the colliding code is never reinserted.
const createRetries = 3

// OrgService handles organization business logic.
type OrgService struct {
	orgs     *store.OrgStore
	classes  *store.ClassStore
	entities *store.EntityStore
	undoLog  *undo.Log
	events   *EventService
	log      zerolog.Logger
}

// NewOrgService creates a new OrgService.
func NewOrgService(orgs *store.OrgStore, classes *store.ClassStore, entities *store.EntityStore, undoLog *undo.Log, events *EventService, log zerolog.Logger) *OrgService {
	return &OrgService{
		orgs:     orgs,
		classes:  classes,
		entities: entities,
		undoLog:  undoLog,
		events:   events,
		log:      log.With().Str("component", "org_service").Logger(),
	}
}

// GetByID retrieves an organization with memberships loaded.
func (s *OrgService) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

// ListForUser retrieves the organizations visible to a user.
func (s *OrgService) ListForUser(ctx context.Context, userID string) ([]model.Organization, error) {
	return s.orgs.ListForUser(ctx, userID)
}

// Create issues a join code and inserts the organization. On a code
// collision at insert time the whole generate+insert cycle restarts.
func (s *OrgService) Create(ctx context.Context, ownerID string, req model.CreateOrgRequest) (*model.Organization, error) {
	var lastErr error
	for attempt := 0; attempt <= createRetries; attempt++ {
		code, err := joincode.GenerateUniqueAgainstStore(
			ctx, joincode.ServerCodeLength, nil, s.classes.JoinCodeExists, joincode.DefaultMaxAttempts)
		if err != nil {
			return nil, fmt.Errorf("generate org code: %w", err)
		}

		org := &model.Organization{
			ID:          uuid.New().String(),
			Name:        req.Name,
			Description: req.Description,
			Icon:        req.Icon,
			OwnerID:     ownerID,
			JoinCode:    code,
		}
		err = s.orgs.Create(ctx, org)
		if err == nil {
			s.undoLog.Register(ownerID, undo.Action{
				Type:       undo.ActionCreate,
				EntityType: "organizations",
				EntityID:   org.ID,
			}, fmt.Sprintf("Organization %q created", org.Name))

			s.events.Publish(ctx, Event{
				Kind:      model.AuditScopeCreated,
				SubjectID: ownerID,
				ScopeType: "organization",
				ScopeID:   org.ID,
			})
			return org, nil
		}
		if !errors.Is(err, store.ErrUniqueViolation) {
			return nil, err
		}

		lastErr = err
		s.log.Warn().
			Int("attempt", attempt+1).
			Str("owner_id", ownerID).
			Msg("Join code collided at insert, regenerating")
	}
	return nil, fmt.Errorf("create organization after %d retries: %w", createRetries, lastErr)
}

// Update replaces the organization's editable fields, registering an
// undo that restores the previous values.
func (s *OrgService) Update(ctx context.Context, subjectID, orgID string, req model.UpdateOrgRequest) (*model.Organization, error) {
	prev, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	err = s.entities.Update(ctx, "organizations", orgID, map[string]any{
		"name":        req.Name,
		"description": req.Description,
		"icon":        req.Icon,
	})
	if err != nil {
		return nil, err
	}

	s.undoLog.Register(subjectID, undo.Action{
		Type:       undo.ActionUpdate,
		EntityType: "organizations",
		EntityID:   orgID,
		PreviousData: map[string]any{
			"name":        prev.Name,
			"description": prev.Description,
			"icon":        prev.Icon,
		},
	}, fmt.Sprintf("Organization %q updated", req.Name))

	return s.orgs.GetByID(ctx, orgID)
}

// Delete snapshots the organization, removes it, and registers an undo
// that restores it under its original id. Classes cascade at the store
// and are not restorable.
func (s *OrgService) Delete(ctx context.Context, subjectID, orgID string) error {
	snapshot, err := s.entities.Snapshot(ctx, "organizations", orgID)
	if err != nil {
		return err
	}
	name, _ := snapshot["name"].(string)

	if err := s.orgs.Delete(ctx, orgID); err != nil {
		return err
	}

	s.undoLog.Register(subjectID, undo.Action{
		Type:       undo.ActionDelete,
		EntityType: "organizations",
		EntityID:   orgID,
		Data:       snapshot,
	}, fmt.Sprintf("Organization %q deleted", name))

	s.events.Publish(ctx, Event{
		Kind:      model.AuditScopeDeleted,
		SubjectID: subjectID,
		ScopeType: "organization",
		ScopeID:   orgID,
	})
	return nil
}

// GrantRole links a user into one of the organization's role sets and
// registers the inverse unlink as the pending undo.
func (s *OrgService) GrantRole(ctx context.Context, subjectID, orgID, label, userID string) error {
	if err := s.entities.Link(ctx, "organizations", orgID, label, []string{userID}); err != nil {
		return err
	}

	s.undoLog.Register(subjectID, undo.Action{
		Type:       undo.ActionLink,
		EntityType: "organizations",
		EntityID:   orgID,
		LinkLabel:  label,
		TargetIDs:  []string{userID},
	}, fmt.Sprintf("Added to %s", label))

	s.events.Publish(ctx, Event{
		Kind:      model.AuditRoleGranted,
		SubjectID: userID,
		ScopeType: "organization",
		ScopeID:   orgID,
		Detail:    label,
	})
	return nil
}

// RevokeRole unlinks a user from one of the organization's role sets and
// registers the inverse link as the pending undo.
func (s *OrgService) RevokeRole(ctx context.Context, subjectID, orgID, label, userID string) error {
	if err := s.entities.Unlink(ctx, "organizations", orgID, label, []string{userID}); err != nil {
		return err
	}

	s.undoLog.Register(subjectID, undo.Action{
		Type:       undo.ActionUnlink,
		EntityType: "organizations",
		EntityID:   orgID,
		LinkLabel:  label,
		TargetIDs:  []string{userID},
	}, fmt.Sprintf("Removed from %s", label))

	s.events.Publish(ctx, Event{
		Kind:      model.AuditRoleRevoked,
		SubjectID: userID,
		ScopeType: "organization",
		ScopeID:   orgID,
		Detail:    label,
	})
	return nil
}
