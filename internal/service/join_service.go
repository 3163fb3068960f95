package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/classgrid/classgrid-backend/internal/model"
	"github.com/classgrid/classgrid-backend/internal/store"
)

// Join errors surfaced to the handler layer.
var (
	ErrCodeNotFound  = errors.New("join code not found")
	ErrAlreadyMember = errors.New("already a member")
	ErrNoStudents    = errors.New("no students selected")
)

// CodeKind classifies which entry channel a join code opens.
type CodeKind string

const (
	CodeOrganization CodeKind = "organization"
	CodeClassStudent CodeKind = "classStudent"
	CodeClassTeacher CodeKind = "classTeacher"
	CodeClassParent  CodeKind = "classParent"
)

// CodeLookup is the result of classifying a join code.
type CodeLookup struct {
	Kind           CodeKind `json:"kind"`
	EntityID       string   `json:"entity_id"`
	EntityName     string   `json:"entity_name"`
	OrganizationID string   `json:"organization_id,omitempty"`
	ClassID        string   `json:"class_id,omitempty"`
}

// JoinService handles code lookup and membership entry.
type JoinService struct {
	orgs     *store.OrgStore
	classes  *store.ClassStore
	entities *store.EntityStore
	events   *EventService
	log      zerolog.Logger
}

// NewJoinService creates a new JoinService.
func NewJoinService(orgs *store.OrgStore, classes *store.ClassStore, entities *store.EntityStore, events *EventService, log zerolog.Logger) *JoinService {
	return &JoinService{
		orgs:     orgs,
		classes:  classes,
		entities: entities,
		events:   events,
		log:      log.With().Str("component", "join_service").Logger(),
	}
}

// LookupCode classifies a join code: the org channel first, then the
// three class channels.
func (s *JoinService) LookupCode(ctx context.Context, code string) (*CodeLookup, error) {
	org, err := s.orgs.GetByJoinCode(ctx, code)
	if err == nil {
		return &CodeLookup{
			Kind:       CodeOrganization,
			EntityID:   org.ID,
			EntityName: org.Name,
		}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	class, err := s.classes.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	kind := CodeClassParent
	switch code {
	case class.JoinCodeStudent:
		kind = CodeClassStudent
	case class.JoinCodeTeacher:
		kind = CodeClassTeacher
	}

	return &CodeLookup{
		Kind:           kind,
		EntityID:       class.ID,
		EntityName:     class.Name,
		OrganizationID: class.OrganizationID,
		ClassID:        class.ID,
	}, nil
}

// JoinOrganization links the user into the organization's flat roster.
func (s *JoinService) JoinOrganization(ctx context.Context, userID, orgID string) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if model.ContainsMember(org.Members, userID) {
		return ErrAlreadyMember
	}

	if err := s.entities.Link(ctx, "organizations", orgID, "members", []string{userID}); err != nil {
		return err
	}

	s.events.Publish(ctx, Event{
		Kind:      model.AuditJoinedOrg,
		SubjectID: userID,
		ScopeType: "organization",
		ScopeID:   orgID,
	})
	return nil
}

// JoinClassAsStudent links the user into the class's student set.
func (s *JoinService) JoinClassAsStudent(ctx context.Context, userID, classID string) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if model.ContainsMember(class.Students, userID) {
		return nil, ErrAlreadyMember
	}

	if err := s.entities.Link(ctx, "classes", classID, "students", []string{userID}); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, Event{
		Kind:      model.AuditJoinedClass,
		SubjectID: userID,
		ScopeType: "class",
		ScopeID:   classID,
		Detail:    "students",
	})
	return class, nil
}

// JoinClassAsTeacher links the user into the class's teacher set.
func (s *JoinService) JoinClassAsTeacher(ctx context.Context, userID, classID string) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if model.ContainsMember(class.Teachers, userID) {
		return nil, ErrAlreadyMember
	}

	if err := s.entities.Link(ctx, "classes", classID, "teachers", []string{userID}); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, Event{
		Kind:      model.AuditJoinedClass,
		SubjectID: userID,
		ScopeType: "class",
		ScopeID:   classID,
		Detail:    "teachers",
	})
	return class, nil
}

// ClassStudents lists a class's students for parent child-selection.
func (s *JoinService) ClassStudents(ctx context.Context, classID string) ([]model.Member, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	return class.Students, nil
}

// JoinClassAsParent links the user into the class's parent set and links
// each selected student as their child. Joining again with more students
// only adds the new child links.
func (s *JoinService) JoinClassAsParent(ctx context.Context, userID, classID string, studentIDs []string) (*model.Class, error) {
	if len(studentIDs) == 0 {
		return nil, ErrNoStudents
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}

	if !model.ContainsMember(class.Parents, userID) {
		if err := s.entities.Link(ctx, "classes", classID, "parents", []string{userID}); err != nil {
			return nil, err
		}
	}
	if err := s.entities.Link(ctx, "users", userID, "children", studentIDs); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, Event{
		Kind:      model.AuditJoinedClass,
		SubjectID: userID,
		ScopeType: "class",
		ScopeID:   classID,
		Detail:    "parents",
	})
	return class, nil
}
