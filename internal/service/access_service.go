package service

import (
	"context"
	"errors"

	"github.com/classgrid/classgrid-backend/internal/access"
	"github.com/classgrid/classgrid-backend/internal/model"
	"github.com/classgrid/classgrid-backend/internal/store"
)

// AccessService loads membership data and runs role/target resolution
// over it. It holds no state of its own; every call re-reads and
// re-resolves so a membership or child-selection change is reflected on
// the next request.
type AccessService struct {
	orgs    *store.OrgStore
	classes *store.ClassStore
	users   *store.UserStore
}

// NewAccessService creates a new AccessService.
func NewAccessService(orgs *store.OrgStore, classes *store.ClassStore, users *store.UserStore) *AccessService {
	return &AccessService{orgs: orgs, classes: classes, users: users}
}

// ScopeAccess bundles a subject's effective role in a scope with the
// target user their views should be filtered to.
type ScopeAccess struct {
	Role   access.Resolution
	Target access.Target
}

// ResolveOrg computes the subject's role and target user for an
// organization. A missing organization is store.ErrNotFound — confirmed
// absent, which is different from the Pending state the resolvers report
// for not-yet-loaded data.
func (s *AccessService) ResolveOrg(ctx context.Context, subjectID, orgID, selectedChildID string) (ScopeAccess, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return ScopeAccess{}, err
	}
	return s.resolve(ctx, subjectID, access.OrgScope(org), selectedChildID)
}

// ResolveClass computes the subject's role and target user for a class.
func (s *AccessService) ResolveClass(ctx context.Context, subjectID, classID, selectedChildID string) (ScopeAccess, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return ScopeAccess{}, err
	}
	return s.resolve(ctx, subjectID, access.ClassScope(class), selectedChildID)
}

func (s *AccessService) resolve(ctx context.Context, subjectID string, scope *access.Scope, selectedChildID string) (ScopeAccess, error) {
	res := access.ResolveRole(subjectID, scope)

	// Children are only consulted for parents; skipping the query for
	// everyone else keeps the common path to one read.
	var children []model.Member
	if res.State == access.ResolutionResolved && res.Role == access.RoleParent {
		var err error
		children, err = s.users.Children(ctx, subjectID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return ScopeAccess{}, err
		}
	}

	return ScopeAccess{
		Role:   res,
		Target: access.ResolveTargetUser(subjectID, res, selectedChildID, children),
	}, nil
}
