package access

import (
	"github.com/classgrid/classgrid-backend/internal/model"
)

// Scope is an organization's or class's membership data, loaded from the
// store. A nil *Scope means the data has not arrived yet, which resolves
// to Pending rather than RoleNone.
type Scope struct {
	OwnerID  string
	Admins   []model.Member
	Teachers []model.Member
	Parents  []model.Member
	Students []model.Member
}

// OrgScope adapts an organization's membership sets for resolution.
func OrgScope(org *model.Organization) *Scope {
	if org == nil {
		return nil
	}
	return &Scope{
		OwnerID:  org.OwnerID,
		Admins:   org.Admins,
		Teachers: org.Teachers,
		Parents:  org.Parents,
		Students: org.Students,
	}
}

// ClassScope adapts a class's membership sets for resolution.
func ClassScope(class *model.Class) *Scope {
	if class == nil {
		return nil
	}
	return &Scope{
		OwnerID:  class.OwnerID,
		Admins:   class.Admins,
		Teachers: class.Teachers,
		Parents:  class.Parents,
		Students: class.Students,
	}
}

// ResolveRole computes the subject's single effective role in the scope.
// First match wins, in strict precedence order; roles are never
// aggregated. An empty subjectID resolves immediately to RoleNone
// (unauthenticated is a value, not an error); a nil scope means the
// membership data has not been loaded yet and resolves to Pending,
// never to RoleNone.
func ResolveRole(subjectID string, scope *Scope) Resolution {
	if scope == nil {
		return pending()
	}
	if subjectID == "" {
		return resolved(RoleNone)
	}

	if subjectID == scope.OwnerID {
		return resolved(RoleOwner)
	}
	if model.ContainsMember(scope.Admins, subjectID) {
		return resolved(RoleAdmin)
	}
	if model.ContainsMember(scope.Teachers, subjectID) {
		return resolved(RoleTeacher)
	}
	// Parent before student: a subject in both sets is a parent.
	if model.ContainsMember(scope.Parents, subjectID) {
		return resolved(RoleParent)
	}
	if model.ContainsMember(scope.Students, subjectID) {
		return resolved(RoleStudent)
	}

	return resolved(RoleNone)
}
