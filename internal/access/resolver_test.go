package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classgrid/classgrid-backend/internal/model"
)

func members(ids ...string) []model.Member {
	ms := make([]model.Member, len(ids))
	for i, id := range ids {
		ms[i] = model.Member{ID: id}
	}
	return ms
}

func TestResolveRolePrecedence(t *testing.T) {
	scope := &Scope{
		OwnerID:  "owner-1",
		Admins:   members("admin-1", "both-1"),
		Teachers: members("teacher-1", "both-1"),
		Parents:  members("parent-1", "dual-1"),
		Students: members("student-1", "dual-1"),
	}

	tests := []struct {
		name    string
		subject string
		want    Role
	}{
		{"owner", "owner-1", RoleOwner},
		{"admin", "admin-1", RoleAdmin},
		{"admin outranks teacher", "both-1", RoleAdmin},
		{"teacher", "teacher-1", RoleTeacher},
		{"parent", "parent-1", RoleParent},
		{"parent outranks student", "dual-1", RoleParent},
		{"student", "student-1", RoleStudent},
		{"stranger", "stranger-1", RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveRole(tt.subject, scope)
			assert.Equal(t, ResolutionResolved, res.State)
			assert.Equal(t, tt.want, res.Role)
		})
	}
}

func TestResolveRoleOwnerOutranksEverything(t *testing.T) {
	scope := &Scope{
		OwnerID:  "u1",
		Admins:   members("u1"),
		Students: members("u1"),
	}

	res := ResolveRole("u1", scope)
	assert.Equal(t, RoleOwner, res.Role)
}

func TestResolveRoleNilScopeIsPending(t *testing.T) {
	res := ResolveRole("u1", nil)
	assert.True(t, res.Pending())

	// Not-yet-loaded outranks not-logged-in: no identity decision can be
	// made before the membership data exists.
	res = ResolveRole("", nil)
	assert.True(t, res.Pending())
}

func TestResolveRoleEmptySubject(t *testing.T) {
	scope := &Scope{OwnerID: "owner-1"}
	res := ResolveRole("", scope)
	assert.Equal(t, ResolutionResolved, res.State)
	assert.Equal(t, RoleNone, res.Role)
}

func TestResolveRoleIdempotent(t *testing.T) {
	scope := &Scope{OwnerID: "o", Parents: members("p")}
	first := ResolveRole("p", scope)
	second := ResolveRole("p", scope)
	assert.Equal(t, first, second)
}

func TestOrgScopeNil(t *testing.T) {
	assert.Nil(t, OrgScope(nil))
	assert.Nil(t, ClassScope(nil))
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, RoleOwner.IsOwnerOrAdmin())
	assert.True(t, RoleAdmin.IsOwnerOrAdmin())
	assert.False(t, RoleTeacher.IsOwnerOrAdmin())

	assert.True(t, RoleOwner.IsTeacherOrAbove())
	assert.True(t, RoleTeacher.IsTeacherOrAbove())
	assert.False(t, RoleParent.IsTeacherOrAbove())
	assert.False(t, RoleNone.IsTeacherOrAbove())

	assert.True(t, RoleStudent.IsStudentOrParent())
	assert.True(t, RoleParent.IsStudentOrParent())
	assert.False(t, RoleAdmin.IsStudentOrParent())
}
