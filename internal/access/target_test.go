package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTargetUserPendingPropagates(t *testing.T) {
	target := ResolveTargetUser("u1", Resolution{State: ResolutionPending}, "", nil)
	assert.Equal(t, TargetPending, target.State)
	assert.True(t, target.Pending())
}

func TestResolveTargetUserStudentSeesSelf(t *testing.T) {
	target := ResolveTargetUser("student-1", resolved(RoleStudent), "", nil)
	assert.Equal(t, TargetUser, target.State)
	assert.Equal(t, "student-1", target.UserID)
}

func TestResolveTargetUserParentSelectedChild(t *testing.T) {
	children := members("child-1", "child-2")

	target := ResolveTargetUser("parent-1", resolved(RoleParent), "child-2", children)
	assert.Equal(t, TargetUser, target.State)
	assert.Equal(t, "child-2", target.UserID)
}

func TestResolveTargetUserParentForeignSelectionFallsBack(t *testing.T) {
	children := members("child-1", "child-2")

	// Selecting someone else's child falls back to the first own child
	// instead of leaking the foreign id.
	target := ResolveTargetUser("parent-1", resolved(RoleParent), "other-kid", children)
	assert.Equal(t, TargetUser, target.State)
	assert.Equal(t, "child-1", target.UserID)
}

func TestResolveTargetUserParentNoSelection(t *testing.T) {
	children := members("child-1", "child-2")

	target := ResolveTargetUser("parent-1", resolved(RoleParent), "", children)
	assert.Equal(t, TargetUser, target.State)
	assert.Equal(t, "child-1", target.UserID)
}

func TestResolveTargetUserParentWithoutChildren(t *testing.T) {
	target := ResolveTargetUser("parent-1", resolved(RoleParent), "", nil)
	assert.Equal(t, TargetNone, target.State)
	assert.Empty(t, target.UserID)
}

func TestResolveTargetUserStaffSeeAll(t *testing.T) {
	for _, role := range []Role{RoleTeacher, RoleAdmin, RoleOwner} {
		target := ResolveTargetUser("u1", resolved(role), "", nil)
		assert.Equal(t, TargetAll, target.State, "role %s", role)
	}
}

func TestResolveTargetUserNoneSeesAll(t *testing.T) {
	// Authorization is the guard's job; resolution itself does not
	// filter for a role-less subject.
	target := ResolveTargetUser("u1", resolved(RoleNone), "", nil)
	assert.Equal(t, TargetAll, target.State)
}
