package access

import (
	"github.com/classgrid/classgrid-backend/internal/model"
)

// TargetState says how a view should scope its data.
type TargetState int

const (
	// TargetPending propagates an unresolved role or an in-flight
	// children query; callers must not guess.
	TargetPending TargetState = iota
	// TargetAll means no per-user filtering (teachers, admins, owners
	// — and subjects with no role, whose access was denied upstream).
	TargetAll
	// TargetUser filters to Target.UserID.
	TargetUser
	// TargetNone is a parent with no linked children: there is no data
	// to scope to and the caller renders an empty state, not an error.
	TargetNone
)

// Target is the tri-state-plus-empty outcome of target resolution.
type Target struct {
	State  TargetState
	UserID string
}

// Pending reports whether the target is still being determined.
func (t Target) Pending() bool { return t.State == TargetPending }

// ResolveTargetUser computes whose data a view should be filtered to.
// Pure function of its inputs; it must be re-evaluated whenever the role,
// selected child or children list changes.
//
//   - students see their own data
//   - parents see the selected child if it is actually theirs, falling
//     back to their first child; no children means nothing to show
//   - teachers and above see everything
//
// Authorization is not enforced here: a RoleNone subject also resolves to
// TargetAll, on the assumption that access was already denied upstream.
func ResolveTargetUser(subjectID string, res Resolution, selectedChildID string, children []model.Member) Target {
	if res.Pending() {
		return Target{State: TargetPending}
	}

	switch res.Role {
	case RoleStudent:
		return Target{State: TargetUser, UserID: subjectID}

	case RoleParent:
		if selectedChildID != "" && model.ContainsMember(children, selectedChildID) {
			return Target{State: TargetUser, UserID: selectedChildID}
		}
		if len(children) > 0 {
			return Target{State: TargetUser, UserID: children[0].ID}
		}
		return Target{State: TargetNone}

	default:
		return Target{State: TargetAll}
	}
}
