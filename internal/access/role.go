// Package access computes what a user is allowed to see inside a scope:
// their single effective role in an organization or class, and which
// user's data a view should be filtered to. Resolution is tri-state so
// callers can tell "still loading" apart from "confirmed no role" and
// never flash an access-denied state while memberships are in flight.
package access

// Role is the single highest-precedence relationship a subject has to a
// scope. Precedence, highest first: owner > admin > teacher > parent >
// student. Parent deliberately outranks student: a subject granted both
// must never be silently downgraded to student.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
	RoleNone    Role = ""
)

// ResolutionState distinguishes "not yet determined" from a determined
// role (including the determined absence RoleNone).
type ResolutionState int

const (
	ResolutionPending ResolutionState = iota
	ResolutionResolved
)

// Resolution is the tri-state outcome of role resolution.
type Resolution struct {
	State ResolutionState
	Role  Role
}

// Pending reports whether the role is still being determined.
func (r Resolution) Pending() bool { return r.State == ResolutionPending }

// IsOwnerOrAdmin reports whether the role carries scope administration
// rights.
func (r Role) IsOwnerOrAdmin() bool {
	return r == RoleOwner || r == RoleAdmin
}

// IsTeacherOrAbove reports whether the role is owner, admin or teacher.
func (r Role) IsTeacherOrAbove() bool {
	return r.IsOwnerOrAdmin() || r == RoleTeacher
}

// IsStudentOrParent reports whether the role is one of the two
// student-facing roles.
func (r Role) IsStudentOrParent() bool {
	return r == RoleStudent || r == RoleParent
}

func pending() Resolution {
	return Resolution{State: ResolutionPending}
}

func resolved(role Role) Resolution {
	return Resolution{State: ResolutionResolved, Role: role}
}
