package model

import "time"

// Organization is a membership scope grouping classes and people.
// Exactly one owner, set at creation and never reassigned. Membership
// sets are unordered and a user may appear in more than one of them;
// the access package collapses that into a single effective role.
type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	OwnerID     string `json:"owner_id"`
	// JoinCode is the single general-entry code for the organization.
	JoinCode string `json:"join_code,omitempty"`

	Admins   []Member `json:"admins"`
	Teachers []Member `json:"teachers"`
	Students []Member `json:"students"`
	Parents  []Member `json:"parents"`
	// Members is the flat roster of everyone who joined via code,
	// independent of role grants.
	Members []Member `json:"members"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateOrgRequest is the payload for creating an organization.
type CreateOrgRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon" binding:"max=255"`
}

// UpdateOrgRequest is the payload for updating an organization.
type UpdateOrgRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon" binding:"max=255"`
}
