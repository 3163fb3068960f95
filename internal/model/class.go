package model

import "time"

// Class is a membership scope inside an organization. Each class carries
// three role-channel join codes; all three share one global uniqueness
// space with organization codes.
type Class struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Icon           string `json:"icon,omitempty"`
	OwnerID        string `json:"owner_id"`
	OrganizationID string `json:"organization_id"`

	JoinCodeStudent string `json:"join_code_student,omitempty"`
	JoinCodeTeacher string `json:"join_code_teacher,omitempty"`
	JoinCodeParent  string `json:"join_code_parent,omitempty"`

	Admins   []Member `json:"admins"`
	Teachers []Member `json:"teachers"`
	Students []Member `json:"students"`
	Parents  []Member `json:"parents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon" binding:"max=255"`
}

// UpdateClassRequest is the payload for updating a class.
type UpdateClassRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=500"`
	Icon        string `json:"icon" binding:"max=255"`
}
