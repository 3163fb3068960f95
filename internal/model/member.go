package model

import (
	"encoding/json"
	"fmt"
)

// Member is one entry of a membership relation. Historical rows store
// membership arrays either as bare id strings or as objects carrying an
// "id" field; both decode to the same Member so role checks never have
// to care which shape the row used.
type Member struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// UnmarshalJSON accepts either "user-id" or {"id": "user-id", ...}.
func (m *Member) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		m.ID = id
		m.Email = ""
		return nil
	}

	type alias Member
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("member entry is neither id string nor object: %w", err)
	}
	*m = Member(obj)
	return nil
}

// MemberIDs extracts the id of every entry in a membership set.
func MemberIDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

// ContainsMember reports whether subjectID appears in the membership set.
func ContainsMember(members []Member, subjectID string) bool {
	for _, m := range members {
		if m.ID == subjectID {
			return true
		}
	}
	return false
}
