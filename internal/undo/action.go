// Package undo keeps, per user, the inverse of their last mutating action
// and can replay it within a short window. The slot is deliberately not a
// stack: registering a new action discards the previous one so there is
// never more than one "Undo" affordance alive.
package undo

// ActionType tags what kind of mutation an Action reverses.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
	ActionLink   ActionType = "link"
	ActionUnlink ActionType = "unlink"
)

// Action records exactly enough state to reverse one mutation.
//
//   - Create: EntityType + EntityID (inverse deletes it)
//   - Delete: Data is the full snapshot captured at delete time; the
//     inverse re-creates the entity under the same id
//   - Update: PreviousData is the full pre-update field snapshot, not a
//     diff
//   - Link/Unlink: LinkLabel + TargetIDs (inverse detaches/re-attaches)
type Action struct {
	Type       ActionType `json:"type"`
	EntityType string     `json:"entity_type"`
	EntityID   string     `json:"entity_id"`

	Data         map[string]any `json:"data,omitempty"`
	PreviousData map[string]any `json:"previous_data,omitempty"`

	LinkLabel string   `json:"link_label,omitempty"`
	TargetIDs []string `json:"target_ids,omitempty"`
}
