package model

import "time"

// AuditEvent records a membership or undo mutation for later review.
// Events are queued in Redis and batch-persisted by the audit worker.
type AuditEvent struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	SubjectID string    `json:"subject_id"`
	ScopeType string    `json:"scope_type"`
	ScopeID   string    `json:"scope_id"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Audit event kinds.
const (
	AuditJoinedOrg     = "joined_org"
	AuditJoinedClass   = "joined_class"
	AuditLeftScope     = "left_scope"
	AuditRoleGranted   = "role_granted"
	AuditRoleRevoked   = "role_revoked"
	AuditUndoApplied   = "undo_applied"
	AuditUndoFailed    = "undo_failed"
	AuditScopeCreated  = "scope_created"
	AuditScopeDeleted  = "scope_deleted"
	AuditCodesReissued = "codes_reissued"
)
