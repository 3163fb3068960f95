package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrRolePending    ErrCode = "ROLE_PENDING"
	ErrOwnerOnly      ErrCode = "OWNER_ONLY"
	ErrTeacherOrAbove ErrCode = "TEACHER_OR_ABOVE_ONLY"
	ErrAdminOrAbove   ErrCode = "ADMIN_OR_ABOVE_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Join codes ────────────────────────────────────────────────────
	ErrCodeNotFound     ErrCode = "JOIN_CODE_NOT_FOUND"
	ErrAlreadyMember    ErrCode = "ALREADY_MEMBER"
	ErrNoStudentsChosen ErrCode = "NO_STUDENTS_SELECTED"
	ErrCodeGeneration   ErrCode = "CODE_GENERATION_FAILED"

	// ─── Undo ──────────────────────────────────────────────────────────
	ErrNothingToUndo ErrCode = "NOTHING_TO_UNDO"
	ErrUndoFailed    ErrCode = "UNDO_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrRolePending:
		return "Your role in this scope is still being determined."
	case ErrOwnerOnly:
		return "Only the owner can do this."
	case ErrTeacherOrAbove:
		return "This action requires a teacher, admin or owner role."
	case ErrAdminOrAbove:
		return "This action requires an admin or owner role."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Join codes ────────────────────────────────────────────────────
	case ErrCodeNotFound:
		return "Join code not found."
	case ErrAlreadyMember:
		return "You are already a member."
	case ErrNoStudentsChosen:
		return "Please select at least one student."
	case ErrCodeGeneration:
		return "Could not generate a unique join code. Please try again."

	// ─── Undo ──────────────────────────────────────────────────────────
	case ErrNothingToUndo:
		return "There is nothing to undo."
	case ErrUndoFailed:
		return "The action could not be undone."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
