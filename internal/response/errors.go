package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Sessions ──────────────────────────────────────────────────────
	ErrSessionAlreadyActive  ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionNotActive      ErrCode = "SESSION_NOT_ACTIVE"
	ErrSessionNotCompleted   ErrCode = "SESSION_NOT_COMPLETED"
	ErrQuestionNotInSession  ErrCode = "QUESTION_NOT_IN_SESSION"
	ErrGradingUnavailable    ErrCode = "GRADING_UNAVAILABLE"
	ErrGradingResultPending  ErrCode = "GRADING_RESULT_PENDING"

	// ─── Exams ─────────────────────────────────────────────────────────
	ErrExamNotAvailable ErrCode = "EXAM_NOT_AVAILABLE"
	ErrExamNotDraft     ErrCode = "EXAM_NOT_DRAFT"
	ErrExamNotPublished ErrCode = "EXAM_NOT_PUBLISHED"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The requested resource was not found."

	// ─── Sessions ──────────────────────────────────────────────────────
	case ErrSessionAlreadyActive:
		return "A session for this exam is already in progress. Resume it instead of starting a new one."
	case ErrSessionNotActive:
		return "This session is not in progress."
	case ErrSessionNotCompleted:
		return "This session has not been completed yet."
	case ErrQuestionNotInSession:
		return "The question does not belong to this session."
	case ErrGradingUnavailable:
		return "The session was completed but grading is still pending. Fetch the result again shortly."
	case ErrGradingResultPending:
		return "The grading result is not available yet. Try again shortly."

	// ─── Exams ─────────────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "This exam is currently not available."
	case ErrExamNotDraft:
		return "This exam is not in DRAFT status."
	case ErrExamNotPublished:
		return "This exam has not been published."
	case ErrNoQuestions:
		return "This exam has no questions."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
