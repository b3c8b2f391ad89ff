package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	ActorID   string
	ActorRole string
	RequestID string
	Subject   string
	Action    string
	Decision  string
	Reason    string
}

// Audit event actions.
const (
	ActionRequestCreated   = "request_created"
	ActionRequestApproved  = "request_approved"
	ActionRequestRejected  = "request_rejected"
	ActionTransitionDenied = "transition_denied"
)

// Audit event decisions.
const (
	DecisionCreated  = "created"
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
	DecisionDenied   = "denied"
)

// Audit event reasons.
const (
	ReasonEmployerInitiated = "employer_initiated"
	ReasonStudentInitiated  = "student_initiated"
	ReasonTerminalState     = "terminal_state"
	ReasonUnknownRequest    = "unknown_request"
)
