package models

import (
	"time"

	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
)

// AccessRequest is an employer's ask to view specific fields of a student's
// credential. It is the single authoritative entity of the workflow.
//
// # Lifecycle Invariants
//
//   - ApprovedFields is ALWAYS a subset of RequestedFields.
//   - While Status is pending, ApprovedFields is empty.
//   - Status transitions one-way: pending -> approved or pending -> rejected.
//     A terminal request never re-enters pending.
//   - IDs are never reused; deletion is not supported. A decided request
//     persists indefinitely as an immutable audit record.
//
// Identity, purpose, requested fields, and the creation timestamp are
// immutable after creation. Only Status, ApprovedFields, and DecidedAt change,
// exactly once, through Approve or Reject.
type AccessRequest struct {
	ID                  string     `json:"id"`
	EmployerID          string     `json:"employer_id"`
	EmployerName        string     `json:"employer_name"`
	StudentEnrollmentID string     `json:"student_enrollment_id"`
	StudentName         string     `json:"student_name"`
	Status              Status     `json:"status"`
	Purpose             string     `json:"purpose"`
	RequestedFields     []Field    `json:"requested_fields"`
	ApprovedFields      []Field    `json:"approved_fields"`
	RequestedAt         time.Time  `json:"requested_at"`
	DecidedAt           *time.Time `json:"decided_at,omitempty"`
}

// NewAccessRequest creates a pending AccessRequest with domain invariant checks.
// Purpose and requestedFields fall back to workflow defaults when omitted.
func NewAccessRequest(employerID, employerName, enrollmentID, studentName, purpose string, requestedFields []Field) (*AccessRequest, error) {
	if employerID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "employer id required")
	}
	if enrollmentID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "student enrollment id required")
	}
	if purpose == "" {
		purpose = DefaultPurpose
	}
	if len(requestedFields) == 0 {
		requestedFields = DefaultRequestedFields()
	}
	return &AccessRequest{
		EmployerID:          employerID,
		EmployerName:        employerName,
		StudentEnrollmentID: enrollmentID,
		StudentName:         studentName,
		Status:              StatusPending,
		Purpose:             purpose,
		RequestedFields:     requestedFields,
		ApprovedFields:      []Field{},
	}, nil
}

// IsPending reports whether the request still awaits a student decision.
func (r *AccessRequest) IsPending() bool {
	return r.Status == StatusPending
}

// Approve transitions the request to approved, releasing the supplied fields.
// An empty fields argument grants everything requested. Fields outside the
// requested set are dropped, never released.
func (r *AccessRequest) Approve(fields []Field, at time.Time) error {
	if r.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidTransition, "request already "+string(r.Status))
	}
	if len(fields) == 0 {
		fields = r.RequestedFields
	}
	r.ApprovedFields = IntersectFields(r.RequestedFields, fields)
	r.Status = StatusApproved
	r.DecidedAt = &at
	return nil
}

// Reject transitions the request to rejected. ApprovedFields stays empty.
func (r *AccessRequest) Reject(at time.Time) error {
	if r.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidTransition, "request already "+string(r.Status))
	}
	r.Status = StatusRejected
	r.DecidedAt = &at
	return nil
}

// Clone returns a deep copy so stores can hand out records without exposing
// internal state to mutation.
func (r *AccessRequest) Clone() *AccessRequest {
	clone := *r
	clone.RequestedFields = append([]Field{}, r.RequestedFields...)
	clone.ApprovedFields = append([]Field{}, r.ApprovedFields...)
	if r.DecidedAt != nil {
		decidedAt := *r.DecidedAt
		clone.DecidedAt = &decidedAt
	}
	return &clone
}

// Actor is the authenticated identity a workflow operation runs as. The
// lifecycle engine verifies each operation against it independently of the
// transport layer.
type Actor struct {
	ID   string
	Name string
	Role domain.Role
}
