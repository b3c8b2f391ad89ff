package handler

import (
	"credgate/internal/accessrequest/models"
	s "credgate/pkg/string"
)

// SendRequest is the body for POST /requests. The employer identity comes from
// the session principal; employer_id may be supplied but must match it.
type SendRequest struct {
	EmployerID          string   `json:"employer_id" validate:"omitempty,max=128"`
	EmployerName        string   `json:"employer_name" validate:"omitempty,max=200"`
	StudentEnrollmentID string   `json:"student_enrollment_id" validate:"required,notblank,max=128"`
	StudentName         string   `json:"student_name" validate:"omitempty,max=200"`
	Purpose             string   `json:"purpose" validate:"omitempty,max=500"`
	RequestedFields     []string `json:"requested_fields" validate:"omitempty,max=32,dive,notblank,max=100"`
}

// Normalize trims whitespace from all request fields.
func (req *SendRequest) Normalize() {
	s.TrimStrings(
		&req.EmployerID,
		&req.EmployerName,
		&req.StudentEnrollmentID,
		&req.StudentName,
		&req.Purpose,
	)
	req.RequestedFields = s.TrimSlice(req.RequestedFields)
}

// Fields converts the raw requested field names to domain fields.
func (req *SendRequest) Fields() []models.Field {
	if len(req.RequestedFields) == 0 {
		return nil
	}
	fields := make([]models.Field, 0, len(req.RequestedFields))
	for _, f := range req.RequestedFields {
		fields = append(fields, models.Field(f))
	}
	return fields
}

// ApproveRequest is the body for POST /requests/{id}/approve. An empty or
// omitted approved_fields grants everything that was requested.
type ApproveRequest struct {
	ApprovedFields []string `json:"approved_fields" validate:"omitempty,max=32,dive,notblank,max=100"`
}

// Normalize trims whitespace from the supplied field names.
func (req *ApproveRequest) Normalize() {
	req.ApprovedFields = s.TrimSlice(req.ApprovedFields)
}

// Fields converts the raw approved field names to domain fields.
func (req *ApproveRequest) Fields() []models.Field {
	if len(req.ApprovedFields) == 0 {
		return nil
	}
	fields := make([]models.Field, 0, len(req.ApprovedFields))
	for _, f := range req.ApprovedFields {
		fields = append(fields, models.Field(f))
	}
	return fields
}
