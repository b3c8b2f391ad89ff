package handler

import (
	"time"

	"credgate/internal/accessrequest/models"
)

// RequestResponse is the wire representation of an access request.
type RequestResponse struct {
	ID                  string     `json:"id"`
	EmployerID          string     `json:"employer_id"`
	EmployerName        string     `json:"employer_name"`
	StudentEnrollmentID string     `json:"student_enrollment_id"`
	StudentName         string     `json:"student_name"`
	Status              string     `json:"status"`
	Purpose             string     `json:"purpose"`
	RequestedFields     []string   `json:"requested_fields"`
	ApprovedFields      []string   `json:"approved_fields"`
	RequestedAt         time.Time  `json:"requested_at"`
	DecidedAt           *time.Time `json:"decided_at,omitempty"`
}

func toRequestResponse(r *models.AccessRequest) *RequestResponse {
	return &RequestResponse{
		ID:                  r.ID,
		EmployerID:          r.EmployerID,
		EmployerName:        r.EmployerName,
		StudentEnrollmentID: r.StudentEnrollmentID,
		StudentName:         r.StudentName,
		Status:              string(r.Status),
		Purpose:             r.Purpose,
		RequestedFields:     fieldNames(r.RequestedFields),
		ApprovedFields:      fieldNames(r.ApprovedFields),
		RequestedAt:         r.RequestedAt,
		DecidedAt:           r.DecidedAt,
	}
}

func fieldNames(fields []models.Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, string(f))
	}
	return names
}

// ListResponse wraps a collection of access requests.
type ListResponse struct {
	Requests []*RequestResponse `json:"requests"`
}

func toListResponse(requests []*models.AccessRequest) ListResponse {
	resp := ListResponse{Requests: make([]*RequestResponse, 0, len(requests))}
	for _, r := range requests {
		resp.Requests = append(resp.Requests, toRequestResponse(r))
	}
	return resp
}

// DecisionResponse reports the outcome of an approve or reject call. Request
// is nil when the call was a no-op on an unknown or already-decided request.
type DecisionResponse struct {
	Request *RequestResponse `json:"request,omitempty"`
	Applied bool             `json:"applied"`
}
