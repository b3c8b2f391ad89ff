package service

import "credgate/internal/accessrequest/models"

// SendRequestCommand carries the employer's disclosure ask. Purpose and
// RequestedFields are optional; workflow defaults apply when omitted.
type SendRequestCommand struct {
	EmployerID          string
	EmployerName        string
	StudentEnrollmentID string
	StudentName         string
	Purpose             string
	RequestedFields     []models.Field
}
