// Package notification derives per-role notification feeds from the access
// request collection. Projection is pure: it holds no mutable state, never
// writes, and is safe to call at arbitrarily high frequency.
package notification

import (
	"sort"
	"time"

	"credgate/internal/accessrequest/models"
)

// Kind distinguishes what a notification asks of its recipient.
type Kind string

const (
	// KindPendingRequest prompts a student to decide a disclosure request.
	KindPendingRequest Kind = "pending_request"
	// KindRequestUpdate informs an employer that a request was decided.
	KindRequestUpdate Kind = "request_update"
)

// Notification is a read-only projection of a single access request tailored
// to the viewing role.
type Notification struct {
	Kind            Kind           `json:"kind"`
	RequestID       string         `json:"request_id"`
	EmployerName    string         `json:"employer_name"`
	StudentName     string         `json:"student_name"`
	Status          models.Status  `json:"status"`
	Purpose         string         `json:"purpose"`
	RequestedFields []models.Field `json:"requested_fields"`
	ApprovedFields  []models.Field `json:"approved_fields,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// FeedForStudent projects the pending requests addressed to the given student,
// most recent first.
func FeedForStudent(requests []*models.AccessRequest, enrollmentID string) []Notification {
	var feed []Notification
	for _, r := range requests {
		if !r.IsPending() || r.StudentEnrollmentID != enrollmentID {
			continue
		}
		feed = append(feed, Notification{
			Kind:            KindPendingRequest,
			RequestID:       r.ID,
			EmployerName:    r.EmployerName,
			StudentName:     r.StudentName,
			Status:          r.Status,
			Purpose:         r.Purpose,
			RequestedFields: append([]models.Field{}, r.RequestedFields...),
			Timestamp:       r.RequestedAt,
		})
	}
	sortFeed(feed)
	return feed
}

// FeedForEmployer projects the decided requests belonging to the given
// employer, most recent first.
func FeedForEmployer(requests []*models.AccessRequest, employerID string) []Notification {
	var feed []Notification
	for _, r := range requests {
		if r.IsPending() || r.EmployerID != employerID {
			continue
		}
		feed = append(feed, Notification{
			Kind:            KindRequestUpdate,
			RequestID:       r.ID,
			EmployerName:    r.EmployerName,
			StudentName:     r.StudentName,
			Status:          r.Status,
			Purpose:         r.Purpose,
			RequestedFields: append([]models.Field{}, r.RequestedFields...),
			ApprovedFields:  append([]models.Field{}, r.ApprovedFields...),
			Timestamp:       r.RequestedAt,
		})
	}
	sortFeed(feed)
	return feed
}

// sortFeed orders notifications by timestamp descending. The sort is stable:
// ties keep insertion order.
func sortFeed(feed []Notification) {
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
}
