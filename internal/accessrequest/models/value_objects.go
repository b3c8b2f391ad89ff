package models

// Field is a named disclosure category that can be independently approved or
// withheld. Fields are opaque labels; the credential renderer owns their
// interpretation.
type Field string

// Disclosure categories offered by default when an employer does not narrow
// the request.
const (
	FieldContactInformation Field = "Contact Information"
	FieldPersonalDetails    Field = "Personal Details"
	FieldAcademicSummary    Field = "Academic Summary & Division"
	FieldSubjectScores      Field = "Detailed Subject Scores"
)

// DefaultPurpose is used when an employer omits the justification text.
const DefaultPurpose = "Background Check"

// DefaultRequestedFields returns the fixed four-category set used when a
// request omits requestedFields.
func DefaultRequestedFields() []Field {
	return []Field{
		FieldContactInformation,
		FieldPersonalDetails,
		FieldAcademicSummary,
		FieldSubjectScores,
	}
}

// Status represents the lifecycle state of an access request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IntersectFields returns the supplied fields restricted to the requested set,
// deduplicated, preserving the supplied order. Fields outside the requested
// set are dropped silently: disclosure never escalates beyond what was asked.
func IntersectFields(requested, supplied []Field) []Field {
	allowed := make(map[Field]struct{}, len(requested))
	for _, f := range requested {
		allowed[f] = struct{}{}
	}
	seen := make(map[Field]struct{}, len(supplied))
	result := make([]Field, 0, len(supplied))
	for _, f := range supplied {
		if _, ok := allowed[f]; !ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		result = append(result, f)
	}
	return result
}
