package models

import "time"

// ApplicationStatus is a step of the review workflow
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusReviewed    ApplicationStatus = "reviewed"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusAccepted    ApplicationStatus = "accepted"
)

// ApplicationStatuses lists every application status in workflow order
var ApplicationStatuses = []ApplicationStatus{
	StatusPending,
	StatusReviewed,
	StatusShortlisted,
	StatusRejected,
	StatusAccepted,
}

// Valid reports whether s is a known application status
func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Withdrawable reports whether the applicant may still withdraw
func (s ApplicationStatus) Withdrawable() bool {
	return s == StatusPending || s == StatusReviewed
}

// Terminal reports whether no further review is expected
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusAccepted
}

// workflow is the intended review graph. Status updates are not checked
// against it; it backs ValidTransition for callers that want the strict view.
var workflow = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:     {StatusReviewed},
	StatusReviewed:    {StatusShortlisted, StatusRejected, StatusAccepted},
	StatusShortlisted: {StatusAccepted, StatusRejected},
}

// ValidTransition reports whether from -> to follows the review graph
func ValidTransition(from, to ApplicationStatus) bool {
	for _, next := range workflow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application represents a user's application to a job
type Application struct {
	ID                int64             `json:"id" db:"id"`
	JobID             int64             `json:"jobId" db:"job_id"`
	UserID            int64             `json:"userId" db:"user_id"`
	Status            ApplicationStatus `json:"status" db:"status"`
	CoverLetter       string            `json:"coverLetter,omitempty" db:"cover_letter"`
	Resume            string            `json:"resume,omitempty" db:"resume"`
	AppliedAt         time.Time         `json:"appliedAt" db:"applied_at"`
	ReviewedAt        *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ReviewedBy        *int64            `json:"reviewedBy,omitempty" db:"reviewed_by"`
	Notes             string            `json:"notes,omitempty" db:"notes"`
	InterviewDate     *time.Time        `json:"interviewDate,omitempty" db:"interview_date"`
	InterviewLocation string            `json:"interviewLocation,omitempty" db:"interview_location"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`

	Job       *JobSummary  `json:"job,omitempty" db:"-"`
	Applicant *UserSummary `json:"applicant,omitempty" db:"-"`
	Reviewer  *UserSummary `json:"reviewer,omitempty" db:"-"`
}
