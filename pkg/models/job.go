package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JobType is the employment type of a posting
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

// JobTypes lists every job type in display order
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeRemote}

// Valid reports whether t is a known job type
func (t JobType) Valid() bool {
	for _, v := range JobTypes {
		if v == t {
			return true
		}
	}
	return false
}

// JobStatus controls whether a posting accepts applications
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusInactive JobStatus = "inactive"
	JobStatusClosed   JobStatus = "closed"
)

// JobStatuses lists every job status
var JobStatuses = []JobStatus{JobStatusActive, JobStatusInactive, JobStatusClosed}

// Valid reports whether s is a known job status
func (s JobStatus) Valid() bool {
	for _, v := range JobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Job represents a job posting
type Job struct {
	ID                  int64        `json:"id" db:"id"`
	Title               string       `json:"title" db:"title"`
	Company             string       `json:"company" db:"company"`
	Location            string       `json:"location" db:"location"`
	Type                JobType      `json:"type" db:"type"`
	Salary              string       `json:"salary,omitempty" db:"salary"`
	Experience          string       `json:"experience,omitempty" db:"experience"`
	Description         string       `json:"description" db:"description"`
	Requirements        string       `json:"requirements,omitempty" db:"requirements"`
	Benefits            string       `json:"benefits,omitempty" db:"benefits"`
	Status              JobStatus    `json:"status" db:"status"`
	PostedBy            int64        `json:"postedBy" db:"posted_by"`
	ApplicationDeadline *time.Time   `json:"applicationDeadline,omitempty" db:"application_deadline"`
	Tags                Tags         `json:"tags" db:"tags"`
	CreatedAt           time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time    `json:"updatedAt" db:"updated_at"`
	Poster              *UserSummary `json:"poster,omitempty" db:"-"`
}

// AcceptsApplications reports whether new applications may be submitted
func (j *Job) AcceptsApplications() bool {
	return j.Status == JobStatusActive
}

// OwnedBy reports whether userID posted the job
func (j *Job) OwnedBy(userID int64) bool {
	return j.PostedBy == userID
}

// JobSummary is the projection of a job attached to applications
type JobSummary struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Company     string  `json:"company" db:"company"`
	Location    string  `json:"location,omitempty" db:"location"`
	Type        JobType `json:"type,omitempty" db:"type"`
	Salary      string  `json:"salary,omitempty" db:"salary"`
	Description string  `json:"description,omitempty" db:"description"`
}

// Summary returns the projection of j attached to applications
func (j *Job) Summary() *JobSummary {
	return &JobSummary{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Type:        j.Type,
		Salary:      j.Salary,
		Description: j.Description,
	}
}

// Tags is an ordered set of labels stored as a JSON array
type Tags []string

// NewTags removes blanks and duplicates while keeping first-seen order
func NewTags(values []string) Tags {
	seen := make(map[string]struct{}, len(values))
	tags := Tags{}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		tags = append(tags, v)
	}
	return tags
}

// Value implements driver.Valuer
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	*t = Tags(values)
	return nil
}
