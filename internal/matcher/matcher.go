// Package matcher holds the text matching rules used by job listings.
package matcher

import (
	"strings"

	"github.com/khrees2412/jobsphere/pkg/models"
)

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// MatchSearch checks the search term against title, company and description
func MatchSearch(job *models.Job, term string) bool {
	if term == "" {
		return true
	}
	return ContainsFold(job.Title, term) ||
		ContainsFold(job.Company, term) ||
		ContainsFold(job.Description, term)
}

// MatchLocation checks the location filter as a substring of the job location
func MatchLocation(job *models.Job, location string) bool {
	return ContainsFold(job.Location, location)
}

// Criteria is the non-paging part of a job listing query
type Criteria struct {
	Search   string
	Location string
	Type     models.JobType
	Status   models.JobStatus
	PostedBy int64
}

// Match reports whether job satisfies every non-empty criterion
func Match(job *models.Job, c Criteria) bool {
	if c.Status != "" && job.Status != c.Status {
		return false
	}
	if c.Type != "" && job.Type != c.Type {
		return false
	}
	if c.PostedBy != 0 && job.PostedBy != c.PostedBy {
		return false
	}
	return MatchLocation(job, c.Location) && MatchSearch(job, c.Search)
}

// Less orders two jobs by the named sort field, ignoring case for text
// fields. Ties fall back to id.
func Less(a, b *models.Job, sortBy string) bool {
	var x, y string
	switch sortBy {
	case "title":
		x, y = a.Title, b.Title
	case "company":
		x, y = a.Company, b.Company
	case "location":
		x, y = a.Location, b.Location
	case "salary":
		x, y = a.Salary, b.Salary
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	if x, y = strings.ToLower(x), strings.ToLower(y); x != y {
		return x < y
	}
	return a.ID < b.ID
}
