package database

import (
	"context"
	"errors"

	"github.com/khrees2412/jobsphere/pkg/models"
)

// Storage-level errors. Services translate these into application errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrReference = errors.New("referenced record does not exist")
)

// Sortable job columns, keyed by the public sort field name
const (
	SortCreatedAt = "createdAt"
	SortTitle     = "title"
	SortCompany   = "company"
	SortLocation  = "location"
	SortSalary    = "salary"
)

// JobSortFields lists the accepted sort keys
var JobSortFields = []string{SortCreatedAt, SortTitle, SortCompany, SortLocation, SortSalary}

// JobFilter narrows a job listing. Zero values mean "any".
type JobFilter struct {
	Search   string
	Location string
	Type     models.JobType
	Status   models.JobStatus
	PostedBy int64
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// ApplicationFilter narrows an application listing. Zero values mean "any".
type ApplicationFilter struct {
	UserID int64
	JobID  int64
	Status models.ApplicationStatus
	Limit  int
	Offset int
}

// UserRepository persists user accounts
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// JobRepository persists job postings. Reads attach the poster summary.
type JobRepository interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, id int64) error
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int64, error)
}

// ApplicationRepository persists applications. CreateApplication must fail
// with ErrDuplicate when (job, user) already exists, atomically. Reads
// attach the job, applicant and reviewer summaries.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, application *models.Application) error
	GetApplication(ctx context.Context, id int64) (*models.Application, error)
	GetApplicationByJobAndUser(ctx context.Context, jobID, userID int64) (*models.Application, error)
	UpdateApplication(ctx context.Context, application *models.Application) error
	DeleteApplication(ctx context.Context, id int64) error
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error)
}

// Store bundles every repository
type Store interface {
	UserRepository
	JobRepository
	ApplicationRepository
}
