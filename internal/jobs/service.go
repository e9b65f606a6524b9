// Package jobs manages job postings.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/internal/auth"
	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/pkg/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	filterAll = "all"
)

// ListQuery holds the public listing parameters. Nil paging fields and
// empty strings take their defaults.
type ListQuery struct {
	Search    string `json:"search"`
	Type      string `json:"type" validate:"omitempty,oneof=all full-time part-time contract internship remote"`
	Location  string `json:"location"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive closed"`
	Page      *int   `json:"page" validate:"omitnil,gte=1"`
	Limit     *int   `json:"limit" validate:"omitnil,gte=1,lte=100"`
	SortBy    string `json:"sortBy" validate:"omitempty,oneof=createdAt title company location salary"`
	SortOrder string `json:"sortOrder" validate:"omitempty,oneof=ASC DESC"`
}

// CreateInput is the body of a job creation request
type CreateInput struct {
	Title               string   `json:"title" validate:"required,min=3,max=200"`
	Company             string   `json:"company" validate:"required,min=2,max=100"`
	Location            string   `json:"location" validate:"required,max=200"`
	Type                string   `json:"type" validate:"omitempty,oneof=full-time part-time contract internship remote"`
	Salary              string   `json:"salary" validate:"max=50"`
	Experience          string   `json:"experience" validate:"max=50"`
	Description         string   `json:"description" validate:"required,min=10,max=5000"`
	Requirements        string   `json:"requirements" validate:"max=2000"`
	Benefits            string   `json:"benefits" validate:"max=2000"`
	ApplicationDeadline string   `json:"applicationDeadline" validate:"omitempty,isodate"`
	Tags                []string `json:"tags" validate:"max=20,dive,max=50"`
}

// UpdateInput is a partial job update; nil fields are left unchanged. An
// empty applicationDeadline clears it and a non-nil tags list replaces them.
type UpdateInput struct {
	Title               *string  `json:"title" validate:"omitnil,min=3,max=200"`
	Company             *string  `json:"company" validate:"omitnil,min=2,max=100"`
	Location            *string  `json:"location" validate:"omitnil,min=1,max=200"`
	Type                *string  `json:"type" validate:"omitnil,oneof=full-time part-time contract internship remote"`
	Status              *string  `json:"status" validate:"omitnil,oneof=active inactive closed"`
	Salary              *string  `json:"salary" validate:"omitnil,max=50"`
	Experience          *string  `json:"experience" validate:"omitnil,max=50"`
	Description         *string  `json:"description" validate:"omitnil,min=10,max=5000"`
	Requirements        *string  `json:"requirements" validate:"omitnil,max=2000"`
	Benefits            *string  `json:"benefits" validate:"omitnil,max=2000"`
	ApplicationDeadline *string  `json:"applicationDeadline" validate:"omitempty,isodate"`
	Tags                []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

// Page is one page of jobs
type Page struct {
	Jobs       []*models.Job
	Pagination models.Pagination
}

// Service implements the job directory
type Service struct {
	jobs   database.JobRepository
	logger *logrus.Logger
}

// NewService creates a job directory service
func NewService(jobs database.JobRepository, logger *logrus.Logger) *Service {
	return &Service{jobs: jobs, logger: logger}
}

// List returns a filtered, sorted page of jobs. Status defaults to active.
func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	q.Search = strings.TrimSpace(q.Search)
	q.Location = strings.TrimSpace(q.Location)
	q.SortOrder = strings.ToUpper(strings.TrimSpace(q.SortOrder))
	if err := app.Validate(q); err != nil {
		return nil, err
	}

	page, limit := paging(q.Page, q.Limit)
	filter := database.JobFilter{
		Search:   q.Search,
		Status:   models.JobStatusActive,
		SortBy:   database.SortCreatedAt,
		SortDesc: q.SortOrder != "ASC",
		Limit:    limit,
		Offset:   models.Offset(page, limit),
	}
	if q.Status != "" {
		filter.Status = models.JobStatus(q.Status)
	}
	if q.Type != "" && q.Type != filterAll {
		filter.Type = models.JobType(q.Type)
	}
	if q.Location != "" && !strings.EqualFold(q.Location, filterAll) {
		filter.Location = q.Location
	}
	if q.SortBy != "" {
		filter.SortBy = q.SortBy
	}

	jobs, total, err := s.jobs.ListJobs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return &Page{Jobs: jobs, Pagination: models.NewPagination(page, limit, total)}, nil
}

// Get returns a single job with its poster
func (s *Service) Get(ctx context.Context, id int64) (*models.Job, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, app.NotFound("Job")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// Create posts a job owned by actor
func (s *Service) Create(ctx context.Context, in CreateInput, actor auth.Identity) (*models.Job, error) {
	trimAll(&in.Title, &in.Company, &in.Location, &in.Type, &in.Salary, &in.Experience,
		&in.Description, &in.Requirements, &in.Benefits, &in.ApplicationDeadline)
	if err := app.Validate(in); err != nil {
		return nil, err
	}

	job := &models.Job{
		Title:        in.Title,
		Company:      in.Company,
		Location:     in.Location,
		Type:         models.JobType(in.Type),
		Salary:       in.Salary,
		Experience:   in.Experience,
		Description:  in.Description,
		Requirements: in.Requirements,
		Benefits:     in.Benefits,
		Status:       models.JobStatusActive,
		PostedBy:     actor.UserID,
		Tags:         models.NewTags(trimTags(in.Tags)),
	}
	if job.Type == "" {
		job.Type = models.JobTypeFullTime
	}
	if in.ApplicationDeadline != "" {
		deadline, _ := app.ParseDate(in.ApplicationDeadline)
		job.ApplicationDeadline = &deadline
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		if errors.Is(err, database.ErrReference) {
			return nil, app.Unauthorized("User no longer exists")
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"job_id": job.ID, "user_id": actor.UserID}).Info("job created")
	return s.Get(ctx, job.ID)
}

// Update applies a partial update. Only the poster or an admin may update.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, actor auth.Identity) (*models.Job, error) {
	trimPtrs(in.Title, in.Company, in.Location, in.Type, in.Status, in.Salary, in.Experience,
		in.Description, in.Requirements, in.Benefits, in.ApplicationDeadline)
	if err := app.Validate(in); err != nil {
		return nil, err
	}

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(job.PostedBy) {
		return nil, app.Forbidden("Not authorized to update this job")
	}

	assign(&job.Title, in.Title)
	assign(&job.Company, in.Company)
	assign(&job.Location, in.Location)
	assign(&job.Salary, in.Salary)
	assign(&job.Experience, in.Experience)
	assign(&job.Description, in.Description)
	assign(&job.Requirements, in.Requirements)
	assign(&job.Benefits, in.Benefits)
	if in.Type != nil {
		job.Type = models.JobType(*in.Type)
	}
	if in.Status != nil {
		job.Status = models.JobStatus(*in.Status)
	}
	if in.ApplicationDeadline != nil {
		job.ApplicationDeadline = nil
		if *in.ApplicationDeadline != "" {
			deadline, _ := app.ParseDate(*in.ApplicationDeadline)
			job.ApplicationDeadline = &deadline
		}
	}
	if in.Tags != nil {
		job.Tags = models.NewTags(trimTags(in.Tags))
	}

	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, app.NotFound("Job")
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"job_id": job.ID, "user_id": actor.UserID}).Info("job updated")
	return s.Get(ctx, job.ID)
}

// Delete removes a job and its applications. Only the poster or an admin
// may delete.
func (s *Service) Delete(ctx context.Context, id int64, actor auth.Identity) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(job.PostedBy) {
		return app.Forbidden("Not authorized to delete this job")
	}

	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return app.NotFound("Job")
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"job_id": id, "user_id": actor.UserID}).Info("job deleted")
	return nil
}

// ListMine returns the caller's postings in any status, newest first
func (s *Service) ListMine(ctx context.Context, actor auth.Identity, pageNum, limitNum *int) (*Page, error) {
	q := struct {
		Page  *int `json:"page" validate:"omitnil,gte=1"`
		Limit *int `json:"limit" validate:"omitnil,gte=1,lte=100"`
	}{pageNum, limitNum}
	if err := app.Validate(q); err != nil {
		return nil, err
	}

	page, limit := paging(pageNum, limitNum)
	jobs, total, err := s.jobs.ListJobs(ctx, database.JobFilter{
		PostedBy: actor.UserID,
		SortBy:   database.SortCreatedAt,
		SortDesc: true,
		Limit:    limit,
		Offset:   models.Offset(page, limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list user jobs: %w", err)
	}
	return &Page{Jobs: jobs, Pagination: models.NewPagination(page, limit, total)}, nil
}

func paging(page, limit *int) (int, int) {
	p, l := DefaultPage, DefaultLimit
	if page != nil {
		p = *page
	}
	if limit != nil {
		l = *limit
	}
	return p, l
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func trimPtrs(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
