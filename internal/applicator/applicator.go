// Package applicator runs the job application workflow: applying, review
// and withdrawal.
package applicator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/internal/auth"
	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/pkg/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ApplyInput is the body of an apply request
type ApplyInput struct {
	CoverLetter string `json:"coverLetter" validate:"max=2000"`
	Resume      string `json:"resume" validate:"max=255"`
}

// ListQuery filters application listings. JobID is honored only by ListAll.
type ListQuery struct {
	Status string `json:"status" validate:"omitempty,oneof=pending reviewed shortlisted rejected accepted"`
	JobID  int64  `json:"jobId" validate:"gte=0"`
	Page   *int   `json:"page" validate:"omitnil,gte=1"`
	Limit  *int   `json:"limit" validate:"omitnil,gte=1,lte=100"`
}

// StatusInput is the body of a review update. Nil optional fields keep their
// stored value; an empty interviewDate clears it.
type StatusInput struct {
	Status            string  `json:"status" validate:"required,oneof=pending reviewed shortlisted rejected accepted"`
	Notes             *string `json:"notes" validate:"omitnil,max=1000"`
	InterviewDate     *string `json:"interviewDate" validate:"omitempty,isodate"`
	InterviewLocation *string `json:"interviewLocation" validate:"omitnil,max=200"`
}

// Page is one page of applications
type Page struct {
	Applications []*models.Application
	Pagination   models.Pagination
}

// Service implements the application workflow
type Service struct {
	store  database.Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates an application workflow service
func NewService(store database.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Apply submits actor's application to an active job. At most one
// application exists per (job, user); a concurrent duplicate loses at insert.
func (s *Service) Apply(ctx context.Context, jobID int64, in ApplyInput, actor auth.Identity) (*models.Application, error) {
	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	in.Resume = strings.TrimSpace(in.Resume)
	if err := app.Validate(in); err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, app.NotFound("Job")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if !job.AcceptsApplications() {
		return nil, app.Invalid("This job is not accepting applications")
	}

	if _, err := s.store.GetApplicationByJobAndUser(ctx, jobID, actor.UserID); err == nil {
		return nil, app.Conflict("You have already applied for this job")
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}

	application := &models.Application{
		JobID:       jobID,
		UserID:      actor.UserID,
		Status:      models.StatusPending,
		CoverLetter: in.CoverLetter,
		Resume:      in.Resume,
		AppliedAt:   s.now().UTC(),
	}
	if err := s.store.CreateApplication(ctx, application); err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicate):
			return nil, app.Conflict("You have already applied for this job")
		case errors.Is(err, database.ErrReference):
			return nil, app.NotFound("Job")
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": application.ID,
		"job_id":         jobID,
		"user_id":        actor.UserID,
	}).Info("application submitted")
	return s.load(ctx, application.ID)
}

// ListMine returns actor's applications, newest first
func (s *Service) ListMine(ctx context.Context, actor auth.Identity, q ListQuery) (*Page, error) {
	q.JobID = 0
	return s.list(ctx, q, actor.UserID)
}

// ListAll returns every application, optionally narrowed by status and job.
// Admin only.
func (s *Service) ListAll(ctx context.Context, q ListQuery, actor auth.Identity) (*Page, error) {
	if !actor.IsAdmin() {
		return nil, app.Forbidden("Admin access required")
	}
	return s.list(ctx, q, 0)
}

func (s *Service) list(ctx context.Context, q ListQuery, userID int64) (*Page, error) {
	q.Status = strings.TrimSpace(q.Status)
	if err := app.Validate(q); err != nil {
		return nil, err
	}

	page, limit := DefaultPage, DefaultLimit
	if q.Page != nil {
		page = *q.Page
	}
	if q.Limit != nil {
		limit = *q.Limit
	}

	applications, total, err := s.store.ListApplications(ctx, database.ApplicationFilter{
		UserID: userID,
		JobID:  q.JobID,
		Status: models.ApplicationStatus(q.Status),
		Limit:  limit,
		Offset: models.Offset(page, limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return &Page{Applications: applications, Pagination: models.NewPagination(page, limit, total)}, nil
}

// Get returns one application. Only the applicant or an admin may view it.
func (s *Service) Get(ctx context.Context, id int64, actor auth.Identity) (*models.Application, error) {
	application, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(application.UserID) {
		return nil, app.Forbidden("Not authorized to view this application")
	}
	return application, nil
}

// UpdateStatus records an admin review. Any status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id int64, in StatusInput, actor auth.Identity) (*models.Application, error) {
	in.Status = strings.TrimSpace(in.Status)
	for _, f := range []*string{in.Notes, in.InterviewDate, in.InterviewLocation} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := app.Validate(in); err != nil {
		return nil, err
	}

	application, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, app.Forbidden("Admin access required")
	}

	from := application.Status
	now := s.now().UTC()
	reviewer := actor.UserID

	application.Status = models.ApplicationStatus(in.Status)
	if in.Notes != nil {
		application.Notes = *in.Notes
	}
	if in.InterviewLocation != nil {
		application.InterviewLocation = *in.InterviewLocation
	}
	if in.InterviewDate != nil {
		application.InterviewDate = nil
		if *in.InterviewDate != "" {
			date, _ := app.ParseDate(*in.InterviewDate)
			application.InterviewDate = &date
		}
	}
	application.ReviewedAt = &now
	application.ReviewedBy = &reviewer

	if err := s.store.UpdateApplication(ctx, application); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, app.NotFound("Application")
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	entry := s.logger.WithFields(logrus.Fields{
		"application_id": id,
		"reviewer_id":    reviewer,
		"from":           from,
		"to":             application.Status,
	})
	if from != application.Status && !models.ValidTransition(from, application.Status) {
		entry.Warn("application status moved outside the review workflow")
	} else {
		entry.Info("application status updated")
	}
	return s.load(ctx, id)
}

// Withdraw deletes actor's own application while it is still pending or
// reviewed.
func (s *Service) Withdraw(ctx context.Context, id int64, actor auth.Identity) error {
	application, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if application.UserID != actor.UserID {
		return app.Forbidden("Not authorized to withdraw this application")
	}
	if !application.Status.Withdrawable() {
		return app.Invalid("Application cannot be withdrawn at this stage")
	}

	if err := s.store.DeleteApplication(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return app.NotFound("Application")
		}
		return fmt.Errorf("failed to withdraw application: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"application_id": id, "user_id": actor.UserID}).Info("application withdrawn")
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*models.Application, error) {
	application, err := s.store.GetApplication(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, app.NotFound("Application")
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return application, nil
}
