// Package memory provides an in-process database.Store used by tests and
// throwaway local runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/internal/matcher"
	"github.com/khrees2412/jobsphere/pkg/models"
)

// Store is safe for concurrent use. Records are copied on the way in and out
// so callers never share memory with the store.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	users        map[int64]models.User
	usersByEmail map[string]int64
	jobs         map[int64]models.Job
	applications map[int64]models.Application
	applied      map[[2]int64]int64
}

var _ database.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		nextID:       1,
		users:        make(map[int64]models.User),
		usersByEmail: make(map[string]int64),
		jobs:         make(map[int64]models.Job),
		applications: make(map[int64]models.Application),
		applied:      make(map[[2]int64]int64),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Users ----------------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := s.usersByEmail[key]; exists {
		return database.ErrDuplicate
	}

	now := time.Now().UTC()
	user.ID = s.nextIDLocked()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	s.users[user.ID] = *user
	s.usersByEmail[key] = user.ID
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[emailKey(email)]
	if !ok {
		return nil, database.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[user.ID]
	if !ok {
		return database.ErrNotFound
	}

	oldKey, newKey := emailKey(original.Email), emailKey(user.Email)
	if oldKey != newKey {
		if _, taken := s.usersByEmail[newKey]; taken {
			return database.ErrDuplicate
		}
		delete(s.usersByEmail, oldKey)
		s.usersByEmail[newKey] = user.ID
	}

	user.CreatedAt = original.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		user := user
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// Jobs -----------------------------------------------------------------------

func (s *Store) CreateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[job.PostedBy]; !ok {
		return database.ErrReference
	}

	now := time.Now().UTC()
	job.ID = s.nextIDLocked()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Type == "" {
		job.Type = models.JobTypeFullTime
	}
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	job.Tags = cloneTags(job.Tags)

	stored := *job
	stored.Poster = nil
	stored.ApplicationDeadline = clonePtr(job.ApplicationDeadline)
	s.jobs[job.ID] = stored
	return nil
}

func (s *Store) GetJob(_ context.Context, id int64) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s.jobViewLocked(job), nil
}

func (s *Store) UpdateJob(_ context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.jobs[job.ID]
	if !ok {
		return database.ErrNotFound
	}

	job.PostedBy = original.PostedBy
	job.CreatedAt = original.CreatedAt
	job.UpdatedAt = time.Now().UTC()

	stored := *job
	stored.Poster = nil
	stored.Tags = cloneTags(job.Tags)
	stored.ApplicationDeadline = clonePtr(job.ApplicationDeadline)
	s.jobs[job.ID] = stored
	return nil
}

func (s *Store) DeleteJob(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.jobs, id)
	for appID, application := range s.applications {
		if application.JobID == id {
			delete(s.applications, appID)
			delete(s.applied, [2]int64{application.JobID, application.UserID})
		}
	}
	return nil
}

func (s *Store) ListJobs(_ context.Context, filter database.JobFilter) ([]*models.Job, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	criteria := matcher.Criteria{
		Search:   filter.Search,
		Location: filter.Location,
		Type:     filter.Type,
		Status:   filter.Status,
		PostedBy: filter.PostedBy,
	}

	var matched []models.Job
	for _, job := range s.jobs {
		job := job
		if matcher.Match(&job, criteria) {
			matched = append(matched, job)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if filter.SortDesc {
			return matcher.Less(&matched[j], &matched[i], filter.SortBy)
		}
		return matcher.Less(&matched[i], &matched[j], filter.SortBy)
	})

	total := int64(len(matched))
	matched = window(matched, filter.Limit, filter.Offset)

	jobs := make([]*models.Job, 0, len(matched))
	for _, job := range matched {
		jobs = append(jobs, s.jobViewLocked(job))
	}
	return jobs, total, nil
}

func (s *Store) jobViewLocked(job models.Job) *models.Job {
	job.Tags = cloneTags(job.Tags)
	job.ApplicationDeadline = clonePtr(job.ApplicationDeadline)
	if poster, ok := s.users[job.PostedBy]; ok {
		job.Poster = &models.UserSummary{ID: poster.ID, Name: poster.Name, Email: poster.Email}
	}
	return &job
}

// Applications ---------------------------------------------------------------

func (s *Store) CreateApplication(_ context.Context, application *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[application.JobID]; !ok {
		return database.ErrReference
	}
	if _, ok := s.users[application.UserID]; !ok {
		return database.ErrReference
	}
	key := [2]int64{application.JobID, application.UserID}
	if _, exists := s.applied[key]; exists {
		return database.ErrDuplicate
	}

	now := time.Now().UTC()
	application.ID = s.nextIDLocked()
	if application.AppliedAt.IsZero() {
		application.AppliedAt = now
	}
	application.CreatedAt = now
	application.UpdatedAt = now
	if application.Status == "" {
		application.Status = models.StatusPending
	}

	s.applications[application.ID] = detach(*application)
	s.applied[key] = application.ID
	return nil
}

func (s *Store) GetApplication(_ context.Context, id int64) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	application, ok := s.applications[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s.applicationViewLocked(application), nil
}

func (s *Store) GetApplicationByJobAndUser(_ context.Context, jobID, userID int64) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.applied[[2]int64{jobID, userID}]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s.applicationViewLocked(s.applications[id]), nil
}

func (s *Store) UpdateApplication(_ context.Context, application *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.applications[application.ID]
	if !ok {
		return database.ErrNotFound
	}
	if application.ReviewedBy != nil {
		if _, ok := s.users[*application.ReviewedBy]; !ok {
			return database.ErrReference
		}
	}

	application.JobID = original.JobID
	application.UserID = original.UserID
	application.AppliedAt = original.AppliedAt
	application.CreatedAt = original.CreatedAt
	application.UpdatedAt = time.Now().UTC()

	s.applications[application.ID] = detach(*application)
	return nil
}

func (s *Store) DeleteApplication(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	application, ok := s.applications[id]
	if !ok {
		return database.ErrNotFound
	}
	delete(s.applications, id)
	delete(s.applied, [2]int64{application.JobID, application.UserID})
	return nil
}

func (s *Store) ListApplications(_ context.Context, filter database.ApplicationFilter) ([]*models.Application, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Application
	for _, application := range s.applications {
		if filter.UserID != 0 && application.UserID != filter.UserID {
			continue
		}
		if filter.JobID != 0 && application.JobID != filter.JobID {
			continue
		}
		if filter.Status != "" && application.Status != filter.Status {
			continue
		}
		matched = append(matched, application)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].AppliedAt.Equal(matched[j].AppliedAt) {
			return matched[i].AppliedAt.After(matched[j].AppliedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	matched = window(matched, filter.Limit, filter.Offset)

	applications := make([]*models.Application, 0, len(matched))
	for _, application := range matched {
		applications = append(applications, s.applicationViewLocked(application))
	}
	return applications, total, nil
}

func (s *Store) applicationViewLocked(application models.Application) *models.Application {
	application = cloneApplication(application)
	if job, ok := s.jobs[application.JobID]; ok {
		application.Job = job.Summary()
	}
	if applicant, ok := s.users[application.UserID]; ok {
		application.Applicant = applicant.Summary()
	}
	if application.ReviewedBy != nil {
		if reviewer, ok := s.users[*application.ReviewedBy]; ok {
			application.Reviewer = &models.UserSummary{ID: reviewer.ID, Name: reviewer.Name, Email: reviewer.Email}
		}
	}
	return &application
}

// helpers --------------------------------------------------------------------

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneTags(tags models.Tags) models.Tags {
	out := make(models.Tags, len(tags))
	copy(out, tags)
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneApplication(a models.Application) models.Application {
	a.ReviewedAt = clonePtr(a.ReviewedAt)
	a.ReviewedBy = clonePtr(a.ReviewedBy)
	a.InterviewDate = clonePtr(a.InterviewDate)
	return a
}

// detach strips joined projections and copies pointer fields before storage
func detach(a models.Application) models.Application {
	a = cloneApplication(a)
	a.Job = nil
	a.Applicant = nil
	a.Reviewer = nil
	return a
}
