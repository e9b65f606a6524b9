// Package seed loads the demo accounts, jobs and applications.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/khrees2412/jobsphere/internal/auth"
	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/pkg/models"
)

//go:embed seed.yaml
var defaultData []byte

// Data is the fixture document
type Data struct {
	Users        []User        `yaml:"users"`
	Jobs         []Job         `yaml:"jobs"`
	Applications []Application `yaml:"applications"`
}

type User struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Phone      string `yaml:"phone"`
	Location   string `yaml:"location"`
	Experience string `yaml:"experience"`
	Skills     string `yaml:"skills"`
}

type Job struct {
	Title        string   `yaml:"title"`
	Company      string   `yaml:"company"`
	Location     string   `yaml:"location"`
	Type         string   `yaml:"type"`
	Salary       string   `yaml:"salary"`
	Experience   string   `yaml:"experience"`
	Description  string   `yaml:"description"`
	Requirements string   `yaml:"requirements"`
	Benefits     string   `yaml:"benefits"`
	Status       string   `yaml:"status"`
	PostedBy     string   `yaml:"posted_by"`
	Tags         []string `yaml:"tags"`
}

type Application struct {
	Job         string        `yaml:"job"`
	Applicant   string        `yaml:"applicant"`
	Status      string        `yaml:"status"`
	CoverLetter string        `yaml:"cover_letter"`
	AppliedAgo  time.Duration `yaml:"applied_ago"`
}

// Result counts what a run created
type Result struct {
	Skipped      bool
	Users        int
	Jobs         int
	Applications int
}

// Default returns the embedded fixture document
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Parse decodes a fixture document
func Parse(raw []byte) (*Data, error) {
	data := &Data{}
	if err := yaml.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return data, nil
}

// Run inserts data unless the store already has users
func Run(ctx context.Context, store database.Store, data *Data, bcryptCost int, logger *logrus.Logger) (*Result, error) {
	count, err := store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		logger.WithField("users", count).Info("database already has users, skipping seed")
		return &Result{Skipped: true}, nil
	}

	result := &Result{}
	users := make(map[string]int64, len(data.Users))
	for _, u := range data.Users {
		role, err := models.ParseRole(u.Role)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		hash, err := auth.HashPassword(u.Password, bcryptCost)
		if err != nil {
			return nil, err
		}

		user := &models.User{
			Name:         u.Name,
			Email:        auth.NormalizeEmail(u.Email),
			PasswordHash: hash,
			Role:         role,
			Phone:        u.Phone,
			Location:     u.Location,
			Experience:   u.Experience,
			Skills:       u.Skills,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		users[user.Email] = user.ID
		result.Users++
	}

	jobs := make(map[string]int64, len(data.Jobs))
	for _, j := range data.Jobs {
		poster, ok := users[auth.NormalizeEmail(j.PostedBy)]
		if !ok {
			return nil, fmt.Errorf("seed job %s: unknown poster %s", j.Title, j.PostedBy)
		}

		job := &models.Job{
			Title:        j.Title,
			Company:      j.Company,
			Location:     j.Location,
			Type:         models.JobType(j.Type),
			Salary:       j.Salary,
			Experience:   j.Experience,
			Description:  j.Description,
			Requirements: j.Requirements,
			Benefits:     j.Benefits,
			Status:       models.JobStatus(j.Status),
			PostedBy:     poster,
			Tags:         models.NewTags(j.Tags),
		}
		if err := store.CreateJob(ctx, job); err != nil {
			return nil, fmt.Errorf("seed job %s: %w", j.Title, err)
		}
		jobs[job.Title] = job.ID
		result.Jobs++
	}

	now := time.Now().UTC()
	for _, a := range data.Applications {
		jobID, ok := jobs[a.Job]
		if !ok {
			return nil, fmt.Errorf("seed application: unknown job %s", a.Job)
		}
		userID, ok := users[auth.NormalizeEmail(a.Applicant)]
		if !ok {
			return nil, fmt.Errorf("seed application: unknown applicant %s", a.Applicant)
		}

		application := &models.Application{
			JobID:       jobID,
			UserID:      userID,
			Status:      models.ApplicationStatus(a.Status),
			CoverLetter: a.CoverLetter,
			AppliedAt:   now.Add(-a.AppliedAgo),
		}
		if err := store.CreateApplication(ctx, application); err != nil {
			return nil, fmt.Errorf("seed application for %s: %w", a.Job, err)
		}
		result.Applications++
	}

	logger.WithFields(logrus.Fields{
		"users":        result.Users,
		"jobs":         result.Jobs,
		"applications": result.Applications,
	}).Info("database seeded")
	return result, nil
}
