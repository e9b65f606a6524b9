package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khrees2412/jobsphere/internal/database"
	"github.com/khrees2412/jobsphere/internal/database/memory"
	"github.com/khrees2412/jobsphere/pkg/models"
)

// createTestDB opens a migrated SQLite database in a temp directory
func createTestDB(t *testing.T) *database.SQLStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.Open(context.Background(), database.DriverSQLite, dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return database.NewSQLStore(db)
}

// forEachStore runs fn against every Store implementation
func forEachStore(t *testing.T, fn func(t *testing.T, store database.Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, createTestDB(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, memory.New()) })
}

func mustUser(t *testing.T, store database.Store, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Name: "Test " + email, Email: email, PasswordHash: "hash", Role: role}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func mustJob(t *testing.T, store database.Store, job *models.Job) *models.Job {
	t.Helper()
	if job.Description == "" {
		job.Description = "A role with plenty of responsibility."
	}
	if err := store.CreateJob(context.Background(), job); err != nil {
		t.Fatalf("failed to create job %s: %v", job.Title, err)
	}
	return job
}

func TestCreateUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		ctx := context.Background()
		user := mustUser(t, store, "jane@example.com", models.RoleUser)
		assert.NotZero(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		got, err := store.GetUserByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Equal(t, models.RoleUser, got.Role)

		dup := &models.User{Name: "Other", Email: "jane@example.com", PasswordHash: "x"}
		err = store.CreateUser(ctx, dup)
		assert.True(t, errors.Is(err, database.ErrDuplicate), "got %v", err)

		_, err = store.GetUser(ctx, 9999)
		assert.ErrorIs(t, err, database.ErrNotFound)

		count, err := store.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestUpdateUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		ctx := context.Background()
		user := mustUser(t, store, "a@example.com", models.RoleUser)
		mustUser(t, store, "b@example.com", models.RoleUser)

		user.Role = models.RoleAdmin
		user.Skills = "Go, SQL"
		require.NoError(t, store.UpdateUser(ctx, user))

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.Equal(t, "Go, SQL", got.Skills)

		user.Email = "b@example.com"
		assert.ErrorIs(t, store.UpdateUser(ctx, user), database.ErrDuplicate)

		missing := &models.User{ID: 4242, Name: "x", Email: "x@example.com"}
		assert.ErrorIs(t, store.UpdateUser(ctx, missing), database.ErrNotFound)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestJobCRUD(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		ctx := context.Background()
		admin := mustUser(t, store, "admin@example.com", models.RoleAdmin)
		deadline := time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC)

		job := mustJob(t, store, &models.Job{
			Title:               "Software Developer",
			Company:             "Tech Solutions Nepal",
			Location:            "Remote",
			PostedBy:            admin.ID,
			ApplicationDeadline: &deadline,
			Tags:                models.Tags{"Go", "React"},
		})
		assert.NotZero(t, job.ID)
		assert.Equal(t, models.JobTypeFullTime, job.Type)
		assert.Equal(t, models.JobStatusActive, job.Status)

		got, err := store.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "Software Developer", got.Title)
		assert.Equal(t, models.Tags{"Go", "React"}, got.Tags)
		require.NotNil(t, got.ApplicationDeadline)
		assert.True(t, deadline.Equal(*got.ApplicationDeadline))
		require.NotNil(t, got.Poster)
		assert.Equal(t, admin.Email, got.Poster.Email)

		got.Status = models.JobStatusClosed
		got.Tags = models.Tags{}
		require.NoError(t, store.UpdateJob(ctx, got))

		updated, err := store.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusClosed, updated.Status)
		assert.Empty(t, updated.Tags)

		require.NoError(t, store.DeleteJob(ctx, job.ID))
		_, err = store.GetJob(ctx, job.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
		assert.ErrorIs(t, store.DeleteJob(ctx, job.ID), database.ErrNotFound)
	})
}

func TestCreateJobUnknownPoster(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		err := store.CreateJob(context.Background(), &models.Job{
			Title: "Orphan", Company: "Nobody", Location: "Nowhere",
			Description: "No poster exists for this job.", PostedBy: 777,
		})
		assert.ErrorIs(t, err, database.ErrReference)
	})
}

func TestListJobs(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		ctx := context.Background()
		admin := mustUser(t, store, "admin@example.com", models.RoleAdmin)
		other := mustUser(t, store, "other@example.com", models.RoleAdmin)

		mustJob(t, store, &models.Job{Title: "Accountant", Company: "Nepal Airlines", Location: "Kathmandu", PostedBy: admin.ID})
		mustJob(t, store, &models.Job{Title: "Tour Guide", Company: "Everest Trekking", Location: "Lukla", Type: models.JobTypeContract, PostedBy: admin.ID})
		mustJob(t, store, &models.Job{Title: "Software Developer", Company: "Tech Solutions", Location: "Remote", Type: models.JobTypeRemote, PostedBy: other.ID})
		mustJob(t, store, &models.Job{Title: "100% Growth Hacker", Company: "Startup", Location: "Kathmandu", Status: models.JobStatusClosed, PostedBy: other.ID})

		tests := []struct {
			name   string
			filter database.JobFilter
			want   []string
			total  int64
		}{
			{
				name:   "active sorted by title",
				filter: database.JobFilter{Status: models.JobStatusActive, SortBy: database.SortTitle},
				want:   []string{"Accountant", "Software Developer", "Tour Guide"},
				total:  3,
			},
			{
				name:   "descending",
				filter: database.JobFilter{Status: models.JobStatusActive, SortBy: database.SortTitle, SortDesc: true},
				want:   []string{"Tour Guide", "Software Developer", "Accountant"},
				total:  3,
			},
			{
				name:   "search is case insensitive across company",
				filter: database.JobFilter{Search: "EVEREST"},
				want:   []string{"Tour Guide"},
				total:  1,
			},
			{
				name:   "location substring",
				filter: database.JobFilter{Location: "kathm", SortBy: database.SortTitle},
				want:   []string{"100% Growth Hacker", "Accountant"},
				total:  2,
			},
			{
				name:   "percent is literal",
				filter: database.JobFilter{Search: "100%"},
				want:   []string{"100% Growth Hacker"},
				total:  1,
			},
			{
				name:   "type",
				filter: database.JobFilter{Type: models.JobTypeRemote},
				want:   []string{"Software Developer"},
				total:  1,
			},
			{
				name:   "posted by",
				filter: database.JobFilter{PostedBy: other.ID, SortBy: database.SortCompany},
				want:   []string{"100% Growth Hacker", "Software Developer"},
				total:  2,
			},
			{
				name:   "page window keeps total",
				filter: database.JobFilter{SortBy: database.SortTitle, Limit: 2, Offset: 2},
				want:   []string{"Software Developer", "Tour Guide"},
				total:  4,
			},
			{
				name:   "offset past end",
				filter: database.JobFilter{Limit: 10, Offset: 10},
				want:   []string{},
				total:  4,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				jobs, total, err := store.ListJobs(ctx, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.total, total)

				titles := []string{}
				for _, job := range jobs {
					titles = append(titles, job.Title)
					assert.NotNil(t, job.Poster)
				}
				assert.Equal(t, tt.want, titles)
			})
		}
	})
}

func TestListJobsFoldsCase(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		ctx := context.Background()
		admin := mustUser(t, store, "admin@example.com", models.RoleAdmin)

		mustJob(t, store, &models.Job{Title: "ÉCOLE Teacher", Company: "Lycée Français", Location: "Zürich", PostedBy: admin.ID})
		mustJob(t, store, &models.Job{Title: "apple picker", Company: "orchard", Location: "Mustang", PostedBy: admin.ID})
		mustJob(t, store, &models.Job{Title: "Zebra keeper", Company: "Central Zoo", Location: "Lalitpur", PostedBy: admin.ID})
		mustJob(t, store, &models.Job{Title: "Banana grower", Company: "Farm", Location: "Chitwan", PostedBy: admin.ID})

		title := func(j *models.Job) string { return j.Title }
		company := func(j *models.Job) string { return j.Company }

		tests := []struct {
			name   string
			filter database.JobFilter
			field  func(*models.Job) string
			want   []string
		}{
			{
				name:   "accented search",
				filter: database.JobFilter{Search: "école"},
				field:  title,
				want:   []string{"ÉCOLE Teacher"},
			},
			{
				name:   "accented company",
				filter: database.JobFilter{Search: "LYCÉE"},
				field:  title,
				want:   []string{"ÉCOLE Teacher"},
			},
			{
				name:   "accented location",
				filter: database.JobFilter{Location: "ZÜRICH"},
				field:  title,
				want:   []string{"ÉCOLE Teacher"},
			},
			{
				name:   "title sort ignores case",
				filter: database.JobFilter{SortBy: database.SortTitle},
				field:  title,
				want:   []string{"apple picker", "Banana grower", "Zebra keeper", "ÉCOLE Teacher"},
			},
			{
				name:   "company sort ignores case descending",
				filter: database.JobFilter{SortBy: database.SortCompany, SortDesc: true},
				field:  company,
				want:   []string{"orchard", "Lycée Français", "Farm", "Central Zoo"},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				jobs, total, err := store.ListJobs(ctx, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, int64(len(tt.want)), total)

				got := []string{}
				for _, job := range jobs {
					got = append(got, tt.field(job))
				}
				assert.Equal(t, tt.want, got)
			})
		}
	})
}

func TestApplications(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		ctx := context.Background()
		admin := mustUser(t, store, "admin@example.com", models.RoleAdmin)
		john := mustUser(t, store, "john@example.com", models.RoleUser)
		job := mustJob(t, store, &models.Job{Title: "Accountant", Company: "Nepal Airlines", Location: "Kathmandu", PostedBy: admin.ID})

		application := &models.Application{JobID: job.ID, UserID: john.ID, CoverLetter: "Hire me"}
		require.NoError(t, store.CreateApplication(ctx, application))
		assert.NotZero(t, application.ID)
		assert.Equal(t, models.StatusPending, application.Status)

		dup := &models.Application{JobID: job.ID, UserID: john.ID}
		assert.ErrorIs(t, store.CreateApplication(ctx, dup), database.ErrDuplicate)

		got, err := store.GetApplication(ctx, application.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Job)
		assert.Equal(t, "Accountant", got.Job.Title)
		require.NotNil(t, got.Applicant)
		assert.Equal(t, john.Email, got.Applicant.Email)
		assert.Nil(t, got.Reviewer)

		now := time.Now().UTC().Truncate(time.Second)
		got.Status = models.StatusAccepted
		got.ReviewedAt = &now
		got.ReviewedBy = &admin.ID
		got.Notes = "Strong fit"
		require.NoError(t, store.UpdateApplication(ctx, got))

		reviewed, err := store.GetApplicationByJobAndUser(ctx, job.ID, john.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, reviewed.Status)
		require.NotNil(t, reviewed.Reviewer)
		assert.Equal(t, admin.ID, reviewed.Reviewer.ID)
		assert.Equal(t, "Strong fit", reviewed.Notes)

		mine, total, err := store.ListApplications(ctx, database.ApplicationFilter{UserID: john.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, mine, 1)

		_, total, err = store.ListApplications(ctx, database.ApplicationFilter{Status: models.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)

		require.NoError(t, store.DeleteApplication(ctx, application.ID))
		_, err = store.GetApplication(ctx, application.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)

		again := &models.Application{JobID: job.ID, UserID: john.ID}
		assert.NoError(t, store.CreateApplication(ctx, again), "withdrawn applications free the slot")
	})
}

func TestDeleteJobRemovesApplications(t *testing.T) {
	forEachStore(t, func(t *testing.T, store database.Store) {
		ctx := context.Background()
		admin := mustUser(t, store, "admin@example.com", models.RoleAdmin)
		john := mustUser(t, store, "john@example.com", models.RoleUser)
		job := mustJob(t, store, &models.Job{Title: "Accountant", Company: "Nepal Airlines", Location: "Kathmandu", PostedBy: admin.ID})

		application := &models.Application{JobID: job.ID, UserID: john.ID}
		require.NoError(t, store.CreateApplication(ctx, application))
		require.NoError(t, store.DeleteJob(ctx, job.ID))

		_, err := store.GetApplication(ctx, application.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")
	db, err := database.Open(context.Background(), database.DriverSQLite, dbPath)
	require.NoError(t, err)
	defer db.Close()

	version, _, err := database.MigrationVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	require.NoError(t, database.RunMigrations(db))
	require.NoError(t, database.RunMigrations(db), "second run is a no-op")

	version, dirty, err := database.MigrationVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, database.RollbackMigrations(db, 0))
	var tables int
	require.NoError(t, db.Get(&tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'jobs', 'applications')`))
	assert.Equal(t, 0, tables)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := database.Open(context.Background(), "mysql", "whatever")
	assert.Error(t, err)
}
