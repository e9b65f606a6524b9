package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/internal/auth"
	"github.com/khrees2412/jobsphere/internal/database/memory"
	"github.com/khrees2412/jobsphere/internal/logging"
	"github.com/khrees2412/jobsphere/pkg/models"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	admin auth.Identity
	john  auth.Identity
	jane  auth.Identity
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	identity := func(email string, role models.Role) auth.Identity {
		user := &models.User{Name: email, Email: email, PasswordHash: "x", Role: role}
		require.NoError(t, store.CreateUser(ctx, user))
		return auth.Identity{UserID: user.ID, Email: email, Role: role}
	}

	return &fixture{
		svc:   NewService(store, logging.Discard()),
		store: store,
		admin: identity("admin@jobsphere.com", models.RoleAdmin),
		john:  identity("john@example.com", models.RoleUser),
		jane:  identity("jane@example.com", models.RoleUser),
	}
}

func validInput(title string) CreateInput {
	return CreateInput{
		Title:       title,
		Company:     "Tech Solutions Nepal",
		Location:    "Remote",
		Type:        "remote",
		Description: "Join our development team and build modern web applications.",
		Tags:        []string{"React", " Node.js ", "React"},
	}
}

func intp(v int) *int { return &v }

func TestCreate(t *testing.T) {
	f := setup(t)

	job, err := f.svc.Create(context.Background(), CreateInput{
		Title:               "  Software Developer ",
		Company:             "Tech Solutions Nepal",
		Location:            "Remote",
		Description:         "Join our development team and build modern web applications.",
		ApplicationDeadline: "2030-06-30",
		Tags:                []string{"React", " Node.js ", "React", ""},
	}, f.john)
	require.NoError(t, err)

	assert.Equal(t, "Software Developer", job.Title)
	assert.Equal(t, models.JobTypeFullTime, job.Type)
	assert.Equal(t, models.JobStatusActive, job.Status)
	assert.Equal(t, f.john.UserID, job.PostedBy)
	assert.Equal(t, models.Tags{"React", "Node.js"}, job.Tags)
	require.NotNil(t, job.ApplicationDeadline)
	assert.Equal(t, "2030-06-30", job.ApplicationDeadline.Format("2006-01-02"))
	require.NotNil(t, job.Poster)
	assert.Equal(t, "john@example.com", job.Poster.Email)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name  string
		edit  func(*CreateInput)
		field string
	}{
		{"short title", func(in *CreateInput) { in.Title = "Go" }, "title"},
		{"blank title", func(in *CreateInput) { in.Title = "   " }, "title"},
		{"long title", func(in *CreateInput) { in.Title = strings.Repeat("x", 201) }, "title"},
		{"short company", func(in *CreateInput) { in.Company = "X" }, "company"},
		{"missing location", func(in *CreateInput) { in.Location = "" }, "location"},
		{"bad type", func(in *CreateInput) { in.Type = "gig" }, "type"},
		{"short description", func(in *CreateInput) { in.Description = "Too short" }, "description"},
		{"long salary", func(in *CreateInput) { in.Salary = strings.Repeat("9", 51) }, "salary"},
		{"long experience", func(in *CreateInput) { in.Experience = strings.Repeat("9", 51) }, "experience"},
		{"long requirements", func(in *CreateInput) { in.Requirements = strings.Repeat("r", 2001) }, "requirements"},
		{"long benefits", func(in *CreateInput) { in.Benefits = strings.Repeat("b", 2001) }, "benefits"},
		{"bad deadline", func(in *CreateInput) { in.ApplicationDeadline = "next week" }, "applicationDeadline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput("Software Developer")
			tt.edit(&in)

			_, err := f.svc.Create(context.Background(), in, f.john)
			var verr *app.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestGetNotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, app.ErrNotFound)
	assert.Equal(t, "Job not found", app.Message(err))
}

func TestUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job, err := f.svc.Create(ctx, validInput("Software Developer"), f.john)
	require.NoError(t, err)

	title := "Senior Software Developer"
	closed := "closed"
	updated, err := f.svc.Update(ctx, job.ID, UpdateInput{Title: &title, Status: &closed, Tags: []string{}}, f.john)
	require.NoError(t, err)
	assert.Equal(t, "Senior Software Developer", updated.Title)
	assert.Equal(t, models.JobStatusClosed, updated.Status)
	assert.Equal(t, job.Company, updated.Company, "absent fields are unchanged")
	assert.Empty(t, updated.Tags)

	salary := "NPR 90,000"
	updated, err = f.svc.Update(ctx, job.ID, UpdateInput{Salary: &salary}, f.admin)
	require.NoError(t, err, "admins may update any job")
	assert.Equal(t, "NPR 90,000", updated.Salary)

	_, err = f.svc.Update(ctx, job.ID, UpdateInput{Salary: &salary}, f.jane)
	assert.ErrorIs(t, err, app.ErrForbidden)
	assert.Equal(t, "Not authorized to update this job", app.Message(err))

	deadline := "2031-01-01T09:00:00Z"
	updated, err = f.svc.Update(ctx, job.ID, UpdateInput{ApplicationDeadline: &deadline}, f.john)
	require.NoError(t, err)
	require.NotNil(t, updated.ApplicationDeadline)

	none := ""
	updated, err = f.svc.Update(ctx, job.ID, UpdateInput{ApplicationDeadline: &none}, f.john)
	require.NoError(t, err)
	assert.Nil(t, updated.ApplicationDeadline)
}

func TestUpdateCheckOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job, err := f.svc.Create(ctx, validInput("Software Developer"), f.john)
	require.NoError(t, err)

	short := "ab"
	_, err = f.svc.Update(ctx, 9999, UpdateInput{Title: &short}, f.jane)
	assert.ErrorIs(t, err, app.ErrInvalidArgument, "validation runs before the existence check")

	title := "Valid Title"
	_, err = f.svc.Update(ctx, 9999, UpdateInput{Title: &title}, f.jane)
	assert.ErrorIs(t, err, app.ErrNotFound, "existence runs before the ownership check")

	_, err = f.svc.Update(ctx, job.ID, UpdateInput{Title: &title}, f.jane)
	assert.ErrorIs(t, err, app.ErrForbidden)

	bad := "archived"
	_, err = f.svc.Update(ctx, job.ID, UpdateInput{Status: &bad}, f.john)
	assert.ErrorIs(t, err, app.ErrInvalidArgument)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	job, err := f.svc.Create(ctx, validInput("Software Developer"), f.john)
	require.NoError(t, err)

	application := &models.Application{JobID: job.ID, UserID: f.jane.UserID}
	require.NoError(t, f.store.CreateApplication(ctx, application))

	err = f.svc.Delete(ctx, job.ID, f.jane)
	assert.ErrorIs(t, err, app.ErrForbidden)
	assert.Equal(t, "Not authorized to delete this job", app.Message(err))

	require.NoError(t, f.svc.Delete(ctx, job.ID, f.john))
	_, err = f.svc.Get(ctx, job.ID)
	assert.ErrorIs(t, err, app.ErrNotFound)

	_, err = f.store.GetApplication(ctx, application.ID)
	assert.Error(t, err, "applications are removed with the job")

	assert.ErrorIs(t, f.svc.Delete(ctx, job.ID, f.admin), app.ErrNotFound)
}

func TestList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seed := []struct {
		title, company, location, typ string
	}{
		{"Marketing Manager", "Nepal Bank Limited", "Kathmandu", "full-time"},
		{"Sales Representative", "Ncell Axiata", "Pokhara", "full-time"},
		{"Accountant", "Nepal Airlines", "Kathmandu", "full-time"},
		{"Tour Guide", "Everest Trekking", "Lukla", "contract"},
		{"English Teacher", "Nepal English School", "Biratnagar", "part-time"},
		{"Software Developer", "Tech Solutions Nepal", "Remote", "remote"},
	}
	for _, s := range seed {
		in := validInput(s.title)
		in.Company, in.Location, in.Type = s.company, s.location, s.typ
		_, err := f.svc.Create(ctx, in, f.admin)
		require.NoError(t, err)
	}

	closed := "closed"
	page, err := f.svc.List(ctx, ListQuery{Search: "tour"})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	_, err = f.svc.Update(ctx, page.Jobs[0].ID, UpdateInput{Status: &closed}, f.admin)
	require.NoError(t, err)

	titles := func(p *Page) []string {
		out := []string{}
		for _, j := range p.Jobs {
			out = append(out, j.Title)
		}
		return out
	}

	t.Run("defaults to active", func(t *testing.T) {
		page, err := f.svc.List(ctx, ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, models.Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 5, ItemsPerPage: 10}, page.Pagination)
		assert.NotContains(t, titles(page), "Tour Guide")
	})

	t.Run("closed status", func(t *testing.T) {
		page, err := f.svc.List(ctx, ListQuery{Status: "closed"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Tour Guide"}, titles(page))
	})

	t.Run("search nepal sorted by title ascending", func(t *testing.T) {
		page, err := f.svc.List(ctx, ListQuery{Search: "nepal", SortBy: "title", SortOrder: "asc"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Accountant", "English Teacher", "Marketing Manager", "Software Developer"}, titles(page))
	})

	t.Run("type all is ignored", func(t *testing.T) {
		page, err := f.svc.List(ctx, ListQuery{Type: "all"})
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.Pagination.TotalItems)
	})

	t.Run("type and location", func(t *testing.T) {
		page, err := f.svc.List(ctx, ListQuery{Type: "full-time", Location: "KATHMANDU", SortBy: "company", SortOrder: "ASC"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Accountant", "Marketing Manager"}, titles(page))
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := f.svc.List(ctx, ListQuery{Page: intp(2), Limit: intp(2), SortBy: "title", SortOrder: "ASC"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Marketing Manager", "Sales Representative"}, titles(page))
		assert.Equal(t, models.Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 5, ItemsPerPage: 2}, page.Pagination)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := f.svc.List(ctx, ListQuery{Page: intp(9)})
		require.NoError(t, err)
		assert.Empty(t, page.Jobs)
		assert.Equal(t, int64(5), page.Pagination.TotalItems)
	})
}

func TestListValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		field string
		query ListQuery
	}{
		{"page", ListQuery{Page: intp(0)}},
		{"limit", ListQuery{Limit: intp(0)}},
		{"limit", ListQuery{Limit: intp(101)}},
		{"type", ListQuery{Type: "gig"}},
		{"status", ListQuery{Status: "archived"}},
		{"sortBy", ListQuery{SortBy: "password"}},
		{"sortOrder", ListQuery{SortOrder: "sideways"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %+v", tt.field, tt.query), func(t *testing.T) {
			_, err := f.svc.List(context.Background(), tt.query)
			var verr *app.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestListMine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, validInput(fmt.Sprintf("Johns Job %d", i)), f.john)
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, validInput("Admins Job"), f.admin)
	require.NoError(t, err)

	page, err := f.svc.ListMine(ctx, f.john, nil, intp(2))
	require.NoError(t, err)
	assert.Len(t, page.Jobs, 2)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	for _, job := range page.Jobs {
		assert.Equal(t, f.john.UserID, job.PostedBy)
	}

	_, err = f.svc.ListMine(ctx, f.john, intp(0), nil)
	assert.ErrorIs(t, err, app.ErrInvalidArgument)
}
