package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khrees2412/jobsphere/pkg/models"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, DriverPostgres)), mock
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"pq unique", &pq.Error{Code: "23505"}, ErrDuplicate},
		{"pq foreign key", &pq.Error{Code: "23503"}, ErrReference},
		{"pq other", &pq.Error{Code: "42601"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if tt.want == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}
	assert.NoError(t, translate(nil))
}

func TestPostgresDuplicateApplication(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO applications`)).
		WithArgs(int64(3), int64(7), models.StatusPending, "", "", sqlmock.AnyArg(), "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.CreateApplication(context.Background(), &models.Application{JobID: 3, UserID: 7})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlaceholdersAreRebound(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
		WithArgs("john@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "phone",
			"location", "experience", "skills", "created_at", "updated_at"}).
			AddRow(int64(2), "John Doe", "john@example.com", "hash", "user", "", "Kathmandu", "", "", now, now))

	user, err := store.GetUserByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateMissingJob(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE jobs SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateJob(context.Background(), &models.Job{ID: 99, Title: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListJobsQuery(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM jobs j WHERE j.status = $1 AND (LOWER(j.title) LIKE $2`)).
		WithArgs(models.JobStatusActive, `%50\%%`, `%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY j.salary DESC, j.id DESC LIMIT $5 OFFSET $6`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	jobs, total, err := store.ListJobs(context.Background(), JobFilter{
		Status:   models.JobStatusActive,
		Search:   "50%",
		SortBy:   SortSalary,
		SortDesc: true,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%kathmandu%`, likePattern("Kathmandu"))
	assert.Equal(t, `%a\_b\\c%`, likePattern(`a_b\c`))
}
