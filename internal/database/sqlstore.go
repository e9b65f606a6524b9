package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/khrees2412/jobsphere/pkg/models"
)

// SQLStore implements Store on SQLite or PostgreSQL. Queries are written
// with ? placeholders and rebound for the active driver.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a Store using the provided database handle
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// translate maps driver errors onto the storage sentinels
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", ErrReference, err)
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		case "23503":
			return fmt.Errorf("%w: %v", ErrReference, err)
		}
	}
	return err
}

func affected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

// User operations

const userColumns = `id, name, email, password_hash, role, phone, location, experience, skills, created_at, updated_at`

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	query := s.db.Rebind(`INSERT INTO users (name, email, password_hash, role, phone, location, experience, skills, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role,
		user.Phone, user.Location, user.Experience, user.Skills, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	return translate(err)
}

func (s *SQLStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, user, query, id); err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := s.db.GetContext(ctx, user, query, email); err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (s *SQLStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := s.db.Rebind(`UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?, phone = ?,
		location = ?, experience = ?, skills = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role,
		user.Phone, user.Location, user.Experience, user.Skills, user.UpdatedAt, user.ID)
	if err != nil {
		return translate(err)
	}
	return affected(result)
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *SQLStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// Job operations

const jobSelect = `SELECT j.id, j.title, j.company, j.location, j.type, j.salary, j.experience,
	j.description, j.requirements, j.benefits, j.status, j.posted_by, j.application_deadline,
	j.tags, j.created_at, j.updated_at, u.name AS poster_name, u.email AS poster_email
	FROM jobs j
	LEFT JOIN users u ON u.id = j.posted_by`

var jobSortColumns = map[string]string{
	SortCreatedAt: "j.created_at",
	SortTitle:     "j.title",
	SortCompany:   "j.company",
	SortLocation:  "j.location",
	SortSalary:    "j.salary",
}

type jobRow struct {
	models.Job
	PosterName  sql.NullString `db:"poster_name"`
	PosterEmail sql.NullString `db:"poster_email"`
}

func (r *jobRow) model() *models.Job {
	job := r.Job
	if job.Tags == nil {
		job.Tags = models.Tags{}
	}
	if r.PosterName.Valid {
		job.Poster = &models.UserSummary{ID: job.PostedBy, Name: r.PosterName.String, Email: r.PosterEmail.String}
	}
	return &job
}

func (s *SQLStore) CreateJob(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Type == "" {
		job.Type = models.JobTypeFullTime
	}
	if job.Status == "" {
		job.Status = models.JobStatusActive
	}
	if job.Tags == nil {
		job.Tags = models.Tags{}
	}

	query := s.db.Rebind(`INSERT INTO jobs (title, company, location, type, salary, experience, description,
		requirements, benefits, status, posted_by, application_deadline, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowxContext(ctx, query, job.Title, job.Company, job.Location, job.Type, job.Salary,
		job.Experience, job.Description, job.Requirements, job.Benefits, job.Status, job.PostedBy,
		job.ApplicationDeadline, job.Tags, job.CreatedAt, job.UpdatedAt).Scan(&job.ID)
	return translate(err)
}

func (s *SQLStore) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	var row jobRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(jobSelect+` WHERE j.id = ?`), id); err != nil {
		return nil, translate(err)
	}
	return row.model(), nil
}

func (s *SQLStore) UpdateJob(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	query := s.db.Rebind(`UPDATE jobs SET title = ?, company = ?, location = ?, type = ?, salary = ?,
		experience = ?, description = ?, requirements = ?, benefits = ?, status = ?,
		application_deadline = ?, tags = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, job.Title, job.Company, job.Location, job.Type, job.Salary,
		job.Experience, job.Description, job.Requirements, job.Benefits, job.Status,
		job.ApplicationDeadline, job.Tags, job.UpdatedAt, job.ID)
	if err != nil {
		return translate(err)
	}
	return affected(result)
}

// DeleteJob removes a job and its applications in one transaction
func (s *SQLStore) DeleteJob(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM applications WHERE job_id = ?`), id); err != nil {
		return translate(err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM jobs WHERE id = ?`), id)
	if err != nil {
		return translate(err)
	}
	if err := affected(result); err != nil {
		return err
	}
	return tx.Commit()
}

func jobWhere(filter JobFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.Status != "" {
		clauses = append(clauses, "j.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		clauses = append(clauses, "j.type = ?")
		args = append(args, filter.Type)
	}
	if filter.PostedBy != 0 {
		clauses = append(clauses, "j.posted_by = ?")
		args = append(args, filter.PostedBy)
	}
	if filter.Location != "" {
		clauses = append(clauses, `LOWER(j.location) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(filter.Location))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		clauses = append(clauses, `(LOWER(j.title) LIKE ? ESCAPE '\' OR LOWER(j.company) LIKE ? ESCAPE '\' OR LOWER(j.description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *SQLStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int64, error) {
	where, args := jobWhere(filter)

	var total int64
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM jobs j`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	column, ok := jobSortColumns[filter.SortBy]
	if !ok || filter.SortBy == SortCreatedAt {
		column = jobSortColumns[SortCreatedAt]
	} else if s.db.DriverName() == DriverSQLite {
		column += " COLLATE " + FoldCollation
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query := jobSelect + where + fmt.Sprintf(" ORDER BY %s %s, j.id %s", column, direction, direction)
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows := []jobRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]*models.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rows[i].model())
	}
	return jobs, total, nil
}

// Application operations

const applicationColumns = `a.id, a.job_id, a.user_id, a.status, a.cover_letter, a.resume, a.applied_at,
	a.reviewed_at, a.reviewed_by, a.notes, a.interview_date, a.interview_location, a.created_at, a.updated_at`

const applicationSelect = `SELECT ` + applicationColumns + `,
	j.title AS job_title, j.company AS job_company, j.location AS job_location, j.type AS job_type,
	j.salary AS job_salary, j.description AS job_description,
	u.name AS applicant_name, u.email AS applicant_email, u.phone AS applicant_phone,
	u.location AS applicant_location, u.experience AS applicant_experience, u.skills AS applicant_skills,
	r.name AS reviewer_name, r.email AS reviewer_email
	FROM applications a
	LEFT JOIN jobs j ON j.id = a.job_id
	LEFT JOIN users u ON u.id = a.user_id
	LEFT JOIN users r ON r.id = a.reviewed_by`

type applicationRow struct {
	models.Application
	JobTitle            sql.NullString `db:"job_title"`
	JobCompany          sql.NullString `db:"job_company"`
	JobLocation         sql.NullString `db:"job_location"`
	JobType             sql.NullString `db:"job_type"`
	JobSalary           sql.NullString `db:"job_salary"`
	JobDescription      sql.NullString `db:"job_description"`
	ApplicantName       sql.NullString `db:"applicant_name"`
	ApplicantEmail      sql.NullString `db:"applicant_email"`
	ApplicantPhone      sql.NullString `db:"applicant_phone"`
	ApplicantLocation   sql.NullString `db:"applicant_location"`
	ApplicantExperience sql.NullString `db:"applicant_experience"`
	ApplicantSkills     sql.NullString `db:"applicant_skills"`
	ReviewerName        sql.NullString `db:"reviewer_name"`
	ReviewerEmail       sql.NullString `db:"reviewer_email"`
}

func (r *applicationRow) model() *models.Application {
	application := r.Application
	if r.JobTitle.Valid {
		application.Job = &models.JobSummary{
			ID:          application.JobID,
			Title:       r.JobTitle.String,
			Company:     r.JobCompany.String,
			Location:    r.JobLocation.String,
			Type:        models.JobType(r.JobType.String),
			Salary:      r.JobSalary.String,
			Description: r.JobDescription.String,
		}
	}
	if r.ApplicantName.Valid {
		application.Applicant = &models.UserSummary{
			ID:         application.UserID,
			Name:       r.ApplicantName.String,
			Email:      r.ApplicantEmail.String,
			Phone:      r.ApplicantPhone.String,
			Location:   r.ApplicantLocation.String,
			Experience: r.ApplicantExperience.String,
			Skills:     r.ApplicantSkills.String,
		}
	}
	if application.ReviewedBy != nil && r.ReviewerName.Valid {
		application.Reviewer = &models.UserSummary{
			ID:    *application.ReviewedBy,
			Name:  r.ReviewerName.String,
			Email: r.ReviewerEmail.String,
		}
	}
	return &application
}

func (s *SQLStore) CreateApplication(ctx context.Context, application *models.Application) error {
	now := time.Now().UTC()
	if application.AppliedAt.IsZero() {
		application.AppliedAt = now
	}
	application.CreatedAt = now
	application.UpdatedAt = now
	if application.Status == "" {
		application.Status = models.StatusPending
	}

	query := s.db.Rebind(`INSERT INTO applications (job_id, user_id, status, cover_letter, resume, applied_at,
		notes, interview_location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := s.db.QueryRowxContext(ctx, query, application.JobID, application.UserID, application.Status,
		application.CoverLetter, application.Resume, application.AppliedAt, application.Notes,
		application.InterviewLocation, application.CreatedAt, application.UpdatedAt).Scan(&application.ID)
	return translate(err)
}

func (s *SQLStore) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	var row applicationRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind(applicationSelect+` WHERE a.id = ?`), id); err != nil {
		return nil, translate(err)
	}
	return row.model(), nil
}

func (s *SQLStore) GetApplicationByJobAndUser(ctx context.Context, jobID, userID int64) (*models.Application, error) {
	var row applicationRow
	query := s.db.Rebind(applicationSelect + ` WHERE a.job_id = ? AND a.user_id = ?`)
	if err := s.db.GetContext(ctx, &row, query, jobID, userID); err != nil {
		return nil, translate(err)
	}
	return row.model(), nil
}

func (s *SQLStore) UpdateApplication(ctx context.Context, application *models.Application) error {
	application.UpdatedAt = time.Now().UTC()
	query := s.db.Rebind(`UPDATE applications SET status = ?, cover_letter = ?, resume = ?, reviewed_at = ?,
		reviewed_by = ?, notes = ?, interview_date = ?, interview_location = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, application.Status, application.CoverLetter, application.Resume,
		application.ReviewedAt, application.ReviewedBy, application.Notes, application.InterviewDate,
		application.InterviewLocation, application.UpdatedAt, application.ID)
	if err != nil {
		return translate(err)
	}
	return affected(result)
}

func (s *SQLStore) DeleteApplication(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM applications WHERE id = ?`), id)
	if err != nil {
		return translate(err)
	}
	return affected(result)
}

func applicationWhere(filter ApplicationFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.UserID != 0 {
		clauses = append(clauses, "a.user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.JobID != 0 {
		clauses = append(clauses, "a.job_id = ?")
		args = append(args, filter.JobID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "a.status = ?")
		args = append(args, filter.Status)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *SQLStore) ListApplications(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error) {
	where, args := applicationWhere(filter)

	var total int64
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM applications a`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	query := applicationSelect + where + " ORDER BY a.applied_at DESC, a.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows := []applicationRow{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	applications := make([]*models.Application, 0, len(rows))
	for i := range rows {
		applications = append(applications, rows[i].model())
	}
	return applications, total, nil
}
