package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khrees2412/jobsphere/internal/applicator"
	"github.com/khrees2412/jobsphere/internal/auth"
	"github.com/khrees2412/jobsphere/internal/jobs"
	"github.com/khrees2412/jobsphere/pkg/models"
)

// sessionResponse carries token and user at the top level, next to the
// usual success flag.
type sessionResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

func (s *Server) register(c *gin.Context) {
	var in auth.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	session, err := s.auth.Register(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   session.Token,
		User:    session.User,
	})
}

func (s *Server) login(c *gin.Context) {
	var in auth.LoginInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	session, err := s.auth.Login(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		Success: true,
		Message: "Login successful",
		Token:   session.Token,
		User:    session.User,
	})
}

func (s *Server) profile(c *gin.Context) {
	id, _ := identity(c)
	user, err := s.auth.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var in auth.ProfileInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	user, err := s.auth.UpdateProfile(c.Request.Context(), id.UserID, in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Profile updated successfully", user)
}

func (s *Server) listJobs(c *gin.Context) {
	ints, err := queryInts(c, "page", "limit")
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := s.jobs.List(c.Request.Context(), jobs.ListQuery{
		Search:    c.Query("search"),
		Type:      c.Query("type"),
		Location:  c.Query("location"),
		Status:    c.Query("status"),
		Page:      ints["page"],
		Limit:     ints["limit"],
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	page(c, result.Jobs, result.Pagination)
}

func (s *Server) listMyJobs(c *gin.Context) {
	ints, err := queryInts(c, "page", "limit")
	if err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	result, err := s.jobs.ListMine(c.Request.Context(), id, ints["page"], ints["limit"])
	if err != nil {
		s.respondError(c, err)
		return
	}
	page(c, result.Jobs, result.Pagination)
}

func (s *Server) getJob(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	job, err := s.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", job)
}

func (s *Server) createJob(c *gin.Context) {
	var in jobs.CreateInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	job, err := s.jobs.Create(c.Request.Context(), in, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Job created successfully", job)
}

func (s *Server) updateJob(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var in jobs.UpdateInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	job, err := s.jobs.Update(c.Request.Context(), jobID, in, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Job updated successfully", job)
}

func (s *Server) deleteJob(c *gin.Context) {
	jobID, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	if err := s.jobs.Delete(c.Request.Context(), jobID, id); err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Job deleted successfully", nil)
}

func (s *Server) apply(c *gin.Context) {
	jobID, err := pathID(c, "jobId")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var in applicator.ApplyInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	application, err := s.applications.Apply(c.Request.Context(), jobID, in, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Application submitted successfully", application)
}

func (s *Server) applicationQuery(c *gin.Context, withJob bool) (applicator.ListQuery, error) {
	names := []string{"page", "limit"}
	if withJob {
		names = append(names, "jobId")
	}
	ints, err := queryInts(c, names...)
	if err != nil {
		return applicator.ListQuery{}, err
	}
	q := applicator.ListQuery{
		Status: c.Query("status"),
		Page:   ints["page"],
		Limit:  ints["limit"],
	}
	if v := ints["jobId"]; v != nil {
		q.JobID = int64(*v)
	}
	return q, nil
}

func (s *Server) listMyApplications(c *gin.Context) {
	q, err := s.applicationQuery(c, false)
	if err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	result, err := s.applications.ListMine(c.Request.Context(), id, q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	page(c, result.Applications, result.Pagination)
}

func (s *Server) listAllApplications(c *gin.Context) {
	q, err := s.applicationQuery(c, true)
	if err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	result, err := s.applications.ListAll(c.Request.Context(), q, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	page(c, result.Applications, result.Pagination)
}

func (s *Server) getApplication(c *gin.Context) {
	appID, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	application, err := s.applications.Get(c.Request.Context(), appID, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "", application)
}

func (s *Server) updateApplicationStatus(c *gin.Context) {
	appID, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	var in applicator.StatusInput
	if err := bindJSON(c, &in); err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	application, err := s.applications.UpdateStatus(c.Request.Context(), appID, in, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Application status updated successfully", application)
}

func (s *Server) withdrawApplication(c *gin.Context) {
	appID, err := pathID(c, "id")
	if err != nil {
		s.respondError(c, err)
		return
	}
	id, _ := identity(c)
	if err := s.applications.Withdraw(c.Request.Context(), appID, id); err != nil {
		s.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Application withdrawn successfully", nil)
}
