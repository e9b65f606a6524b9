package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) routes() {
	r := s.engine
	r.Use(s.recovery(), requestID(), s.metrics.middleware(), s.accessLog(), s.cors())

	r.GET("/health", s.health)
	r.GET("/metrics", s.metrics.handler())

	api := r.Group("/api")
	api.GET("/health", s.health)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.limiter.middleware(), s.register)
	authGroup.POST("/login", s.limiter.middleware(), s.login)
	authGroup.GET("/profile", s.authenticate(), s.profile)
	authGroup.PUT("/profile", s.authenticate(), s.updateProfile)

	users := api.Group("/users", s.authenticate())
	users.GET("/profile", s.profile)
	users.PUT("/profile", s.updateProfile)

	jobsGroup := api.Group("/jobs")
	jobsGroup.GET("", s.listJobs)
	jobsGroup.GET("/user/jobs", s.authenticate(), s.listMyJobs)
	jobsGroup.GET("/:id", s.getJob)
	jobsGroup.POST("", s.authenticate(), s.createJob)
	jobsGroup.PUT("/:id", s.authenticate(), s.updateJob)
	jobsGroup.DELETE("/:id", s.authenticate(), s.deleteJob)

	applications := api.Group("/applications", s.authenticate())
	applications.POST("/jobs/:jobId/apply", s.apply)
	applications.GET("/user/applications", s.listMyApplications)
	applications.GET("/applications", requireAdmin(), s.listAllApplications)
	applications.GET("/:id", s.getApplication)
	applications.PUT("/:id/status", requireAdmin(), s.updateApplicationStatus)
	applications.DELETE("/:id", s.withdrawApplication)

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route not found")
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "JobSphere API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": s.cfg.Server.Env,
	})
}
