// Package api exposes the JobSphere REST API over gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/internal/applicator"
	"github.com/khrees2412/jobsphere/internal/auth"
	"github.com/khrees2412/jobsphere/internal/config"
	"github.com/khrees2412/jobsphere/internal/jobs"
)

// Server is the HTTP front end of the job board
type Server struct {
	cfg          *config.Config
	logger       *logrus.Logger
	engine       *gin.Engine
	auth         *auth.Service
	jobs         *jobs.Service
	applications *applicator.Service
	limiter      *rateLimiter
	metrics      *metrics
}

// New wires the services of a onto a gin engine
func New(a *app.App) *Server {
	if a.Config.Server.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	} else if a.Config.Server.Env == config.EnvTest {
		gin.SetMode(gin.TestMode)
	}

	tokens := auth.NewTokenManager(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL, a.Config.Auth.Issuer)
	s := &Server{
		cfg:          a.Config,
		logger:       a.Logger,
		engine:       gin.New(),
		auth:         auth.NewService(a.Store, tokens, a.Config.Auth.BcryptCost, a.Logger),
		jobs:         jobs.NewService(a.Store, a.Logger),
		applications: applicator.NewService(a.Store, a.Logger),
		limiter:      newRateLimiter(a.Config.RateLimit.RPS, a.Config.RateLimit.Burst),
		metrics:      newMetrics(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr": srv.Addr,
			"env":  s.cfg.Server.Env,
		}).Info("JobSphere API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case err, open := <-errCh:
			if open {
				return err
			}
			return nil
		case <-sweep.C:
			s.limiter.cleanup(10 * time.Minute)
		case <-ctx.Done():
			s.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
}
