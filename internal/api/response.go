package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/khrees2412/jobsphere/internal/app"
	"github.com/khrees2412/jobsphere/pkg/models"
)

// envelope is the body of every JSON response
type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       interface{}        `json:"data,omitempty"`
	Errors     []app.FieldError   `json:"errors,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func page(c *gin.Context, data interface{}, p models.Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &p})
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// respondError maps an application error onto a status code and envelope.
// Unclassified errors are logged and reported as a generic 500.
func (s *Server) respondError(c *gin.Context, err error) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  verr.Fields,
		})
		return
	case errors.Is(err, app.ErrInvalidArgument), errors.Is(err, app.ErrConflict):
		fail(c, http.StatusBadRequest, app.Message(err))
	case errors.Is(err, app.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, app.Message(err))
	case errors.Is(err, app.ErrForbidden):
		fail(c, http.StatusForbidden, app.Message(err))
	case errors.Is(err, app.ErrNotFound):
		fail(c, http.StatusNotFound, app.Message(err))
	default:
		s.logger.WithError(err).WithFields(requestFields(c)).Error("request failed")
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
	_ = c.Error(err)
}

// bindJSON decodes the request body into dst. An empty body leaves dst at
// its zero value.
func bindJSON(c *gin.Context, dst interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			verr := &app.ValidationError{}
			verr.Add(typeErr.Field, "has the wrong type")
			return verr
		case errors.As(err, &syntaxErr):
			return app.Invalid("Malformed JSON body")
		}
		return app.Invalid("Invalid request body")
	}
	return nil
}

// pathID parses a positive integer route parameter
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		verr := &app.ValidationError{}
		verr.Add(name, "must be a positive integer")
		return 0, verr
	}
	return id, nil
}

// queryInts parses optional integer query parameters. Absent parameters stay
// nil; unparsable ones are reported together.
func queryInts(c *gin.Context, names ...string) (map[string]*int, error) {
	out := make(map[string]*int, len(names))
	verr := &app.ValidationError{}
	for _, name := range names {
		raw, present := c.GetQuery(name)
		if !present || raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add(name, "must be an integer")
			continue
		}
		out[name] = &v
	}
	return out, verr.OrNil()
}
