// Package admin exposes the auto-ack rules, the last run status of each job and a
// manual trigger over HTTP.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/remiges-tech/errack/errack"
	"github.com/remiges-tech/errack/wscutils"
	"github.com/remiges-tech/logharbour/logharbour"
)

const ctxKeyJob = "errack.job"

// JobRunner is satisfied by *errack.Runner.
type JobRunner interface {
	Jobs() []string
	RunOnce(ctx context.Context, name string) (errack.Result, error)
}

// StatusReader is satisfied by *errack.StatusStore.
type StatusReader interface {
	LastRun(ctx context.Context, job string) (errack.RunStatus, error)
}

type Handler struct {
	registry *errack.Registry
	runner   JobRunner
	status   StatusReader
	logger   *logharbour.Logger
}

func NewHandler(registry *errack.Registry, runner JobRunner, status StatusReader, logger *logharbour.Logger) *Handler {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Handler{
		registry: registry,
		runner:   runner,
		status:   status,
		logger:   logger.WithModule("admin"),
	}
}

// RegisterHandlers mounts the admin routes under /errack.
func (h *Handler) RegisterHandlers(r gin.IRouter) {
	g := r.Group("/errack")
	g.GET("/rules", h.listRules)
	g.GET("/jobs", h.listJobs)
	g.GET("/status/:job", h.getStatus)
	g.POST("/run", h.runJob)
}

// NewRouter returns a gin engine serving the admin routes with recovery and request logging.
func NewRouter(h *Handler, logger *logharbour.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), LogRequest(logger))
	h.RegisterHandlers(r)
	return r
}

type RuleInfo struct {
	ErrorType string `json:"errortype"`
	Reason    string `json:"reason"`
}

func (h *Handler) listRules(c *gin.Context) {
	rules := h.registry.Rules()
	out := make([]RuleInfo, 0, len(rules))
	for _, rule := range rules {
		out = append(out, RuleInfo{ErrorType: rule.ErrorType(), Reason: rule.AckReason()})
	}
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(out))
}

func (h *Handler) listJobs(c *gin.Context) {
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(h.runner.Jobs()))
}

func (h *Handler) knownJob(name string) bool {
	for _, job := range h.runner.Jobs() {
		if job == name {
			return true
		}
	}
	return false
}

func (h *Handler) getStatus(c *gin.Context) {
	job := c.Param("job")
	c.Set(ctxKeyJob, job)

	if !h.knownJob(job) {
		wscutils.SendErrorResponse(c, http.StatusNotFound, wscutils.NewErrorResponse(wscutils.ErrcodeJobNotFound, job))
		return
	}

	status, err := h.status.LastRun(c.Request.Context(), job)
	if errors.Is(err, errack.ErrNoRunStatus) {
		wscutils.SendErrorResponse(c, http.StatusNotFound, wscutils.NewErrorResponse(wscutils.ErrcodeNoRunStatus, job))
		return
	}
	if err != nil {
		h.logger.Error(err).LogActivity("Failed to read run status", map[string]any{"job": job})
		wscutils.SendErrorResponse(c, http.StatusServiceUnavailable, wscutils.NewErrorResponse(wscutils.ErrcodeStatusFailed))
		return
	}
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(status))
}

// RunRequest is the data member of a POST /errack/run request.
type RunRequest struct {
	Job string `json:"job" validate:"required,max=128"`
}

type RunResponse struct {
	Job          string     `json:"job"`
	Acknowledged []int64    `json:"acknowledged"`
	Count        int        `json:"count"`
	NextRun      *time.Time `json:"nextrun,omitempty"`
}

func (h *Handler) runJob(c *gin.Context) {
	var req RunRequest
	if err := wscutils.BindJSON(c, &req); err != nil {
		return
	}

	if verrs := wscutils.WscValidate(req, func(err validator.FieldError) []string {
		if err.Param() == "" {
			return nil
		}
		return []string{err.Param()}
	}); len(verrs) > 0 {
		wscutils.SendErrorResponse(c, http.StatusBadRequest, wscutils.NewResponse(wscutils.ErrorStatus, nil, verrs))
		return
	}
	c.Set(ctxKeyJob, req.Job)

	res, err := h.runner.RunOnce(c.Request.Context(), req.Job)
	if errors.Is(err, errack.ErrJobNotFound) {
		wscutils.SendErrorResponse(c, http.StatusNotFound, wscutils.NewErrorResponse(wscutils.ErrcodeJobNotFound, req.Job))
		return
	}
	if err != nil {
		httpStatus := http.StatusInternalServerError
		var cfgErr *errack.ConfigurationError
		if errors.As(err, &cfgErr) {
			httpStatus = http.StatusUnprocessableEntity
		}
		h.logger.Error(err).LogActivity("Manual run failed", map[string]any{"job": req.Job})
		wscutils.SendErrorResponse(c, httpStatus, wscutils.NewErrorResponse(errack.Kind(err), err.Error()))
		return
	}

	out := RunResponse{
		Job:          req.Job,
		Acknowledged: res.Acknowledged,
		Count:        len(res.Acknowledged),
	}
	if out.Acknowledged == nil {
		out.Acknowledged = []int64{}
	}
	if next, ok := res.NextRun(); ok {
		out.NextRun = &next
	}
	h.logger.Info().LogActivity("Manual run completed", map[string]any{"job": req.Job, "acknowledged": out.Count})
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(out))
}
