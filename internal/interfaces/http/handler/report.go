package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	reportapp "github.com/wms/backend/internal/application/report"
	"github.com/wms/backend/internal/infrastructure/scheduler"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// JobRunner is the part of the scheduler the report endpoints drive
type JobRunner interface {
	Trigger(ctx context.Context, name string) error
	States() []scheduler.JobState
}

// ReportHandler handles report-related API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.DailyReportService
	jobs          JobRunner
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.DailyReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// SetJobRunner sets the scheduler for job status and manual runs
func (h *ReportHandler) SetJobRunner(jobs JobRunner) {
	h.jobs = jobs
}

// JobStateResponse is the API view of a scheduled job
type JobStateResponse struct {
	Name        string     `json:"name" example:"daily-report-archive"`
	Schedule    string     `json:"schedule" example:"30 23 * * *"`
	Status      string     `json:"status" example:"SUCCESS"`
	Error       string     `json:"error,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`
	Runs        int        `json:"runs"`
	Failures    int        `json:"failures"`
}

// Daily godoc
// @ID           getDailyReport
// @Summary      End-of-day report
// @Description  Parcels, dispatches, cash and outstanding branch debt for one day. Today when date is omitted.
// @Tags         reports
// @Produce      json
// @Param        date query string false "YYYY-MM-DD"
// @Success      200 {object} APIResponse[reportapp.DailyReportResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	date, ok := h.queryDate(c, "date")
	if !ok {
		return
	}
	r, err := h.reportService.Daily(c.Request.Context(), date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Archive godoc
// @ID           archiveDailyReport
// @Summary      Archive a day's report now
// @Tags         reports
// @Param        date query string true "YYYY-MM-DD"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/daily/archive [post]
func (h *ReportHandler) Archive(c *gin.Context) {
	date, ok := h.queryDate(c, "date")
	if !ok {
		return
	}
	if date == nil {
		h.BadRequest(c, "date is required")
		return
	}
	if err := h.reportService.ArchiveDay(c.Request.Context(), *date); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Jobs godoc
// @ID           listScheduledJobs
// @Summary      Scheduled job status
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[[]JobStateResponse]
// @Security     BearerAuth
// @Router       /reports/jobs [get]
func (h *ReportHandler) Jobs(c *gin.Context) {
	if h.jobs == nil {
		h.Success(c, []JobStateResponse{})
		return
	}
	states := h.jobs.States()
	out := make([]JobStateResponse, 0, len(states))
	for _, st := range states {
		out = append(out, JobStateResponse{
			Name:        st.Name,
			Schedule:    st.Spec,
			Status:      string(st.Status),
			Error:       st.Error,
			LastRunAt:   st.LastRunAt,
			CompletedAt: st.CompletedAt,
			NextRunAt:   st.NextRunAt,
			Runs:        st.Runs,
			Failures:    st.Failures,
		})
	}
	h.Success(c, out)
}

// RunJob godoc
// @ID           runScheduledJob
// @Summary      Run a scheduled job immediately
// @Tags         reports
// @Param        name path string true "Job name"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/jobs/{name}/run [post]
func (h *ReportHandler) RunJob(c *gin.Context) {
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Scheduler is not enabled")
		return
	}
	err := h.jobs.Trigger(c.Request.Context(), c.Param("name"))
	switch {
	case err == nil:
		h.NoContent(c)
	case errors.Is(err, scheduler.ErrJobNotFound):
		h.NotFound(c, "Unknown job "+c.Param("name"))
	case errors.Is(err, scheduler.ErrJobAlreadyRunning):
		h.Error(c, http.StatusConflict, dto.ErrCodeConcurrencyConflict, "Job is already running")
	default:
		h.HandleError(c, err)
	}
}
