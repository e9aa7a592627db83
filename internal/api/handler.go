package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/dipwatch/internal/domain/dto"
	"github.com/guttosm/dipwatch/internal/job"
)

// RunService is the part of job.Job the HTTP layer drives.
type RunService interface {
	Run(ctx context.Context) (*job.RunResult, error)
	Preview(ctx context.Context, threshold float64) (*job.PreviewResult, error)
}

// Handler provides HTTP handlers for triggering and previewing dip runs.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Interact with the job layer
//   - Translate job results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc RunService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc RunService) *Handler {
	return &Handler{svc: svc}
}

// TriggerRun handles POST /api/v1/runs requests.
//
// Responses:
//   - 200 OK: Returns RunResponse; dispatch failures are reported in notify_error.
//   - 502 Bad Gateway: Price data could not be fetched or a write to the archive failed.
//
// TriggerRun godoc
// @Summary      Run the dip check now
// @Description  Evaluates every configured ticker, notifies and archives when dips exceed the threshold
// @Tags         runs
// @Produce      json
// @Success      200  {object}  dto.RunResponse    "Success"
// @Failure      502  {object}  dto.ErrorResponse  "Upstream failure"
// @Router       /api/v1/runs [post]
func (h *Handler) TriggerRun(c *gin.Context) {
	res, err := h.svc.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse("run failed", err))
		return
	}

	resp := dto.RunResponse{
		RunID:      res.ID,
		Date:       res.Date,
		Threshold:  res.Threshold,
		Dips:       res.Dips,
		Notified:   res.Notified,
		Archived:   res.Archived,
		StartedAt:  res.StartedAt,
		DurationMs: res.Duration.Milliseconds(),
	}
	if res.NotifyError != nil {
		resp.NotifyError = res.NotifyError.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// GetDips handles GET /api/v1/dips requests.
//
// Query Parameters:
//   - threshold (number, optional): Dip percentage to apply instead of the configured one.
//
// Responses:
//   - 200 OK: Returns DipsResponse; nothing is sent or archived.
//   - 400 Bad Request: threshold is not a non-negative number.
//   - 502 Bad Gateway: Price data could not be fetched.
//
// GetDips godoc
// @Summary      Preview today's dips
// @Description  Evaluates every configured ticker without notifying or archiving
// @Tags         dips
// @Produce      json
// @Param        threshold  query     number  false  "Dip threshold in percent" example(10)
// @Success      200        {object}  dto.DipsResponse   "Success"
// @Failure      400        {object}  dto.ErrorResponse  "Bad Request"
// @Failure      502        {object}  dto.ErrorResponse  "Upstream failure"
// @Router       /api/v1/dips [get]
func (h *Handler) GetDips(c *gin.Context) {
	threshold := -1.0
	if s := c.Query("threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("threshold must be a non-negative number", err))
			return
		}
		threshold = v
	}

	p, err := h.svc.Preview(c.Request.Context(), threshold)
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse("failed to evaluate dips", err))
		return
	}

	c.JSON(http.StatusOK, dto.DipsResponse{
		Date:      p.Date,
		Threshold: p.Threshold,
		Dips:      p.Dips,
	})
}
