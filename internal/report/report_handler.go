package report

import (
	"net/http"
	"strconv"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/shared/apperror"
	"github.com/xnk3-aplus/360-Base/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("report request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// period reads year/month query params, defaulting to the current month.
func (h *Handler) period(c *gin.Context) (int, time.Month, bool) {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "year must be a number", nil)
			return 0, 0, false
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "month must be 1-12", nil)
			return 0, 0, false
		}
		month = time.Month(n)
	}
	return year, month, true
}

// Get returns the assembled report as JSON.
func (h *Handler) Get(c *gin.Context) {
	year, month, ok := h.period(c)
	if !ok {
		return
	}
	name := c.Param("name")
	h.logger.Debug("http get report", zap.String("employee", name))

	rep, err := h.service.Generate(c.Request.Context(), name, year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rep, nil)
}

// GetHTML returns the rendered email layout.
func (h *Handler) GetHTML(c *gin.Context) {
	year, month, ok := h.period(c)
	if !ok {
		return
	}

	rep, err := h.service.Generate(c.Request.Context(), c.Param("name"), year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	html, err := h.service.RenderHTML(rep)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Send generates the report and emails it to the employee.
func (h *Handler) Send(c *gin.Context) {
	year, month, ok := h.period(c)
	if !ok {
		return
	}
	name := c.Param("name")

	rep, err := h.service.Generate(c.Request.Context(), name, year, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if err := h.service.Send(c.Request.Context(), rep); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"run_id":    rep.RunID,
		"recipient": rep.Email,
	}, nil)
}

type runBatchRequest struct {
	Year    int  `json:"year" binding:"required,min=2000,max=2100"`
	Month   int  `json:"month" binding:"required,min=1,max=12"`
	Deliver bool `json:"deliver"`
}

// Run kicks off a whole-directory batch in the background and answers
// immediately; progress lands in the logs and on the event topic.
func (h *Handler) Run(c *gin.Context) {
	var req runBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http run batch validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid batch request", err.Error())
		return
	}

	go func() {
		// detach from the request context; the batch outlives the response
		ctx, cancel := newBatchContext()
		defer cancel()
		if _, err := h.service.RunBatch(ctx, req.Year, time.Month(req.Month), req.Deliver); err != nil {
			h.logger.Error("batch run failed", zap.Error(err))
		}
	}()

	response.Success(c, http.StatusAccepted, gin.H{"status": "started"}, nil)
}

// RefreshDirectory drops the cached directory and reloads it.
func (h *Handler) RefreshDirectory(c *gin.Context) {
	if err := h.service.RefreshDirectory(c.Request.Context()); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "refreshed"}, nil)
}
