package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/arena-zones-backend/internal/middleware"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/service"
	"github.com/jengzang/arena-zones-backend/pkg/response"
)

// AnalysisTaskHandler handles HTTP requests for analysis tasks
type AnalysisTaskHandler struct {
	service *service.AnalysisService
}

// NewAnalysisTaskHandler creates a new analysis task handler
func NewAnalysisTaskHandler(service *service.AnalysisService) *AnalysisTaskHandler {
	return &AnalysisTaskHandler{service: service}
}

// CreateTask runs skills over the posted subjects and returns the finished task
// POST /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) CreateTask(c *gin.Context) {
	var req service.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	req.CreatedBy = c.GetString(middleware.UserKey)

	result, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}

// GetTask retrieves a task by ID
// GET /api/v1/analysis/tasks/:id
func (h *AnalysisTaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.service.GetTask(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, task)
}

// ListTasks retrieves tasks
// GET /api/v1/analysis/tasks
func (h *AnalysisTaskHandler) ListTasks(c *gin.Context) {
	var filter models.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	tasks, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"tasks":  tasks,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetMetrics returns the stored zone metrics of a task
// GET /api/v1/analysis/tasks/:id/metrics
func (h *AnalysisTaskHandler) GetMetrics(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var filter models.MetricsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	metrics, err := h.service.Metrics(c.Request.Context(), id, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, metrics)
}

// ListSkills lists the skills a task may request
// GET /api/v1/analysis/skills
func (h *AnalysisTaskHandler) ListSkills(c *gin.Context) {
	response.Success(c, gin.H{"skills": h.service.Skills()})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return id, true
}
