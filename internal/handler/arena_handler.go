package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/arena-zones-backend/internal/middleware"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/service"
	"github.com/jengzang/arena-zones-backend/pkg/response"
)

// ArenaHandler handles HTTP requests for arenas
type ArenaHandler struct {
	arenas   *service.ArenaService
	analysis *service.AnalysisService
}

// NewArenaHandler creates a new arena handler
func NewArenaHandler(arenas *service.ArenaService, analysis *service.AnalysisService) *ArenaHandler {
	return &ArenaHandler{arenas: arenas, analysis: analysis}
}

// CreateArena stores a new arena configuration
// POST /api/v1/arenas
func (h *ArenaHandler) CreateArena(c *gin.Context) {
	var cfg models.ArenaConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	created, err := h.arenas.Create(c.Request.Context(), cfg, c.GetString(middleware.UserKey))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, created)
}

// ListArenas lists stored arenas
// GET /api/v1/arenas
func (h *ArenaHandler) ListArenas(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}

	arenas, err := h.arenas.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"arenas": arenas,
		"limit":  limit,
		"offset": offset,
	})
}

// GetArena returns one arena configuration
// GET /api/v1/arenas/:id
func (h *ArenaHandler) GetArena(c *gin.Context) {
	arena, err := h.arenas.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, arena)
}

// GetGeometry returns the resolved zone shapes of an arena
// GET /api/v1/arenas/:id/geometry
func (h *ArenaHandler) GetGeometry(c *gin.Context) {
	layout, err := h.arenas.Layout(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	data := gin.H{
		"arena_id": layout.ArenaID(),
		"zones":    layout.Zones(),
		"warnings": layout.Warnings(),
	}
	if scale, ok := layout.Scale(); ok {
		data["scale"] = scale
	}
	response.Success(c, data)
}

// DeleteArena removes an arena with its tasks and metrics
// DELETE /api/v1/arenas/:id
func (h *ArenaHandler) DeleteArena(c *gin.Context) {
	if err := h.arenas.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Arena deleted successfully"})
}

// ClassifyRequest carries the positions to label
type ClassifyRequest struct {
	Positions []models.PositionSample `json:"positions" binding:"required"`
}

// Classify labels positions with the zones they fall in
// POST /api/v1/arenas/:id/classify
func (h *ArenaHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	rows, err := h.analysis.Classify(c.Request.Context(), c.Param("id"), req.Positions)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"rows": rows})
}
