// Package handler exposes the calls module over HTTP.
package handler

import (
	"net/http"

	"callintake_backend/internal/calls/service"
	"callintake_backend/internal/calls/transport"
	"callintake_backend/platform/httpkit"
	"callintake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for call records.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new calls handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the call record routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Save)
	rg.GET("", h.List)
	rg.GET("/emergencies", h.ListEmergencies)
	rg.GET("/critical", h.ListCritical)
	rg.GET("/stats", h.Stats)
	rg.DELETE("", h.Clear)
}

// Save handles POST /api/v1/calls
func (h *Handler) Save(c *gin.Context) {
	var req transport.SaveCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	record := req.ToRecord()
	if err := h.svc.Save(c.Request.Context(), record); httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, record)
}

// List handles GET /api/v1/calls
func (h *Handler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ListResponse{Calls: records, Count: len(records)})
}

// ListEmergencies handles GET /api/v1/calls/emergencies
func (h *Handler) ListEmergencies(c *gin.Context) {
	records, err := h.svc.ListEmergencies(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ListResponse{Calls: records, Count: len(records)})
}

// ListCritical handles GET /api/v1/calls/critical
func (h *Handler) ListCritical(c *gin.Context) {
	records, err := h.svc.ListCritical(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ListResponse{Calls: records, Count: len(records)})
}

// Stats handles GET /api/v1/calls/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, stats)
}

// Clear handles DELETE /api/v1/calls
func (h *Handler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "cleared"})
}
