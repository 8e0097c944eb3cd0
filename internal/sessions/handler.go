package sessions

import (
	"net/http"

	"callintake_backend/platform/httpkit"
	"callintake_backend/platform/sanitize"
	"callintake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidSessionID = "invalid session id"
)

// Handler exposes live call sessions over HTTP.
type Handler struct {
	manager *Manager
	val     *validator.Validator
}

// NewHandler creates a sessions handler.
func NewHandler(manager *Manager, val *validator.Validator) *Handler {
	return &Handler{manager: manager, val: val}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Start)
	rg.POST("/:id/turns", h.Turn)
	rg.GET("/:id", h.State)
	rg.POST("/:id/end", h.End)
}

// Start handles POST /api/v1/sessions
func (h *Handler) Start(c *gin.Context) {
	id, greeting, err := h.manager.Start(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, StartResponse{SessionID: id, Greeting: greeting})
}

// Turn handles POST /api/v1/sessions/:id/turns
func (h *Handler) Turn(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	// Transcripts come from external speech providers; strip any markup
	// before the text reaches the engine or storage.
	req.Text = sanitize.Text(req.Text)

	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	reply, state, err := h.manager.Turn(c.Request.Context(), id, req.Text)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, TurnResponse{
		Reply:             reply,
		Stage:             state.Stage,
		EmergencyDetected: state.EmergencyDetected,
		Escalated:         state.Escalated,
		Confidence:        state.Context.Confidence,
	})
}

// State handles GET /api/v1/sessions/:id
func (h *Handler) State(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.manager.State(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, StateResponse{SessionID: id, State: state})
}

// End handles POST /api/v1/sessions/:id/end
func (h *Handler) End(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	record, err := h.manager.End(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, EndResponse{Record: record})
}

func (h *Handler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidSessionID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
