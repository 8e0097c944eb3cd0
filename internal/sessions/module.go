package sessions

import (
	callservice "callintake_backend/internal/calls/service"
	"callintake_backend/internal/dialogue"
	apphttp "callintake_backend/internal/http"
	"callintake_backend/platform/config"
	"callintake_backend/platform/logger"
	"callintake_backend/platform/validator"
)

// Config combines the config interfaces the sessions module needs.
type Config interface {
	config.DialogueConfig
	config.SessionConfig
}

// Module represents the live call sessions module
type Module struct {
	handler *Handler
	Manager *Manager
}

// NewModule creates a new sessions module with all dependencies wired.
func NewModule(cfg Config, calls *callservice.Service, log *logger.Logger, val *validator.Validator) *Module {
	newEngine := func() (*dialogue.Engine, error) {
		return dialogue.NewEngine(dialogue.Options{
			BusinessName:  cfg.GetBusinessName(),
			TemplatesPath: cfg.GetTemplatesPath(),
		})
	}

	manager := NewManager(newEngine, calls, log, cfg.GetSessionIdleTTL())
	h := NewHandler(manager, val)

	return &Module{
		handler: h,
		Manager: manager,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "sessions"
}

// RegisterRoutes registers the module's routes under /api/v1/sessions.
// The intake surface stays open; only the records API sits behind auth.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	sessions := ctx.V1.Group("/sessions")
	m.handler.RegisterRoutes(sessions)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
