// Package calls provides the call records domain module.
package calls

import (
	"callintake_backend/internal/calls/handler"
	"callintake_backend/internal/calls/repository"
	"callintake_backend/internal/calls/service"
	"callintake_backend/internal/events"
	apphttp "callintake_backend/internal/http"
	"callintake_backend/platform/logger"
	"callintake_backend/platform/validator"
)

// Module represents the call records domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new calls module with all dependencies wired.
// The store is assembled by the composition root so the module stays
// agnostic of which backends are available.
func NewModule(store repository.Store, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	svc := service.New(store, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "calls"
}

// RegisterRoutes registers the module's routes under /api/v1/calls
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	calls := ctx.Protected.Group("/calls")
	m.handler.RegisterRoutes(calls)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
