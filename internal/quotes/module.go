// Package quotes provides the quotation domain module.
package quotes

import (
	"sirkap_backend/internal/events"
	apphttp "sirkap_backend/internal/http"
	"sirkap_backend/internal/quotes/handler"
	"sirkap_backend/internal/quotes/repository"
	"sirkap_backend/internal/quotes/service"
	"sirkap_backend/platform/logger"
	"sirkap_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger, settings service.Settings) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, val, log, settings)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
