// Package catalog provides the catalog bounded context module.
package catalog

import (
	"sirkap_backend/internal/catalog/handler"
	"sirkap_backend/internal/catalog/repository"
	"sirkap_backend/internal/catalog/service"
	apphttp "sirkap_backend/internal/http"
	"sirkap_backend/platform/logger"
	"sirkap_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/catalog/products", m.handler.ListProducts)
	ctx.Protected.GET("/catalog/products/:id", m.handler.GetProductByID)
	ctx.Protected.GET("/catalog/products/:id/snapshot", m.handler.GetProductSnapshot)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
