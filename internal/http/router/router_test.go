package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "sirkap_backend/internal/http"
	"sirkap_backend/platform/config"
	"sirkap_backend/platform/httpkit"
	"sirkap_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/ping", func(c *gin.Context) {
		identity := httpkit.MustGetIdentity(c)
		if identity == nil {
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": identity.UserID()})
	})
	ctx.Admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": true})
	})
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config: &config.Config{
			JWTAccessSecret:    testSecret,
			CORSOrigins:        []string{"http://localhost:5173"},
			RateLimitPerSecond: 100,
			RateLimitBurst:     100,
		},
		Logger:  logger.NewWithWriter("test", io.Discard),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	})
}

func accessToken(t *testing.T, userID uuid.UUID, roles ...string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func get(engine http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := get(newTestEngine(healthFunc(func(context.Context) error { return nil })), "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = get(newTestEngine(healthFunc(func(context.Context) error { return errors.New("db down") })), "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine := newTestEngine(nil)

	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/ping", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/ping", "garbage").Code)

	userID := uuid.New()
	w := get(engine, "/api/v1/ping", accessToken(t, userID, "sales"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	engine := newTestEngine(nil)

	assert.Equal(t, http.StatusForbidden, get(engine, "/api/v1/admin/ping", accessToken(t, uuid.New(), "sales")).Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/admin/ping", accessToken(t, uuid.New(), "admin")).Code)
}
