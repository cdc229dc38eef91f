package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sirkap_backend/internal/events"
	"sirkap_backend/internal/quotes/domain"
	"sirkap_backend/internal/quotes/repository"
	"sirkap_backend/internal/quotes/service"
	"sirkap_backend/platform/apperr"
	"sirkap_backend/platform/httpkit"
	"sirkap_backend/platform/logger"
	"sirkap_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepository serves a fixed set of quotes. Methods the handler tests never
// reach fall through to the nil embedded interface.
type stubRepository struct {
	repository.Repository
	quotes map[uuid.UUID]domain.Quote
}

func (s *stubRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Quote, error) {
	q, ok := s.quotes[id]
	if !ok {
		return nil, apperr.NotFound("quote not found")
	}
	return &q, nil
}

func (s *stubRepository) HasRevision(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubRepository) ListNumbersWithPrefix(context.Context, string) ([]string, error) {
	return []string{"SQ-2405-004"}, nil
}

func (s *stubRepository) GetClient(_ context.Context, id uuid.UUID) (*repository.Client, error) {
	return &repository.Client{ID: id, CompanyName: "Acme Interiors"}, nil
}

func (s *stubRepository) GetUserName(context.Context, uuid.UUID) (string, error) {
	return "", apperr.NotFound("user not found")
}

type stubRenderer struct{}

func (stubRenderer) RenderQuote(context.Context, service.PDFDocument) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func sentQuote() domain.Quote {
	return domain.Quote{
		ID:            uuid.New(),
		QuoteNumber:   "SQ-2405-003",
		VersionNumber: 2,
		ClientID:      uuid.New(),
		Status:        domain.StatusSent,
		DateIssued:    time.Date(2024, time.May, 3, 0, 0, 0, 0, time.UTC),
		VATApplicable: true,
		Subtotal:      decimal.RequireFromString("250"),
		VATAmount:     decimal.RequireFromString("12.5"),
		GrandTotal:    decimal.RequireFromString("262.5"),
	}
}

func newTestRouter(t *testing.T, authenticated bool, quotes ...domain.Quote) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubRepository{quotes: make(map[uuid.UUID]domain.Quote)}
	for _, q := range quotes {
		repo.quotes[q.ID] = q
	}
	log := logger.NewWithWriter("test", io.Discard)
	svc := service.New(repo, events.NewInMemoryBus(log), validator.New(), log, service.Settings{OrgPrefix: "Sirkap", Location: time.UTC})
	svc.SetPDFRenderer(stubRenderer{})

	r := gin.New()
	group := r.Group("/api/v1/quotes")
	if authenticated {
		group.Use(func(c *gin.Context) {
			c.Set(httpkit.ContextUserIDKey, uuid.New())
			c.Set(httpkit.ContextRolesKey, []string{"sales"})
		})
	}
	New(svc, validator.New()).RegisterRoutes(group)
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetByIDReturnsTwoDecimalMoney(t *testing.T) {
	q := sentQuote()
	r := newTestRouter(t, true, q)

	w := perform(r, http.MethodGet, "/api/v1/quotes/"+q.ID.String(), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"grandTotal":262.50`)
	assert.Contains(t, w.Body.String(), `"dateIssued":"2024-05-03"`)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SQ-2405-003", resp["quoteNumber"])
	assert.Equal(t, "Sent", resp["status"])
}

func TestGetByIDRejectsMalformedID(t *testing.T) {
	r := newTestRouter(t, true)

	w := perform(r, http.MethodGet, "/api/v1/quotes/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgInvalidQuoteID)
}

func TestGetByIDUnknownQuote(t *testing.T) {
	r := newTestRouter(t, true)

	w := perform(r, http.MethodGet, "/api/v1/quotes/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNextNumberRouteIsNotShadowedByID(t *testing.T) {
	r := newTestRouter(t, true)

	w := perform(r, http.MethodGet, "/api/v1/quotes/next-number", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"SQ-`)
}

func TestCreateRejectsMalformedJSON(t *testing.T) {
	r := newTestRouter(t, true)

	w := perform(r, http.MethodPost, "/api/v1/quotes", `{"clientId":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgInvalidRequest)
}

func TestCreateReportsFieldViolations(t *testing.T) {
	r := newTestRouter(t, true)

	w := perform(r, http.MethodPost, "/api/v1/quotes", `{"projectName":"Villa","dateIssued":"03/05/2024"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Details []apperr.FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := make([]string, 0, len(resp.Details))
	for _, d := range resp.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"clientId", "dateIssued"}, fields)
}

func TestCreateMergesTagAndBusinessViolations(t *testing.T) {
	r := newTestRouter(t, true)

	body := `{"projectName":"Villa","items":[{"itemName":"` + strings.Repeat("x", 300) + `","quantity":0,"originalUnitPrice":5}]}`
	w := perform(r, http.MethodPost, "/api/v1/quotes", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Details []apperr.FieldError `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	fields := make([]string, 0, len(resp.Details))
	for _, d := range resp.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"items[0].itemName", "clientId", "items[0].quantity"}, fields)
}

func TestCreateRequiresAuthentication(t *testing.T) {
	r := newTestRouter(t, false)

	w := perform(r, http.MethodPost, "/api/v1/quotes", `{"clientId":"`+uuid.NewString()+`","items":[]}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateIssuedQuoteIsLocked(t *testing.T) {
	q := sentQuote()
	r := newTestRouter(t, true, q)

	w := perform(r, http.MethodPut, "/api/v1/quotes/"+q.ID.String(), `{"clientId":"`+q.ClientID.String()+`","items":[]}`)

	assert.Equal(t, http.StatusLocked, w.Code)
}

func TestDownloadPDFSetsAttachmentHeaders(t *testing.T) {
	q := sentQuote()
	r := newTestRouter(t, true, q)

	w := perform(r, http.MethodGet, "/api/v1/quotes/"+q.ID.String()+"/pdf", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypePDF, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Sirkap_Quote_SQ-2405-003_v2.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}
