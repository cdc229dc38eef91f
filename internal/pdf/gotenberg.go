package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

const (
	chromiumHTMLRoute = "/forms/chromium/convert/html"
	gotenbergTimeout  = 60 * time.Second
	maxErrorBody      = 4 << 10
)

// quotePage holds the Chromium form fields of a quotation page: A4 portrait,
// inch margins with room at the bottom for the page footer.
var quotePage = map[string]string{
	"paperWidth":           "8.27",
	"paperHeight":          "11.7",
	"marginTop":            "0.5",
	"marginBottom":         "0.7",
	"marginLeft":           "0.5",
	"marginRight":          "0.5",
	"printBackground":      "true",
	"preferCssPageSize":    "false",
	"waitDelay":            "1s",
	"skipNetworkIdleEvent": "true",
}

// GotenbergClient prints quotations through a Gotenberg Chromium instance.
type GotenbergClient struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewGotenbergClient creates a client for the Gotenberg instance at baseURL.
// Basic auth is sent when both username and password are set.
func NewGotenbergClient(baseURL, username, password string) *GotenbergClient {
	return &GotenbergClient{
		baseURL:  baseURL,
		username: username,
		password: password,
		http:     &http.Client{Timeout: gotenbergTimeout},
	}
}

// ConvertQuote renders doc as HTML with its page footer and returns the PDF
// Gotenberg prints from it.
func (g *GotenbergClient) ConvertQuote(ctx context.Context, doc QuoteDocument) ([]byte, error) {
	page, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	for k, v := range quotePage {
		if err := form.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := addHTMLFile(form, "index.html", page); err != nil {
		return nil, err
	}
	if footer := footerHTML(doc); len(footer) > 0 {
		if err := addHTMLFile(form, "footer.html", footer); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	return g.post(ctx, chromiumHTMLRoute, body, form.FormDataContentType())
}

func (g *GotenbergClient) post(ctx context.Context, route string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+route, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if g.username != "" && g.password != "" {
		req.SetBasicAuth(g.username, g.password)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gotenberg %s: %w", route, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("gotenberg %s returned %d: %s", route, resp.StatusCode, bytes.TrimSpace(msg))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gotenberg response: %w", err)
	}
	return out, nil
}

// addHTMLFile attaches an HTML document to the "files" form field.
func addHTMLFile(w *multipart.Writer, filename string, content []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, filename))
	h.Set("Content-Type", "text/html")

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", filename, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("write part %s: %w", filename, err)
	}
	return nil
}
