package pdf

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sirkap_backend/platform/logger"

	"github.com/shopspring/decimal"
)

func sampleDocument() QuoteDocument {
	return QuoteDocument{
		OrgName:       "Sirkap",
		QuoteNumber:   "SQ-2405-001",
		VersionNumber: 2,
		DateIssued:    "2024-05-14",
		Status:        "Draft",
		IsDraft:       true,
		ProjectName:   "Villa 12",
		PreparedBy:    "Sara",
		Client: DocumentClient{
			CompanyName:   "Acme Interiors",
			ContactPerson: "Omar",
			VATNumber:     "100200300",
		},
		Items: []DocumentItem{{
			Name:                "Oak chair",
			DescriptionHTML:     "<b>Solid</b> oak",
			Origin:              "Italy",
			Unit:                "pcs",
			Quantity:            decimal.NewFromInt(2),
			OriginalUnitPrice:   decimal.RequireFromString("150"),
			DiscountedUnitPrice: decimal.RequireFromString("125"),
			RowTotal:            decimal.RequireFromString("250"),
		}},
		VATApplicable: true,
		Subtotal:      decimal.RequireFromString("250"),
		VAT:           decimal.RequireFromString("12.5"),
		GrandTotal:    decimal.RequireFromString("262.5"),
		TermsHTML:     "<p>50% advance</p>",
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0.00",
		"262.5":     "262.50",
		"1234567.8": "1,234,567.80",
		"-1500":     "-1,500.00",
		"999":       "999.00",
	}
	for in, want := range cases {
		if got := FormatMoney(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatMoney(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderHTMLMarksDraftAndDiscount(t *testing.T) {
	html, err := RenderHTML(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(html)
	for _, want := range []string{"DRAFT", `class="strike"`, "150.00", "262.50", "<b>Solid</b> oak", "TRN: 100200300"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected html to contain %q", want)
		}
	}
}

func TestRenderHTMLEscapesPlainFields(t *testing.T) {
	doc := sampleDocument()
	doc.IsDraft = false
	doc.ProjectName = "<script>alert(1)</script>"
	html, err := RenderHTML(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(html)
	if strings.Contains(out, "<script>") {
		t.Fatal("expected project name to be escaped")
	}
	if strings.Contains(out, `class="watermark"`) {
		t.Fatal("expected no watermark on an issued quote")
	}
}

func TestGeneratePDF(t *testing.T) {
	out, err := GeneratePDF(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("expected PDF header")
	}
}

func TestRendererUsesGotenberg(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, "%PDF-remote")
	}))
	defer srv.Close()

	r := NewRenderer(NewGotenbergClient(srv.URL, "", ""), logger.NewWithWriter("test", io.Discard))
	out, err := r.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "%PDF-remote" {
		t.Fatalf("expected gotenberg output, got %q", out)
	}
	if gotPath != "/forms/chromium/convert/html" {
		t.Fatalf("unexpected path %s", gotPath)
	}
}

func TestRendererFallsBackWhenGotenbergFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRenderer(NewGotenbergClient(srv.URL, "", ""), logger.NewWithWriter("test", io.Discard))
	out, err := r.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("expected fallback PDF")
	}
}

func TestConvertQuoteSendsPageFooterAndLayout(t *testing.T) {
	var (
		fields = map[string]string{}
		files  = map[string]string{}
		user   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		for _, fh := range r.MultipartForm.File["files"] {
			f, _ := fh.Open()
			b, _ := io.ReadAll(f)
			_ = f.Close()
			files[fh.Filename] = string(b)
		}
		user, _, _ = r.BasicAuth()
		_, _ = io.WriteString(w, "%PDF-remote")
	}))
	defer srv.Close()

	out, err := NewGotenbergClient(srv.URL, "pdf", "secret").ConvertQuote(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "%PDF-remote" {
		t.Fatalf("unexpected output %q", out)
	}
	if user != "pdf" {
		t.Fatalf("expected basic auth user pdf, got %q", user)
	}
	if fields["paperWidth"] != "8.27" || fields["marginBottom"] != "0.7" {
		t.Fatalf("unexpected page layout %v", fields)
	}
	if !strings.Contains(files["index.html"], "SQ-2405-001") {
		t.Fatal("expected quote number in page")
	}
	if !strings.Contains(files["footer.html"], "SQ-2405-001 v2") || !strings.Contains(files["footer.html"], "pageNumber") {
		t.Fatalf("unexpected footer %q", files["footer.html"])
	}
}

func TestConvertQuoteReportsGotenbergStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewGotenbergClient(srv.URL, "", "").ConvertQuote(context.Background(), sampleDocument())
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "chromium crashed") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
