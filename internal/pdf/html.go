package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

var quoteTemplate = template.Must(
	template.New("quote.html").Funcs(template.FuncMap{
		"money": FormatMoney,
		"qty":   formatQuantity,
		"inc":   func(i int) int { return i + 1 },
		// Rich text is sanitized before it reaches the document.
		"rich": func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(templateFS, "templates/quote.html"),
)

// Gotenberg fills the pageNumber and totalPages spans.
var footerTemplate = template.Must(template.New("footer").Parse(
	`<html><body style="font-size:8px;width:100%;text-align:center;color:#6b7280;">` +
		`{{.OrgName}} | {{.QuoteNumber}} v{{.VersionNumber}} | Page <span class="pageNumber"></span> of <span class="totalPages"></span>` +
		`</body></html>`,
))

func footerHTML(doc QuoteDocument) []byte {
	var buf bytes.Buffer
	if err := footerTemplate.Execute(&buf, doc); err != nil {
		return nil
	}
	return buf.Bytes()
}

// RenderHTML renders the document as a standalone HTML page.
func RenderHTML(doc QuoteDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render quote html: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatMoney prints an amount with thousands separators and two decimals: 12,345.60.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

func formatQuantity(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}
