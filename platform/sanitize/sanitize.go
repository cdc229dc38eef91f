// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Rich-text allow-list used by quotation descriptions and terms.
var allowedTags = map[atom.Atom]bool{
	atom.B:      true,
	atom.I:      true,
	atom.Em:     true,
	atom.Strong: true,
	atom.Ul:     true,
	atom.Ol:     true,
	atom.Li:     true,
	atom.P:      true,
	atom.Br:     true,
	atom.U:      true,
	atom.Span:   true,
}

// Elements whose text content is dropped along with the tag.
var discardContent = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Noscript: true,
	atom.Textarea: true,
	atom.Title:    true,
}

var allowedStyles = map[string]map[string]bool{
	"text-decoration": {"underline": true},
	"text-align":      {"left": true, "right": true, "center": true, "justify": true},
}

// RichText keeps the formatting tags an editor produces and drops everything else.
// Text content of disallowed tags is kept, except for script-like elements.
func RichText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	var out bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if discardContent[tok.DataAtom] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 || !allowedTags[tok.DataAtom] {
				continue
			}
			writeStartTag(&out, tok, tt == html.SelfClosingTagToken || tok.DataAtom == atom.Br)
		case html.EndTagToken:
			if discardContent[tok.DataAtom] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth > 0 || !allowedTags[tok.DataAtom] || tok.DataAtom == atom.Br {
				continue
			}
			out.WriteString("</")
			out.WriteString(tok.DataAtom.String())
			out.WriteByte('>')
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			out.WriteString(html.EscapeString(tok.Data))
		}
	}

	return strings.TrimSpace(out.String())
}

func writeStartTag(out *bytes.Buffer, tok html.Token, selfClosing bool) {
	out.WriteByte('<')
	out.WriteString(tok.DataAtom.String())
	for _, attr := range tok.Attr {
		if attr.Namespace != "" {
			continue
		}
		switch strings.ToLower(attr.Key) {
		case "class":
			class := strings.Join(strings.Fields(attr.Val), " ")
			if class == "" {
				continue
			}
			writeAttr(out, "class", class)
		case "style":
			if style := filterStyle(attr.Val); style != "" {
				writeAttr(out, "style", style)
			}
		}
	}
	if selfClosing {
		out.WriteString(" /")
	}
	out.WriteByte('>')
}

func writeAttr(out *bytes.Buffer, key, val string) {
	out.WriteByte(' ')
	out.WriteString(key)
	out.WriteString(`="`)
	out.WriteString(html.EscapeString(val))
	out.WriteByte('"')
}

func filterStyle(style string) string {
	kept := make([]string, 0, 2)
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		if allowedStyles[prop][val] {
			kept = append(kept, prop+": "+val)
		}
	}
	return strings.Join(kept, "; ")
}

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
// Entities are decoded once; markup that only appears after decoding is stripped too.
func StripHTML(s string) string {
	// Re-strip after entity decode to catch encoded tags
	return stripTags(stripTags(s, true), false)
}

// stripTags drops tags and script-like content. decode selects decoded or raw text.
func stripTags(s string, decode bool) string {
	var out strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		tok := z.Token()
		switch tt {
		case html.StartTagToken:
			if discardContent[tok.DataAtom] {
				skipDepth++
			}
		case html.EndTagToken:
			if discardContent[tok.DataAtom] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			if decode {
				out.WriteString(tok.Data)
			} else {
				out.WriteString(raw)
			}
		}
	}
	return strings.TrimSpace(out.String())
}

// Text sanitizes a string for safe text storage by stripping HTML.
// Use for plain fields like project names and units.
func Text(s string) string {
	return StripHTML(s)
}
