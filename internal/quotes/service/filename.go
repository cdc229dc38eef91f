package service

import (
	"strconv"
	"strings"
)

// pdfFileName is the download name of a rendered quote version,
// e.g. Sirkap_Quote_SQ-2405-001_v2.pdf.
func pdfFileName(orgPrefix, quoteNumber string, version int) string {
	return fileNamePart(orgPrefix) + "_Quote_" + fileNamePart(quoteNumber) + "_v" + strconv.Itoa(version) + ".pdf"
}

func fileNamePart(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "quote"
	}
	return b.String()
}
