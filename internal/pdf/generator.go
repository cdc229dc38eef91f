package pdf

import (
	"bytes"
	"fmt"

	"sirkap_backend/platform/sanitize"

	"github.com/jung-kurt/gofpdf"
)

// Column widths of the item table in mm; they add up to the 190mm body width.
var itemCols = []struct {
	title string
	width float64
	align string
}{
	{"#", 8, "C"},
	{"Item", 70, "L"},
	{"Origin", 22, "L"},
	{"Qty", 16, "R"},
	{"Unit", 16, "L"},
	{"Unit price", 28, "R"},
	{"Total", 30, "R"},
}

const (
	lineHeight = 5.0
	bodyWidth  = 190.0
)

// GeneratePDF renders doc in-process with gofpdf. Rich text is flattened
// to plain text.
func GeneratePDF(doc QuoteDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(107, 114, 128)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s  |  %s v%d  |  Page %d/{nb}", doc.OrgName, doc.QuoteNumber, doc.VersionNumber, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if doc.IsDraft {
		drawWatermark(pdf, "DRAFT")
	}

	writeHeader(pdf, tr, doc)
	writeParties(pdf, tr, doc)
	writeItems(pdf, tr, doc)
	writeTotals(pdf, tr, doc)
	writeTerms(pdf, tr, doc)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build quote pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write quote pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawWatermark(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "B", 90)
	pdf.SetTextColor(248, 215, 215)
	pdf.TransformBegin()
	pdf.TransformRotate(35, 105, 160)
	pdf.Text(45, 185, text)
	pdf.TransformEnd()
	pdf.SetTextColor(17, 24, 39)
}

func writeHeader(pdf *gofpdf.Fpdf, tr func(string) string, doc QuoteDocument) {
	pdf.SetTextColor(17, 24, 39)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(110, 9, tr(doc.OrgName), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 9, tr(fmt.Sprintf("%s (v%d)", doc.QuoteNumber, doc.VersionNumber)), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(110, 6, "Quotation", "", 0, "L", false, 0, "")
	pdf.CellFormat(80, 6, tr("Date: "+doc.DateIssued+"   Status: "+doc.Status), "", 1, "R", false, 0, "")
	pdf.SetTextColor(17, 24, 39)

	y := pdf.GetY() + 2
	pdf.SetDrawColor(17, 24, 39)
	pdf.Line(10, y, 10+bodyWidth, y)
	pdf.Ln(6)
}

func writeParties(pdf *gofpdf.Fpdf, tr func(string) string, doc QuoteDocument) {
	top := pdf.GetY()

	lines := []string{doc.Client.CompanyName}
	if doc.Client.ContactPerson != "" {
		lines = append(lines, "Attn: "+doc.Client.ContactPerson)
	}
	for _, v := range []string{doc.Client.Address, doc.Client.Email, doc.Client.Phone} {
		if v != "" {
			lines = append(lines, v)
		}
	}
	if doc.Client.VATNumber != "" {
		lines = append(lines, "TRN: "+doc.Client.VATNumber)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(95, 5, "Prepared for", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, l := range lines {
		pdf.CellFormat(95, lineHeight, tr(l), "", 1, "L", false, 0, "")
	}
	leftBottom := pdf.GetY()

	pdf.SetXY(110, top)
	if doc.ProjectName != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(90, 5, "Project", "", 2, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(90, lineHeight, tr(doc.ProjectName), "", "L", false)
		pdf.SetX(110)
	}
	if doc.PreparedBy != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(90, 5, "Prepared by", "", 2, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(90, lineHeight, tr(doc.PreparedBy), "", 1, "L", false, 0, "")
	}

	if pdf.GetY() < leftBottom {
		pdf.SetY(leftBottom)
	}
	pdf.Ln(6)
}

func writeItems(pdf *gofpdf.Fpdf, tr func(string) string, doc QuoteDocument) {
	writeItemHeader(pdf)

	pdf.SetFont("Arial", "", 9)
	for i, it := range doc.Items {
		text := it.Name
		if desc := sanitize.StripHTML(it.DescriptionHTML); desc != "" {
			text += "\n" + desc
		}
		nameLines := pdf.SplitLines([]byte(tr(text)), itemCols[1].width-2)
		rowHeight := float64(len(nameLines)) * lineHeight
		if it.IsDiscounted() {
			rowHeight = maxFloat(rowHeight, 2*lineHeight)
		}

		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+rowHeight > pageHeight-bottom-10 {
			pdf.AddPage()
			writeItemHeader(pdf)
			pdf.SetFont("Arial", "", 9)
		}

		x, y := pdf.GetXY()
		cells := []string{
			fmt.Sprintf("%d", i+1),
			"",
			it.Origin,
			formatQuantity(it.Quantity),
			it.Unit,
			"",
			FormatMoney(it.RowTotal),
		}
		cx := x
		for c, col := range itemCols {
			pdf.Rect(cx, y, col.width, rowHeight, "D")
			switch c {
			case 1:
				for l, line := range nameLines {
					pdf.SetXY(cx+1, y+float64(l)*lineHeight)
					if l == 0 {
						pdf.SetFont("Arial", "B", 9)
					}
					pdf.CellFormat(col.width-2, lineHeight, string(line), "", 0, "L", false, 0, "")
					pdf.SetFont("Arial", "", 9)
				}
			case 5:
				writeUnitPrice(pdf, cx, y, col.width, it)
			default:
				pdf.SetXY(cx, y)
				pdf.CellFormat(col.width, lineHeight, tr(cells[c]), "", 0, col.align, false, 0, "")
			}
			cx += col.width
		}
		pdf.SetXY(x, y+rowHeight)
	}
	pdf.Ln(4)
}

func writeItemHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(241, 245, 249)
	for i, col := range itemCols {
		ln := 0
		if i == len(itemCols)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 7, col.title, "1", ln, col.align, true, 0, "")
	}
}

// writeUnitPrice prints the selling price, with the original price struck
// through above it when a discount applies.
func writeUnitPrice(pdf *gofpdf.Fpdf, x, y, width float64, it DocumentItem) {
	if it.IsDiscounted() {
		original := FormatMoney(it.OriginalUnitPrice)
		pdf.SetTextColor(107, 114, 128)
		pdf.SetXY(x, y)
		pdf.CellFormat(width-1, lineHeight, original, "", 0, "R", false, 0, "")
		w := pdf.GetStringWidth(original)
		lineY := y + lineHeight/2
		pdf.SetDrawColor(107, 114, 128)
		pdf.Line(x+width-1-w, lineY, x+width-1, lineY)
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetTextColor(17, 24, 39)
		y += lineHeight
	}
	pdf.SetXY(x, y)
	pdf.CellFormat(width-1, lineHeight, FormatMoney(it.DiscountedUnitPrice), "", 0, "R", false, 0, "")
}

func writeTotals(pdf *gofpdf.Fpdf, tr func(string) string, doc QuoteDocument) {
	rows := [][2]string{{"Subtotal", FormatMoney(doc.Subtotal)}}
	if doc.VATApplicable {
		rows = append(rows, [2]string{"VAT (5%)", FormatMoney(doc.VAT)})
	}
	if doc.DeliveryApplicable {
		rows = append(rows, [2]string{"Delivery", FormatMoney(doc.Delivery)})
	}

	pdf.SetFont("Arial", "", 10)
	for _, r := range rows {
		pdf.SetX(120)
		pdf.CellFormat(45, 6, tr(r[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, r[1], "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetX(120)
	pdf.CellFormat(45, 8, "Grand total (AED)", "T", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, FormatMoney(doc.GrandTotal), "T", 1, "R", false, 0, "")
	pdf.Ln(6)
}

func writeTerms(pdf *gofpdf.Fpdf, tr func(string) string, doc QuoteDocument) {
	terms := sanitize.StripHTML(doc.TermsHTML)
	if terms == "" {
		return
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Terms and conditions", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.MultiCell(bodyWidth, 4, tr(terms), "", "L", false)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
