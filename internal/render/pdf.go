package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/evidify/platform/internal/packet"
)

const (
	pdfMarginMm   = 18.0
	pdfLineHt     = 5.2
	pdfCellPad    = 1.4
	pdfHeaderFill = 238
)

type tocEntry struct {
	Title string
	Page  int
}

// PDF renders the packet as a paginated A4 document with a running header,
// page footer, and a table of contents. The layout is rendered twice: the
// first pass records section page numbers, the second fills the contents
// page. Both passes produce identical pagination because the contents page
// occupies exactly one page either way.
func PDF(p *packet.Packet, w io.Writer) error {
	sections := BuildSections(p)

	first := buildPDF(p, sections, nil)
	final := buildPDF(p, sections, first.tocEntries)
	return final.Output(w)
}

type pdfDoc struct {
	*gofpdf.Fpdf
	tocEntries []tocEntry
	usableW    float64
}

func buildPDF(p *packet.Packet, sections []Section, toc []tocEntry) *pdfDoc {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetMargins(pdfMarginMm, pdfMarginMm+8, pdfMarginMm)
	f.SetAutoPageBreak(true, pdfMarginMm+6)
	f.AliasNbPages("")

	pageW, _ := f.GetPageSize()
	doc := &pdfDoc{Fpdf: f, usableW: pageW - 2*pdfMarginMm}

	f.SetHeaderFuncMode(func() {
		f.SetFont("Helvetica", "I", 8)
		f.SetTextColor(90, 90, 90)
		f.CellFormat(doc.usableW/2, 5, "Expert Witness Packet "+p.ID, "", 0, "L", false, 0, "")
		f.CellFormat(doc.usableW/2, 5, p.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), "", 1, "R", false, 0, "")
		f.SetDrawColor(120, 120, 120)
		f.Line(pdfMarginMm, f.GetY()+1, pageW-pdfMarginMm, f.GetY()+1)
		f.Ln(4)
		f.SetTextColor(26, 26, 46)
	}, true)

	f.SetFooterFunc(func() {
		f.SetY(-14)
		f.SetFont("Helvetica", "I", 8)
		f.SetTextColor(90, 90, 90)
		f.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", f.PageNo()), "", 0, "C", false, 0, "")
	})

	doc.coverPage(p)
	doc.contentsPage(toc)

	for i, s := range sections {
		doc.section(i+1, s)
	}
	return doc
}

func (d *pdfDoc) coverPage(p *packet.Packet) {
	d.AddPage()
	d.Ln(50)
	d.SetFont("Helvetica", "B", 22)
	d.CellFormat(0, 12, "Expert Witness Packet", "", 1, "C", false, 0, "")
	d.SetFont("Helvetica", "", 12)
	d.Ln(6)
	d.CellFormat(0, 7, p.ID, "", 1, "C", false, 0, "")
	d.CellFormat(0, 7, "Case "+p.CaseID+"  /  Session "+p.SessionID, "", 1, "C", false, 0, "")
	d.CellFormat(0, 7, "Clinician "+p.ClinicianPseudonym, "", 1, "C", false, 0, "")
	d.Ln(14)
	d.SetFont("Helvetica", "I", 10)
	d.MultiCell(0, pdfLineHt,
		"This packet documents the diagnostic workflow of a single case under AI assistance. "+
			"It is generated from a cryptographically verifiable event record and is intended "+
			"to support a process-based legal defense.", "", "C", false)
}

func (d *pdfDoc) contentsPage(toc []tocEntry) {
	d.AddPage()
	d.SetFont("Helvetica", "B", 14)
	d.CellFormat(0, 9, "Contents", "", 1, "L", false, 0, "")
	d.Ln(3)

	d.SetFont("Helvetica", "", 11)
	for i, e := range toc {
		d.CellFormat(d.usableW-14, 7, fmt.Sprintf("%d.  %s", i+1, e.Title), "", 0, "L", false, 0, "")
		d.CellFormat(14, 7, fmt.Sprintf("%d", e.Page), "", 1, "R", false, 0, "")
	}
}

func (d *pdfDoc) section(n int, s Section) {
	d.AddPage()
	d.tocEntries = append(d.tocEntries, tocEntry{Title: s.Title, Page: d.PageNo()})

	d.SetFont("Helvetica", "B", 14)
	d.CellFormat(0, 9, fmt.Sprintf("%d. %s", n, s.Title), "B", 1, "L", false, 0, "")
	d.Ln(3)

	if len(s.Badges) > 0 {
		d.SetFont("Helvetica", "", 10)
		for _, badge := range s.Badges {
			d.SetFont("Helvetica", "B", 10)
			d.CellFormat(d.GetStringWidth(badge.Label+": ")+1, 6, badge.Label+": ", "", 0, "L", false, 0, "")
			d.SetFont("Helvetica", "", 10)
			d.CellFormat(0, 6, badge.Value, "", 1, "L", false, 0, "")
		}
		d.Ln(2)
	}

	d.SetFont("Helvetica", "", 10)
	for _, para := range s.Paragraphs {
		d.MultiCell(0, pdfLineHt, para, "", "L", false)
		d.Ln(2)
	}

	for _, t := range s.Tables {
		d.table(t)
		d.Ln(3)
	}
}

// table renders one table with manual pagination: the header row repeats
// after every page break and a row never splits across pages.
func (d *pdfDoc) table(t Table) {
	widths := d.columnWidths(t)

	d.SetFont("Helvetica", "B", 10)
	d.CellFormat(0, 6, t.Caption, "", 1, "L", false, 0, "")

	header := func() {
		d.SetFont("Helvetica", "B", 9)
		d.SetFillColor(pdfHeaderFill, pdfHeaderFill, pdfHeaderFill)
		for i, h := range t.Header {
			d.CellFormat(widths[i], 6.5, h, "1", 0, "L", true, 0, "")
		}
		d.Ln(-1)
	}
	header()

	d.SetFont("Helvetica", "", 9)
	_, pageH := d.GetPageSize()
	_, _, _, bottom := d.GetMargins()

	for _, row := range t.Rows {
		lines := make([][]string, len(row))
		rowLines := 1
		for i, cell := range row {
			lines[i] = d.SplitText(cell, widths[i]-2*pdfCellPad)
			if len(lines[i]) > rowLines {
				rowLines = len(lines[i])
			}
		}
		rowH := float64(rowLines)*pdfLineHt + 2*pdfCellPad

		if d.GetY()+rowH > pageH-bottom-6 {
			d.AddPage()
			header()
			d.SetFont("Helvetica", "", 9)
		}

		x, y := d.GetX(), d.GetY()
		for i := range row {
			d.Rect(x, y, widths[i], rowH, "D")
			d.SetXY(x+pdfCellPad, y+pdfCellPad)
			for _, line := range lines[i] {
				d.CellFormat(widths[i]-2*pdfCellPad, pdfLineHt, line, "", 2, "L", false, 0, "")
			}
			x += widths[i]
		}
		d.SetXY(pdfMarginMm, y+rowH)
	}
}

// columnWidths sizes columns by their longest cell, proportionally scaled to
// the usable width, with a floor so narrow columns stay readable.
func (d *pdfDoc) columnWidths(t Table) []float64 {
	d.SetFont("Helvetica", "", 9)
	max := make([]float64, len(t.Header))
	for i, h := range t.Header {
		max[i] = d.GetStringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(max) {
				break
			}
			if w := d.GetStringWidth(cell); w > max[i] {
				max[i] = w
			}
		}
	}

	total := 0.0
	for i := range max {
		if max[i] < 14 {
			max[i] = 14
		}
		if max[i] > d.usableW/2 {
			max[i] = d.usableW / 2
		}
		total += max[i]
	}

	widths := make([]float64, len(max))
	for i := range max {
		widths[i] = max[i] / total * d.usableW
	}
	return widths
}
