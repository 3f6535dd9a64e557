package render

import (
	"fmt"
	"strings"

	"github.com/evidify/platform/internal/packet"
)

// Narrative renders the packet as a plain-text expert report suitable for
// reading aloud or pasting into a filing. Tables become aligned columns;
// badges become a key/value preamble under each heading.
func Narrative(p *packet.Packet) string {
	var b strings.Builder

	b.WriteString("EXPERT WITNESS PACKET\n")
	b.WriteString(fmt.Sprintf("Generated %s\n", p.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")))
	b.WriteString(rule('='))

	for i, s := range BuildSections(p) {
		b.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, strings.ToUpper(s.Title)))
		b.WriteString(rule('-'))

		for _, badge := range s.Badges {
			b.WriteString(fmt.Sprintf("  %s: %s\n", badge.Label, badge.Value))
		}
		if len(s.Badges) > 0 {
			b.WriteString("\n")
		}

		for _, para := range s.Paragraphs {
			b.WriteString(wrap(para, 78))
			b.WriteString("\n\n")
		}

		for _, t := range s.Tables {
			writeTextTable(&b, t)
			b.WriteString("\n")
		}
	}

	b.WriteString(rule('='))
	b.WriteString("End of packet " + p.ID + "\n")
	return b.String()
}

func rule(ch byte) string {
	return strings.Repeat(string(ch), 78) + "\n"
}

// wrap breaks text on spaces at the given width, indenting every line by
// two spaces.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	line := "  " + words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			b.WriteString(line + "\n")
			line = "  " + w
			continue
		}
		line += " " + w
	}
	b.WriteString(line)
	return b.String()
}

func writeTextTable(b *strings.Builder, t Table) {
	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	// Cap the last column so long narrative cells do not blow out the layout.
	last := len(widths) - 1
	if widths[last] > 40 {
		widths[last] = 40
	}

	b.WriteString("  " + t.Caption + "\n")

	writeRow := func(cells []string) {
		b.WriteString("  ")
		for i, cell := range cells {
			if i == last {
				b.WriteString(cell)
				break
			}
			b.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
		}
		b.WriteString("\n")
	}

	writeRow(t.Header)
	sep := make([]string, len(t.Header))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sep)
	for _, row := range t.Rows {
		writeRow(row)
	}
}
