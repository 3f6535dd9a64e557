package render

import (
	"html/template"
	"strings"

	"github.com/evidify/platform/internal/packet"
)

// htmlDocument is the styled single-file report. Styling is embedded so the
// file remains self-contained when detached from the service.
const htmlDocument = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Expert Witness Packet {{.ID}}</title>
<style>
  body { font-family: Georgia, "Times New Roman", serif; color: #1a1a2e; max-width: 900px; margin: 2em auto; padding: 0 1.5em; line-height: 1.55; }
  header { border-bottom: 3px double #1a1a2e; padding-bottom: 1em; margin-bottom: 2em; }
  header h1 { margin: 0 0 .2em; font-size: 1.6em; letter-spacing: .04em; }
  header .meta { color: #555; font-size: .9em; }
  section { margin-bottom: 2.5em; page-break-inside: avoid; }
  h2 { font-size: 1.2em; border-bottom: 1px solid #999; padding-bottom: .3em; }
  .badges { margin: .8em 0; }
  .badge { display: inline-block; background: #eef1f6; border: 1px solid #c6cbd4; border-radius: 4px; padding: .2em .6em; margin: 0 .5em .4em 0; font-size: .85em; }
  .badge b { font-weight: 600; }
  table { border-collapse: collapse; width: 100%; margin: 1em 0; font-size: .9em; }
  caption { caption-side: top; text-align: left; font-weight: 600; padding-bottom: .4em; }
  th, td { border: 1px solid #c6cbd4; padding: .35em .6em; text-align: left; vertical-align: top; }
  th { background: #eef1f6; }
  footer { border-top: 1px solid #999; margin-top: 3em; padding-top: 1em; color: #555; font-size: .85em; }
</style>
</head>
<body>
<header>
  <h1>Expert Witness Packet</h1>
  <div class="meta">Packet {{.ID}} &middot; generated {{.Generated}}</div>
</header>
{{range .Sections}}<section>
  <h2>{{.Title}}</h2>
  {{if .Badges}}<div class="badges">
  {{range .Badges}}  <span class="badge"><b>{{.Label}}:</b> {{.Value}}</span>
  {{end}}</div>{{end}}
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}{{range .Tables}}<table>
    <caption>{{.Caption}}</caption>
    <thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
    {{end}}</tbody>
  </table>
  {{end}}</section>
{{end}}<footer>End of packet {{.ID}}. This document was generated from the structured packet record; the narrative, styled, and paginated renditions carry identical facts.</footer>
</body>
</html>
`

var htmlTmpl = template.Must(template.New("packet").Parse(htmlDocument))

type htmlData struct {
	ID        string
	Generated string
	Sections  []Section
}

// HTML renders the packet as a self-contained styled document.
func HTML(p *packet.Packet) (string, error) {
	var b strings.Builder
	err := htmlTmpl.Execute(&b, htmlData{
		ID:        p.ID,
		Generated: p.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		Sections:  BuildSections(p),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
