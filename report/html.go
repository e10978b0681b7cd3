package report

import (
	"fmt"
	htmltemplate "html/template"
	"os"
	"path"
	"strings"

	"github.com/vdobler/rq/redact"
	"github.com/vdobler/rq/runner"
)

// HTML renders a static report page per file into dir, each with a
// waterfall SVG per entry (spec.md §6 "HTML report: static pages per file
// with a waterfall SVG per entry (timing bars, tooltip per call)."),
// grounded on the teacher's suite.HTMLReport / html/template page chrome
// (suite/report.go) generalized to this engine's Call/Capture/Assert
// shape. The waterfall itself is hand-drawn SVG <rect> bars: no SVG or
// charting library appears anywhere in the example pack. Every
// entry/call/assert/error value rendered into the page is run through
// redactor first (spec.md §4.10); redactor may be nil.
func HTML(dir string, results []runner.FileResult, redactor *redact.Redactor) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	pageTmpl := newHTMLPageTmpl(redactor)
	for i, fr := range results {
		name := fmt.Sprintf("report-%d.html", i)
		f, err := os.Create(path.Join(dir, name))
		if err != nil {
			return err
		}
		err = pageTmpl.Execute(f, htmlPageData{File: fr})
		f.Close()
		if err != nil {
			return err
		}
	}
	return writeIndex(dir, results)
}

type htmlPageData struct {
	File runner.FileResult
}

func writeIndex(dir string, results []runner.FileResult) error {
	f, err := os.Create(path.Join(dir, "index.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return htmlIndexTmpl.Execute(f, results)
}

// newHTMLPageTmpl builds the per-file page template with "redact" and
// "waterfall" bound to this run's redactor, so every string interpolated
// into the page has already passed through it.
func newHTMLPageTmpl(redactor *redact.Redactor) *htmltemplate.Template {
	funcs := htmltemplate.FuncMap{
		"waterfall": func(er runner.EntryResult) htmltemplate.HTML { return waterfallSVG(er, redactor) },
		"redact":    func(s string) string { return redact.ApplyOrNot(redactor, s) },
	}
	return htmltemplate.Must(htmltemplate.New("page").Funcs(funcs).Parse(htmlPageSrc))
}

// waterfallSVG draws one horizontal bar per call in an entry, scaled to
// the longest call duration in that entry.
func waterfallSVG(er runner.EntryResult, redactor *redact.Redactor) htmltemplate.HTML {
	const width = 480
	const barHeight = 18

	var maxMS float64
	for _, c := range er.Calls {
		if ms := durationMS(c.Response.Duration); ms > maxMS {
			maxMS = ms
		}
	}
	if maxMS <= 0 {
		maxMS = 1
	}

	var b strings.Builder
	h := len(er.Calls)*(barHeight+4) + 4
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, width, h)
	for i, c := range er.Calls {
		ms := durationMS(c.Response.Duration)
		w := int(ms / maxMS * float64(width-80))
		if w < 1 {
			w = 1
		}
		y := i * (barHeight + 4)
		fill := "#4a90d9"
		if c.Response.Status >= 400 {
			fill = "#d9534f"
		}
		url := redact.ApplyOrNot(redactor, c.Request.URL)
		fmt.Fprintf(&b,
			`<rect x="0" y="%d" width="%d" height="%d" fill="%s"><title>%s %s - %d (%.1fms)</title></rect>`+
				`<text x="%d" y="%d" font-size="12">%.1fms</text>`,
			y, w, barHeight, fill,
			htmltemplate.HTMLEscapeString(c.Request.Method), htmltemplate.HTMLEscapeString(url),
			c.Response.Status, ms,
			w+4, y+barHeight-4, ms)
	}
	b.WriteString("</svg>")
	return htmltemplate.HTML(b.String())
}

const htmlPageSrc = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.File.Path}}</title></head>
<body>
<h1>{{.File.Path}}</h1>
<p>Success: {{.File.Success}} &mdash; Duration: {{.File.Duration}}</p>
{{range .File.Entries}}
<div class="entry">
  <h2>Entry {{.EntryIndex}} &mdash; {{.Status}}</h2>
  {{waterfall .}}
  {{if .Asserts}}
  <ul>
    {{range .Asserts}}<li class="{{if .Passed}}pass{{else}}fail{{end}}">{{.Description}}{{if not .Passed}}: {{redact .Message}}{{end}}</li>{{end}}
  </ul>
  {{end}}
  {{if .Errors}}
  <ul class="errors">
    {{range .Errors}}<li>{{.Stage}}: {{redact (printf "%v" .Err)}}</li>{{end}}
  </ul>
  {{end}}
</div>
{{end}}
</body></html>
`

var htmlIndexTmpl = htmltemplate.Must(htmltemplate.New("index").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Report</title></head>
<body>
<h1>Run report</h1>
<ul>
{{range $i, $f := .}}<li><a href="report-{{$i}}.html">{{$f.Path}}</a> &mdash; {{if $f.Success}}pass{{else}}fail{{end}}</li>{{end}}
</ul>
</body></html>
`))
