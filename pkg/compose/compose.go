// Package compose assembles the full report markup from pre-sanitized
// view data. It is pure templating: every free-text field in Document
// must already have passed pkg/sanitize, and chart specs are embedded
// as JSON (encoding/json escapes HTML-significant characters on its
// own). The package never re-escapes.
package compose

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
)

//go:embed templates/report.html.tmpl
var templates embed.FS

// DefaultChartJSURL is the charting library loaded by the document.
// Overridable for air-gapped deployments.
const DefaultChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"

// FooterDateID is the id of the placeholder node the render driver
// fills with the generation date.
const FooterDateID = "generated-date"

// Document is the deterministic input of one composition pass. All
// string fields are pre-sanitized.
type Document struct {
	PatientName   string
	TherapistName string
	ChartJSURL    string
	Score         *ScoreView
	Fields        []FieldView
	Charts        []ChartView
	History       []HistoryRow
	Narrative     NarrativeView
}

type ScoreView struct {
	Value         string
	CSSClass      string
	TotalSessions int
	Velocity      string
}

type FieldView struct {
	Name     string
	Value    string
	CSSClass string
}

// ChartView is one chart block: a uniquely identified mount point
// plus the JSON spec its bootstrap script instantiates.
type ChartView struct {
	MountID  string
	Title    string
	Subtitle string
	SpecJSON string
}

type HistoryRow struct {
	Date         string
	Therapy      string
	Average      string
	Glyph        string
	CSSClass     string
	Observations string
}

type NarrativeView struct {
	Headline string
	Body     string
	Fields   []NarrativeField
}

type NarrativeField struct {
	Field       string
	Explanation string
	Suggestions []string
}

var reportTmpl = template.Must(template.ParseFS(templates, "templates/report.html.tmpl"))

// Compose renders the document markup. The result is consumed once by
// the render driver and never persisted.
func Compose(doc Document) (string, error) {
	if doc.ChartJSURL == "" {
		doc.ChartJSURL = DefaultChartJSURL
	}
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return buf.String(), nil
}

// SpecJSON marshals v for inline embedding inside a script block.
// encoding/json escapes <, > and & by default, so the payload cannot
// terminate the surrounding script element.
func SpecJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal chart spec: %w", err)
	}
	return string(b), nil
}

// MountID returns the deterministic mount point id for chart i.
func MountID(i int) string {
	return fmt.Sprintf("chart-%d", i)
}
