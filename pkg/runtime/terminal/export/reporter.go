package export

import (
	"fmt"
	"io"
	"os"
	"text/template"
)

// RenderSummary describes one finished rendering pass for console
// output.
type RenderSummary struct {
	Patient    string
	OutputPath string
	SizeBytes  int
	Sessions   int
	Charts     int
}

// Reporter outputs render summaries to the console in a formatted
// text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(summary *RenderSummary) error {
	tmpl := `
Relatório gerado para {{.Patient}}

Arquivo: {{.OutputPath}} ({{.SizeBytes}} bytes)
Sessões: {{.Sessions}}
Gráficos: {{.Charts}}
`
	t, err := template.New("summary").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, summary)
}
