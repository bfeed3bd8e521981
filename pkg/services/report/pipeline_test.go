package report

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtherapy/report-engine/pkg/models/domain"
	"github.com/qtherapy/report-engine/pkg/render"
)

// instantPage renders everything immediately, so pipeline tests never
// wait on poll budgets.
type instantPage struct {
	closeCalls int
	markup     string
}

func (p *instantPage) SetContent(_ context.Context, markup string) error {
	p.markup = markup
	return nil
}

func (p *instantPage) Eval(_ context.Context, _ string, out any) error {
	if b, ok := out.(*bool); ok {
		*b = true
	}
	return nil
}

func (p *instantPage) PrintToPDF(_ context.Context, _ render.PDFOptions) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

func (p *instantPage) Close() error {
	p.closeCalls++
	return nil
}

type countingEngine struct {
	launches int
	page     *instantPage
}

func (e *countingEngine) Launch(_ context.Context) (render.Page, error) {
	e.launches++
	return e.page, nil
}

func testGenerator(engine render.Engine) *Generator {
	driver := render.NewDriver(engine, render.Options{
		ChartLibraryTimeout: 50 * time.Millisecond,
		ChartTimeout:        50 * time.Millisecond,
		PollInterval:        time.Millisecond,
		SettleDelay:         time.Millisecond,
	})
	return NewGenerator(driver, Options{})
}

func score(v float64) *float64 { return &v }

func validRequest() domain.ReportRequest {
	return domain.ReportRequest{
		PatientName:   "Maria Silva",
		TherapistName: "Dr. Souza",
		Analysis: &domain.AnalysisSummary{
			OverallScore:  score(82),
			TotalSessions: 4,
			FieldIndices: map[string]domain.FieldIndex{
				"Foco": {Current: 8},
				"Sono": {Current: 4.5},
			},
			CriticalFields: []string{"Sono"},
		},
		Sessions: []domain.SessionRecord{
			{
				TherapyID:   "reiki",
				SessionDate: "2026-08-20",
				Results:     map[string]any{"Foco": "8", "Energia": 6.5},
			},
		},
		Therapies: map[string]domain.Therapy{
			"reiki": {Name: "Reiki", SuggestedVisualization: "radar"},
		},
	}
}

func TestGenerate_EndToEnd(t *testing.T) {
	page := &instantPage{}
	engine := &countingEngine{page: page}
	g := testGenerator(engine)

	artifact, err := g.Generate(context.Background(), validRequest())
	require.NoError(t, err)

	today := time.Now().Format("2006-01-02")
	assert.Equal(t, fmt.Sprintf("relatorio_quantico_Maria_Silva_%s.pdf", today), artifact.Filename)
	assert.NotEmpty(t, artifact.Bytes)
	assert.Equal(t, 1, engine.launches)
	assert.Equal(t, 1, page.closeCalls, "engine released exactly once on success")

	// the composed markup crossed the sanitizer and carries the chart
	assert.Contains(t, page.markup, "Maria Silva")
	assert.Contains(t, page.markup, `id="chart-0"`)
	assert.Contains(t, page.markup, `"kind":"radar"`)
}

func TestGenerate_MissingPatientNameFailsFast(t *testing.T) {
	engine := &countingEngine{page: &instantPage{}}
	g := testGenerator(engine)

	req := validRequest()
	req.PatientName = "  "

	_, err := g.Generate(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	assert.Zero(t, engine.launches, "no engine may be launched before validation passes")
}

func TestGenerate_MissingAnalysisFailsFast(t *testing.T) {
	engine := &countingEngine{page: &instantPage{}}
	g := testGenerator(engine)

	req := validRequest()
	req.Analysis = nil

	_, err := g.Generate(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
	assert.Zero(t, engine.launches)
}

func TestGenerate_MarkupIsSanitized(t *testing.T) {
	page := &instantPage{}
	g := testGenerator(&countingEngine{page: page})

	req := validRequest()
	req.PatientName = `Maria <script>alert("x")</script>`
	req.Sessions[0].GeneralObservations = `observação & "aspas"`

	_, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotContains(t, page.markup, "<script>alert")
	assert.Contains(t, page.markup, "&lt;script&gt;")
	assert.Contains(t, page.markup, "observação &amp; &quot;aspas&quot;")
}

func TestGenerate_SessionWithoutMetricsKeepsHistoryRowButNoChart(t *testing.T) {
	page := &instantPage{}
	g := testGenerator(&countingEngine{page: page})

	req := validRequest()
	req.Sessions = append(req.Sessions, domain.SessionRecord{
		TherapyID:   "reiki",
		SessionDate: "2026-08-27",
		Results:     map[string]any{"Foco": "0", "Sono": "abc"},
	})

	_, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, page.markup, "2026-08-27")
	assert.Contains(t, page.markup, `id="chart-0"`)
	assert.NotContains(t, page.markup, `id="chart-1"`)
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "relatorio_quantico_Maria_Silva_2026-08-31.pdf", Filename("Maria Silva", at))
	assert.Equal(t, "relatorio_quantico_Ana_2026-08-31.pdf", Filename("  Ana  ", at))
}

func TestHistoryRows_CappedAtFifteenNewestFirst(t *testing.T) {
	page := &instantPage{}
	g := testGenerator(&countingEngine{page: page})

	req := validRequest()
	req.Sessions = nil
	for i := 1; i <= 20; i++ {
		req.Sessions = append(req.Sessions, domain.SessionRecord{
			TherapyID:   "reiki",
			SessionDate: fmt.Sprintf("2026-07-%02d", i),
			Results:     map[string]any{"Foco": 6},
		})
	}

	_, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotContains(t, page.markup, "2026-07-05", "oldest rows dropped")
	assert.Contains(t, page.markup, "2026-07-06")
	assert.Contains(t, page.markup, "2026-07-20")
	// newest first
	assert.Less(t,
		strings.Index(page.markup, "<td>2026-07-20</td>"),
		strings.Index(page.markup, "<td>2026-07-06</td>"))
}

func TestFieldTiles_CappedAtNineSorted(t *testing.T) {
	page := &instantPage{}
	g := testGenerator(&countingEngine{page: page})

	req := validRequest()
	req.Sessions = nil
	req.Analysis.FieldIndices = map[string]domain.FieldIndex{}
	for i := 0; i < 12; i++ {
		req.Analysis.FieldIndices[fmt.Sprintf("Campo %02d", i)] = domain.FieldIndex{Current: 5}
	}

	_, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, page.markup, "Campo 08")
	assert.NotContains(t, page.markup, "Campo 09")
}
