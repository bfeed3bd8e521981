// Package report sequences the rendering pipeline: validation,
// sanitization, chart spec building, composition, headless rendering
// and PDF capture.
package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/qtherapy/report-engine/pkg/chart"
	"github.com/qtherapy/report-engine/pkg/compose"
	"github.com/qtherapy/report-engine/pkg/models/domain"
	"github.com/qtherapy/report-engine/pkg/recommend"
	"github.com/qtherapy/report-engine/pkg/render"
	"github.com/qtherapy/report-engine/pkg/sanitize"
)

const (
	maxFieldTiles  = 9
	maxHistoryRows = 15
)

// Options configure one Generator.
type Options struct {
	// ChartJSURL overrides the charting library location.
	ChartJSURL string
	// GlobalTimeout bounds the whole rendering pass. Zero means
	// DefaultGlobalTimeout.
	GlobalTimeout time.Duration
}

const DefaultGlobalTimeout = 60 * time.Second

// Generator owns the pipeline. Safe for concurrent use: every call
// gets its own engine instance and shares no mutable state.
type Generator struct {
	driver *render.Driver
	opts   Options
	now    func() time.Time
}

func NewGenerator(driver *render.Driver, opts Options) *Generator {
	if opts.GlobalTimeout <= 0 {
		opts.GlobalTimeout = DefaultGlobalTimeout
	}
	return &Generator{driver: driver, opts: opts, now: time.Now}
}

// Generate runs one full pass and returns the finished artifact. All
// failures come back as *domain.Error; the engine instance is always
// released before returning.
func (g *Generator) Generate(ctx context.Context, req domain.ReportRequest) (*domain.ReportArtifact, error) {
	logger := zerolog.Ctx(ctx)

	if err := validate(req); err != nil {
		return nil, err
	}

	now := g.now()
	generatedAt := now.Format("02/01/2006 15:04")

	specs := chart.BuildSpecs(req.Sessions, req.Therapies)
	doc, mountIDs, err := buildDocument(logger, req, specs, g.opts.ChartJSURL)
	if err != nil {
		return nil, domain.NewError(domain.KindInternalRenderError, "compose chart specs", err)
	}

	markup, err := compose.Compose(doc)
	if err != nil {
		return nil, domain.NewError(domain.KindInternalRenderError, "compose report markup", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.GlobalTimeout)
	defer cancel()

	session, err := g.driver.Render(ctx, render.Document{
		Markup:      markup,
		MountIDs:    mountIDs,
		GeneratedAt: generatedAt,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if degraded := session.DegradedMounts(); len(degraded) > 0 {
		logger.Warn().
			Strs("mounts", degraded).
			Msg("report rendered with degraded charts")
	}

	pdf, err := session.EmitPDF(ctx, render.A4Options(generatedAt))
	if err != nil {
		return nil, err
	}

	return &domain.ReportArtifact{
		Bytes:    pdf,
		Filename: Filename(req.PatientName, now),
	}, nil
}

// validate enforces the fail-fast preconditions before any engine
// resources are allocated.
func validate(req domain.ReportRequest) error {
	if strings.TrimSpace(req.PatientName) == "" {
		return domain.NewError(domain.KindInvalidArgument, "patientName is required", nil)
	}
	if req.Analysis == nil {
		return domain.NewError(domain.KindInvalidArgument, "analysis is required", nil)
	}
	return nil
}

// Filename follows the relatorio_quantico_<name>_<date>.pdf
// convention, spaces replaced by underscores.
func Filename(patientName string, at time.Time) string {
	name := strings.ReplaceAll(strings.TrimSpace(patientName), " ", "_")
	return fmt.Sprintf("relatorio_quantico_%s_%s.pdf", name, at.Format("2006-01-02"))
}

// buildDocument maps the request into the compositor's view model.
// Every free-text field crosses the sanitizer here; the compositor
// trusts this boundary and never re-escapes.
func buildDocument(
	logger *zerolog.Logger,
	req domain.ReportRequest,
	specs []domain.ChartSpec,
	chartJSURL string,
) (compose.Document, []string, error) {
	doc := compose.Document{
		PatientName:   clean(logger, "patientName", req.PatientName),
		TherapistName: clean(logger, "therapistName", req.TherapistName),
		ChartJSURL:    chartJSURL,
	}

	analysis := *req.Analysis
	if analysis.OverallScore != nil {
		score := *analysis.OverallScore
		doc.Score = &compose.ScoreView{
			Value:         strconv.FormatFloat(score, 'f', -1, 64),
			CSSClass:      chart.BandOf(score / 10).CSSClass(),
			TotalSessions: analysis.TotalSessions,
			Velocity:      clean(logger, "improvementVelocity", analysis.ImprovementVelocity),
		}
	}

	doc.Fields = fieldTiles(logger, analysis)
	doc.History = historyRows(logger, req)
	doc.Narrative = narrativeView(logger, analysis)

	mountIDs := make([]string, 0, len(specs))
	for i, spec := range specs {
		specJSON, err := compose.SpecJSON(spec)
		if err != nil {
			return compose.Document{}, nil, err
		}
		id := compose.MountID(i)
		mountIDs = append(mountIDs, id)
		doc.Charts = append(doc.Charts, compose.ChartView{
			MountID:  id,
			Title:    clean(logger, "therapyName", spec.Title),
			Subtitle: clean(logger, "sessionDate", spec.Subtitle),
			SpecJSON: specJSON,
		})
	}
	return doc, mountIDs, nil
}

// fieldTiles renders the per-field analysis grid, capped at the
// first nine fields in name order.
func fieldTiles(logger *zerolog.Logger, analysis domain.AnalysisSummary) []compose.FieldView {
	if len(analysis.FieldIndices) == 0 {
		return nil
	}
	names := make([]string, 0, len(analysis.FieldIndices))
	for name := range analysis.FieldIndices {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxFieldTiles {
		names = names[:maxFieldTiles]
	}

	tiles := make([]compose.FieldView, 0, len(names))
	for _, name := range names {
		current := analysis.FieldIndices[name].Current
		tiles = append(tiles, compose.FieldView{
			Name:     clean(logger, "fieldName", name),
			Value:    fmt.Sprintf("%.1f", current),
			CSSClass: chart.BandOf(current).CSSClass(),
		})
	}
	return tiles
}

// historyRows builds the tabular history from the most recent
// sessions, newest first, capped at fifteen rows. Sessions without
// qualifying metrics keep their row even though they have no chart.
func historyRows(logger *zerolog.Logger, req domain.ReportRequest) []compose.HistoryRow {
	sessions := req.Sessions
	if len(sessions) > maxHistoryRows {
		sessions = sessions[len(sessions)-maxHistoryRows:]
	}

	rows := make([]compose.HistoryRow, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		row := compose.HistoryRow{
			Date:         clean(logger, "sessionDate", s.SessionDate),
			Therapy:      clean(logger, "therapyName", therapyName(req, s.TherapyID)),
			Average:      "—",
			Glyph:        "—",
			Observations: clean(logger, "generalObservations", s.GeneralObservations),
		}
		if avg, ok := sessionAverage(s); ok {
			band := chart.BandOf(avg)
			row.Average = fmt.Sprintf("%.1f", avg)
			row.Glyph = band.Glyph()
			row.CSSClass = band.CSSClass()
		}
		rows = append(rows, row)
	}
	return rows
}

func sessionAverage(s domain.SessionRecord) (float64, bool) {
	sum, n := 0.0, 0
	for _, raw := range s.Results {
		if v, ok := chart.MetricValue(raw); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func therapyName(req domain.ReportRequest, therapyID string) string {
	if th, ok := req.Therapies[therapyID]; ok && th.Name != "" {
		return th.Name
	}
	return therapyID
}

func narrativeView(logger *zerolog.Logger, analysis domain.AnalysisSummary) compose.NarrativeView {
	n := recommend.Build(analysis)
	view := compose.NarrativeView{Headline: n.Headline, Body: n.Body}
	for _, f := range n.Fields {
		view.Fields = append(view.Fields, compose.NarrativeField{
			// field names come from the payload; the advice copy is
			// static and needs no escaping
			Field:       clean(logger, "criticalField", f.Field),
			Explanation: f.Explanation,
			Suggestions: f.Suggestions,
		})
	}
	return view
}

// clean sanitizes one field and records degradation, which is
// absorbed rather than surfaced: a report with reduced text still
// ships.
func clean(logger *zerolog.Logger, field string, v any) string {
	res := sanitize.Clean(v)
	if res.Degraded {
		logger.Warn().Str("field", field).Msg("text degraded to ascii fallback during sanitization")
	}
	return res.Text
}
