// Package chart converts numeric session results into declarative
// chart configurations and owns the value banding shared across the
// whole document.
package chart

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/qtherapy/report-engine/pkg/models/domain"
)

const maxLabelRunes = 30

var knownKinds = map[string]bool{
	"radar":     true,
	"polarArea": true,
	"bar":       true,
	"line":      true,
	"doughnut":  true,
}

// BuildSpecs derives one ChartSpec per session that has at least one
// positive numeric result. Sessions without qualifying metrics are
// skipped here but stay in the session list used by the history table.
func BuildSpecs(sessions []domain.SessionRecord, therapies map[string]domain.Therapy) []domain.ChartSpec {
	specs := make([]domain.ChartSpec, 0, len(sessions))
	for _, s := range sessions {
		spec, ok := buildSpec(s, therapies)
		if !ok {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

func buildSpec(s domain.SessionRecord, therapies map[string]domain.Therapy) (domain.ChartSpec, bool) {
	labels := make([]string, 0, len(s.Results))
	for label := range s.Results {
		if _, ok := MetricValue(s.Results[label]); ok {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return domain.ChartSpec{}, false
	}
	// deterministic metric order keeps the composed markup stable
	sort.Strings(labels)

	spec := domain.ChartSpec{
		TherapyID:  s.TherapyID,
		Kind:       "bar",
		Subtitle:   s.SessionDate,
		Categories: make([]string, 0, len(labels)),
		Series:     make([]float64, 0, len(labels)),
		Colors:     make([]string, 0, len(labels)),
	}

	if th, ok := therapies[s.TherapyID]; ok {
		spec.Title = th.Name
		if knownKinds[th.SuggestedVisualization] {
			spec.Kind = th.SuggestedVisualization
		}
	}
	if spec.Title == "" {
		spec.Title = s.TherapyID
	}

	for _, label := range labels {
		v, _ := MetricValue(s.Results[label])
		spec.Categories = append(spec.Categories, truncateLabel(label))
		spec.Series = append(spec.Series, v)
		spec.Colors = append(spec.Colors, BandOf(v).Color())
	}
	return spec, true
}

// MetricValue parses a raw result value, accepting only finite
// numbers greater than zero. Strings are parsed after trimming.
func MetricValue(raw any) (float64, bool) {
	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}
	return string(runes[:maxLabelRunes]) + "…"
}
