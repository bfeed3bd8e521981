package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomain_MapsNestedStructures(t *testing.T) {
	score := 55.5
	req := ReportRequest{
		PatientName:   "Ana",
		TherapistName: "Dr. Lima",
		Analysis: &AnalysisSummary{
			OverallScore:   &score,
			TotalSessions:  3,
			CriticalFields: []string{"Sono"},
			FieldIndices:   map[string]FieldIndex{"Sono": {Current: 4.2}},
		},
		Sessions: []SessionRecord{
			{TherapyID: "reiki", SessionDate: "2026-08-01", Results: map[string]any{"Foco": "8"}},
		},
		Therapies: map[string]Therapy{
			"reiki": {Name: "Reiki", SuggestedVisualization: "radar"},
		},
	}.ToDomain()

	require.NotNil(t, req.Analysis)
	assert.Equal(t, 55.5, *req.Analysis.OverallScore)
	assert.Equal(t, 3, req.Analysis.TotalSessions)
	assert.Equal(t, 4.2, req.Analysis.FieldIndices["Sono"].Current)
	require.Len(t, req.Sessions, 1)
	assert.Equal(t, "reiki", req.Sessions[0].TherapyID)
	assert.Equal(t, "8", req.Sessions[0].Results["Foco"])
	assert.Equal(t, "radar", req.Therapies["reiki"].SuggestedVisualization)
}

func TestToDomain_NilAnalysisStaysNil(t *testing.T) {
	req := ReportRequest{PatientName: "Ana"}.ToDomain()

	assert.Nil(t, req.Analysis)
	assert.Empty(t, req.Sessions)
	assert.Nil(t, req.Therapies)
}
