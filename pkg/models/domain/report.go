package domain

// AnalysisSummary is the aggregate picture of a patient's progress,
// precomputed by the caller from the full session history.
type AnalysisSummary struct {
	OverallScore        *float64
	TotalSessions       int
	ImprovementVelocity string
	CriticalFields      []string
	FieldIndices        map[string]FieldIndex
}

// FieldIndex carries the current value of one monitored field.
type FieldIndex struct {
	Current float64
}

// SessionRecord is one therapy session as supplied by the caller.
// Result values may arrive as numbers or as numeric strings.
type SessionRecord struct {
	TherapyID           string
	SessionDate         string
	Results             map[string]any
	GeneralObservations string
}

// Therapy describes a therapy modality referenced by sessions.
type Therapy struct {
	Name                   string
	SuggestedVisualization string
}

// ReportRequest is the immutable input of one rendering pass.
type ReportRequest struct {
	PatientName   string
	TherapistName string
	Analysis      *AnalysisSummary
	Sessions      []SessionRecord
	Therapies     map[string]Therapy
}

// ChartSpec is a declarative chart configuration derived from one
// session. Categories and Series are index-aligned.
type ChartSpec struct {
	TherapyID  string    `json:"therapyId"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	Kind       string    `json:"kind"`
	Categories []string  `json:"categories"`
	Series     []float64 `json:"series"`
	Colors     []string  `json:"colors"`
}

// ReportArtifact is the finished document, ownership transferred to
// the caller.
type ReportArtifact struct {
	Bytes    []byte
	Filename string
}
