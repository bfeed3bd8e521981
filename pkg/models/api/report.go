package api

// ReportRequest is the wire form of a report generation call. Numeric
// fields use pointers so that "absent" is distinguishable from zero.
type ReportRequest struct {
	PatientName   string             `json:"patientName"`
	TherapistName string             `json:"therapistName"`
	Analysis      *AnalysisSummary   `json:"analysis"`
	Sessions      []SessionRecord    `json:"sessions"`
	Therapies     map[string]Therapy `json:"therapies"`
}

type AnalysisSummary struct {
	OverallScore        *float64              `json:"overallScore"`
	TotalSessions       int                   `json:"totalSessions"`
	ImprovementVelocity string                `json:"improvementVelocity"`
	CriticalFields      []string              `json:"criticalFields"`
	FieldIndices        map[string]FieldIndex `json:"fieldIndices"`
}

type FieldIndex struct {
	Current float64 `json:"current"`
}

type SessionRecord struct {
	TherapyID           string         `json:"therapyId"`
	SessionDate         string         `json:"sessionDate"`
	Results             map[string]any `json:"results"`
	GeneralObservations string         `json:"generalObservations"`
}

type Therapy struct {
	Name                   string `json:"name"`
	SuggestedVisualization string `json:"suggestedVisualization"`
}

// ReportResponse is returned on success.
type ReportResponse struct {
	Success  bool   `json:"success"`
	PDF      string `json:"pdf"`
	Filename string `json:"filename"`
}

// ErrorResponse is returned on any failure.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
