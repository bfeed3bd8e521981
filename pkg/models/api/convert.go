package api

import "github.com/qtherapy/report-engine/pkg/models/domain"

// ToDomain maps the wire request into the pipeline's domain model.
func (p ReportRequest) ToDomain() domain.ReportRequest {
	req := domain.ReportRequest{
		PatientName:   p.PatientName,
		TherapistName: p.TherapistName,
	}

	if p.Analysis != nil {
		analysis := &domain.AnalysisSummary{
			OverallScore:        p.Analysis.OverallScore,
			TotalSessions:       p.Analysis.TotalSessions,
			ImprovementVelocity: p.Analysis.ImprovementVelocity,
			CriticalFields:      p.Analysis.CriticalFields,
		}
		if len(p.Analysis.FieldIndices) > 0 {
			analysis.FieldIndices = make(map[string]domain.FieldIndex, len(p.Analysis.FieldIndices))
			for name, idx := range p.Analysis.FieldIndices {
				analysis.FieldIndices[name] = domain.FieldIndex{Current: idx.Current}
			}
		}
		req.Analysis = analysis
	}

	for _, s := range p.Sessions {
		req.Sessions = append(req.Sessions, domain.SessionRecord{
			TherapyID:           s.TherapyID,
			SessionDate:         s.SessionDate,
			Results:             s.Results,
			GeneralObservations: s.GeneralObservations,
		})
	}

	if len(p.Therapies) > 0 {
		req.Therapies = make(map[string]domain.Therapy, len(p.Therapies))
		for id, t := range p.Therapies {
			req.Therapies[id] = domain.Therapy{
				Name:                   t.Name,
				SuggestedVisualization: t.SuggestedVisualization,
			}
		}
	}
	return req
}
