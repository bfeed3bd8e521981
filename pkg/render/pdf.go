package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/qtherapy/report-engine/pkg/models/domain"
)

// A4 geometry in inches: 210×297mm page, 20mm top/bottom margins,
// 15mm left/right.
const (
	a4WidthIn      = 8.27
	a4HeightIn     = 11.69
	marginTopIn    = 0.787
	marginBottomIn = 0.787
	marginSideIn   = 0.591
)

// A4Options returns the fixed capture geometry with running header
// and footer carrying page numbering and the generation date.
func A4Options(generatedAt string) PDFOptions {
	return PDFOptions{
		PaperWidthIn:        a4WidthIn,
		PaperHeightIn:       a4HeightIn,
		MarginTopIn:         marginTopIn,
		MarginBottomIn:      marginBottomIn,
		MarginLeftIn:        marginSideIn,
		MarginRightIn:       marginSideIn,
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate: `<div style="font-size:8px;width:100%;text-align:center;color:#7f8c8d;">` +
			`Relatório de Progresso Terapêutico Quântico</div>`,
		FooterTemplate: fmt.Sprintf(
			`<div style="font-size:8px;width:100%%;padding:0 15mm;color:#7f8c8d;display:flex;justify-content:space-between;">`+
				`<span>Gerado em %s</span>`+
				`<span>Página <span class="pageNumber"></span> de <span class="totalPages"></span></span></div>`,
			generatedAt,
		),
	}
}

// EmitPDF captures the rendered document. Calling it outside the
// Ready state is a programming error in the pipeline, guarded here
// rather than left to the engine.
func (s *Session) EmitPDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	if s.state != StateReady {
		return nil, &domain.Error{
			Kind:    domain.KindInternalRenderError,
			Message: fmt.Sprintf("pdf emission requested in state %q, want %q", s.state, StateReady),
			Stage:   string(s.state),
		}
	}

	pdf, err := s.page.PrintToPDF(ctx, opts)
	if err != nil {
		kind := domain.KindInternalRenderError
		msg := "print to pdf failed"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind = domain.KindRenderTimeout
			msg = "global render budget exceeded during pdf capture"
		}
		return nil, &domain.Error{Kind: kind, Message: msg, Stage: string(StateReady), Err: err}
	}
	if len(pdf) == 0 {
		return nil, &domain.Error{
			Kind:    domain.KindInternalRenderError,
			Message: "engine returned an empty pdf",
			Stage:   string(StateReady),
		}
	}
	return pdf, nil
}
