package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtherapy/report-engine/pkg/models/domain"
)

func TestEmitPDF_RequiresReadyState(t *testing.T) {
	for _, state := range []State{StateLaunching, StateLoaded, StateStable, StateFailed} {
		s := &Session{page: &fakePage{pdf: []byte("%PDF")}, state: state}

		_, err := s.EmitPDF(context.Background(), A4Options("31/08/2026"))

		require.Error(t, err, "state %s", state)
		assert.Equal(t, domain.KindInternalRenderError, domain.KindOf(err))
	}
}

func TestEmitPDF_EmptyOutputIsAnError(t *testing.T) {
	s := &Session{page: &fakePage{}, state: StateReady}

	_, err := s.EmitPDF(context.Background(), A4Options("31/08/2026"))

	require.Error(t, err)
	assert.Equal(t, domain.KindInternalRenderError, domain.KindOf(err))
}

func TestEmitPDF_TimeoutClassification(t *testing.T) {
	s := &Session{page: &fakePage{pdfErr: context.DeadlineExceeded}, state: StateReady}

	_, err := s.EmitPDF(context.Background(), A4Options("31/08/2026"))

	require.Error(t, err)
	assert.Equal(t, domain.KindRenderTimeout, domain.KindOf(err))
}

func TestEmitPDF_EngineErrorIsInternal(t *testing.T) {
	s := &Session{page: &fakePage{pdfErr: errors.New("target closed")}, state: StateReady}

	_, err := s.EmitPDF(context.Background(), A4Options("31/08/2026"))

	require.Error(t, err)
	assert.Equal(t, domain.KindInternalRenderError, domain.KindOf(err))
}

func TestA4Options_GeometryAndRunningFooter(t *testing.T) {
	opts := A4Options("31/08/2026")

	assert.InDelta(t, 8.27, opts.PaperWidthIn, 0.001)
	assert.InDelta(t, 11.69, opts.PaperHeightIn, 0.001)
	assert.InDelta(t, 0.787, opts.MarginTopIn, 0.001)
	assert.InDelta(t, 0.591, opts.MarginLeftIn, 0.001)
	assert.True(t, opts.PrintBackground)
	assert.True(t, opts.DisplayHeaderFooter)
	assert.Contains(t, opts.FooterTemplate, `class="pageNumber"`)
	assert.Contains(t, opts.FooterTemplate, `class="totalPages"`)
	assert.Contains(t, opts.FooterTemplate, "31/08/2026")
}
