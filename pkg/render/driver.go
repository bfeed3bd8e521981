package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qtherapy/report-engine/pkg/models/domain"
)

// State identifies where the render state machine currently is, and,
// on failure, where it broke.
type State string

const (
	StateLaunching              State = "launching"
	StateLoaded                 State = "loaded"
	StateAwaitingChartLibrary   State = "awaiting-chart-library"
	StateAwaitingChartsRendered State = "awaiting-charts-rendered"
	StateFootersInjected        State = "footers-injected"
	StateStable                 State = "stable"
	StateReady                  State = "ready"
	StateFailed                 State = "failed"
)

// Document is one composed report to render. Markup is consumed once
// and discarded with the session.
type Document struct {
	Markup      string
	MountIDs    []string
	GeneratedAt string
}

// Options bound every wait the driver performs. The zero value is
// unusable; use DefaultOptions as the base.
type Options struct {
	// ChartLibraryTimeout bounds the wait for the charting library
	// global. Expiry is fatal for the whole render.
	ChartLibraryTimeout time.Duration
	// ChartTimeout is each mount point's own budget, started when
	// its poll starts. Expiry degrades that chart only.
	ChartTimeout time.Duration
	// PollInterval paces both polls.
	PollInterval time.Duration
	// SettleDelay absorbs trailing layout reflow before Ready. The
	// stock value is empirical; tune it per target engine.
	SettleDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		ChartLibraryTimeout: 15 * time.Second,
		ChartTimeout:        5 * time.Second,
		PollInterval:        100 * time.Millisecond,
		SettleDelay:         time.Second,
	}
}

// Driver runs the render state machine over engine instances.
type Driver struct {
	engine Engine
	opts   Options
}

func NewDriver(engine Engine, opts Options) *Driver {
	if opts.PollInterval <= 0 {
		opts = DefaultOptions()
	}
	return &Driver{engine: engine, opts: opts}
}

// Session is one rendered page, owned by its creator. Close is safe
// to call from multiple paths; the underlying instance is released
// exactly once.
type Session struct {
	page  Page
	doc   Document
	state State

	degraded []string

	closeOnce sync.Once
	closeErr  error
}

func (s *Session) State() State { return s.state }

// DegradedMounts lists mount points that never drew within budget.
func (s *Session) DegradedMounts() []string { return s.degraded }

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.page.Close()
	})
	return s.closeErr
}

// Render loads the document into a fresh engine instance and blocks
// until the render-completion barrier resolves. On success the
// session is in StateReady and the caller owns its Close. On failure
// the instance is already released and the error carries the
// originating state.
func (d *Driver) Render(ctx context.Context, doc Document) (*Session, error) {
	logger := zerolog.Ctx(ctx)

	page, err := d.engine.Launch(ctx)
	if err != nil {
		return nil, &domain.Error{
			Kind:    domain.KindEngineLaunchFailure,
			Message: "cannot launch rendering engine instance",
			Stage:   string(StateLaunching),
			Err:     err,
		}
	}
	s := &Session{page: page, doc: doc, state: StateLaunching}

	if err := d.advance(ctx, s, logger); err != nil {
		s.state = StateFailed
		if closeErr := s.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("engine release after render failure")
		}
		return nil, err
	}

	s.state = StateReady
	return s, nil
}

func (d *Driver) advance(ctx context.Context, s *Session, logger *zerolog.Logger) error {
	if err := s.page.SetContent(ctx, s.doc.Markup); err != nil {
		return stateError(StateLoaded, err)
	}
	s.state = StateLoaded

	s.state = StateAwaitingChartLibrary
	ok, err := pollUntil(ctx, d.opts.PollInterval, d.opts.ChartLibraryTimeout, d.libraryReady(s))
	if err != nil {
		return stateError(s.state, err)
	}
	if !ok {
		return &domain.Error{
			Kind:    domain.KindChartLibraryTimeout,
			Message: "charting library never became available",
			Stage:   string(StateAwaitingChartLibrary),
		}
	}

	s.state = StateAwaitingChartsRendered
	if err := d.awaitCharts(ctx, s, logger); err != nil {
		return stateError(s.state, err)
	}

	s.state = StateFootersInjected
	if err := d.injectFooterDate(ctx, s); err != nil {
		return stateError(s.state, err)
	}

	s.state = StateStable
	if err := sleepCtx(ctx, d.opts.SettleDelay); err != nil {
		return stateError(s.state, err)
	}
	return nil
}

// awaitCharts is the render-completion barrier: every mount point
// either shows a drawn graphic primitive or exhausts its own budget.
// Each mount's budget starts when its poll starts, so a stuck chart
// never eats into a later chart's window and no chart cancels the
// others. The context deadline bounds the barrier as a whole.
func (d *Driver) awaitCharts(ctx context.Context, s *Session, logger *zerolog.Logger) error {
	for _, id := range s.doc.MountIDs {
		rendered, err := pollUntil(ctx, d.opts.PollInterval, d.opts.ChartTimeout, d.chartRendered(s, id))
		if err != nil {
			return err
		}
		if !rendered {
			s.degraded = append(s.degraded, id)
			logger.Warn().Str("mount", id).Msg("chart did not render within budget, continuing degraded")
		}
	}
	return nil
}

func (d *Driver) libraryReady(s *Session) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		var ready bool
		if err := s.page.Eval(ctx, `typeof Chart !== "undefined"`, &ready); err != nil {
			return false, err
		}
		return ready, nil
	}
}

func (d *Driver) chartRendered(s *Session, mountID string) func(context.Context) (bool, error) {
	expr := fmt.Sprintf(
		`(function(){var m=document.getElementById(%s);return !!(m && m.querySelector("canvas, svg"));})()`,
		strconv.Quote(mountID),
	)
	return func(ctx context.Context) (bool, error) {
		var rendered bool
		if err := s.page.Eval(ctx, expr, &rendered); err != nil {
			return false, err
		}
		return rendered, nil
	}
}

func (d *Driver) injectFooterDate(ctx context.Context, s *Session) error {
	expr := fmt.Sprintf(
		`(function(){var n=document.getElementById("generated-date");if(n){n.textContent=%s;}})()`,
		strconv.Quote(s.doc.GeneratedAt),
	)
	return s.page.Eval(ctx, expr, nil)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// stateError classifies an unexpected failure by its originating
// state. Context expiry means the global budget ran out.
func stateError(state State, err error) error {
	kind := domain.KindInternalRenderError
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = domain.KindRenderTimeout
		msg = "global render budget exceeded"
	}
	return &domain.Error{Kind: kind, Message: msg, Stage: string(state), Err: err}
}
