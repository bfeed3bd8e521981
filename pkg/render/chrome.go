package render

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configure the headless Chrome engine.
type ChromeOptions struct {
	// ExecPath points at the browser binary; empty means chromedp's
	// default lookup.
	ExecPath string
	// AcceptLanguage is sent with every subresource request so the
	// document is treated in the target locale.
	AcceptLanguage string
	// ViewportWidth/Height with Scale give a large, dense viewport
	// for print sharpness.
	ViewportWidth  int
	ViewportHeight int
	Scale          float64
}

func DefaultChromeOptions() ChromeOptions {
	return ChromeOptions{
		AcceptLanguage: "pt-BR",
		ViewportWidth:  1280,
		ViewportHeight: 1754,
		Scale:          2,
	}
}

// ChromeEngine launches isolated headless Chrome instances, one per
// report.
type ChromeEngine struct {
	opts ChromeOptions
}

func NewChromeEngine(opts ChromeOptions) *ChromeEngine {
	if opts.ViewportWidth == 0 {
		opts = DefaultChromeOptions()
	}
	return &ChromeEngine{opts: opts}
}

func (e *ChromeEngine) Launch(ctx context.Context) (Page, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if e.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(e.opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	cleanup := func() {
		taskCancel()
		allocCancel()
	}

	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": e.opts.AcceptLanguage,
			"Accept-Charset":  "utf-8",
		}),
		chromedp.EmulateViewport(
			int64(e.opts.ViewportWidth),
			int64(e.opts.ViewportHeight),
			chromedp.EmulateScale(e.opts.Scale),
		),
	)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("launch chrome instance: %w", err)
	}

	return &chromePage{ctx: taskCtx, cleanup: cleanup}, nil
}

type chromePage struct {
	ctx     context.Context
	cleanup func()
}

// SetContent loads markup into the page and waits for the body to be
// ready. Chart subresources keep loading afterwards; the driver's
// library poll covers them.
func (p *chromePage) SetContent(ctx context.Context, markup string) error {
	return p.run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *chromePage) Eval(ctx context.Context, expr string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expr, out))
}

func (p *chromePage) PrintToPDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	var pdf []byte
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPaperWidth(opts.PaperWidthIn).
			WithPaperHeight(opts.PaperHeightIn).
			WithMarginTop(opts.MarginTopIn).
			WithMarginBottom(opts.MarginBottomIn).
			WithMarginLeft(opts.MarginLeftIn).
			WithMarginRight(opts.MarginRightIn).
			WithPrintBackground(opts.PrintBackground).
			WithPreferCSSPageSize(false).
			WithDisplayHeaderFooter(opts.DisplayHeaderFooter).
			WithHeaderTemplate(opts.HeaderTemplate).
			WithFooterTemplate(opts.FooterTemplate).
			Do(ctx)
		if err != nil {
			return err
		}
		pdf = buf
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// Close force-terminates the instance. Resource release takes
// priority over graceful shutdown, so context cancellation is enough.
func (p *chromePage) Close() error {
	p.cleanup()
	return nil
}

// run executes actions in the page's browser context while honoring
// the caller's deadline.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(p.ctx, actions...)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
