// Package render drives an isolated rendering engine through the
// report lifecycle: load markup, wait until script-driven charts have
// drawn, then capture a paginated PDF.
package render

import "context"

// Engine launches isolated rendering instances. Each report owns one
// Page; instances share nothing.
type Engine interface {
	Launch(ctx context.Context) (Page, error)
}

// Page is one live rendering-engine session.
type Page interface {
	// SetContent loads the composed markup and waits for the document
	// to be ready (subresources may still be loading).
	SetContent(ctx context.Context, markup string) error
	// Eval runs a script expression in the page, decoding the result
	// into out when out is non-nil.
	Eval(ctx context.Context, expr string, out any) error
	// PrintToPDF captures the current page as paginated PDF bytes.
	PrintToPDF(ctx context.Context, opts PDFOptions) ([]byte, error)
	// Close terminates the instance. Callers route Close through
	// Session.Close, which guarantees exactly one call.
	Close() error
}

// PDFOptions is the fixed capture geometry, in inches as the
// devtools protocol expects.
type PDFOptions struct {
	PaperWidthIn        float64
	PaperHeightIn       float64
	MarginTopIn         float64
	MarginBottomIn      float64
	MarginLeftIn        float64
	MarginRightIn       float64
	PrintBackground     bool
	DisplayHeaderFooter bool
	HeaderTemplate      string
	FooterTemplate      string
}
