package chart

// Band is the three-tier classification of a 0 to 10 metric value.
// The summary grid, the history table glyphs and the chart bar colors
// all derive from this single banding.
type Band int

const (
	BandAlert Band = iota
	BandWarn
	BandOK
)

const (
	colorOK    = "#27ae60"
	colorWarn  = "#f39c12"
	colorAlert = "#e74c3c"
)

// BandOf classifies v: >=7 ok, >=5 warn, else alert.
func BandOf(v float64) Band {
	switch {
	case v >= 7:
		return BandOK
	case v >= 5:
		return BandWarn
	default:
		return BandAlert
	}
}

// Color returns the hex color used for chart bars and value badges.
func (b Band) Color() string {
	switch b {
	case BandOK:
		return colorOK
	case BandWarn:
		return colorWarn
	default:
		return colorAlert
	}
}

// Glyph returns the status marker shown in the history table.
func (b Band) Glyph() string {
	switch b {
	case BandOK:
		return "✓"
	case BandWarn:
		return "~"
	default:
		return "!"
	}
}

// CSSClass returns the class used by summary cards and field tiles.
func (b Band) CSSClass() string {
	switch b {
	case BandOK:
		return "status-ok"
	case BandWarn:
		return "status-warn"
	default:
		return "status-alert"
	}
}
