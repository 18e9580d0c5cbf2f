package render

import "fmt"

// PreviewMode selects the logical width the page is laid out for.
type PreviewMode string

const (
	ModeDesktop PreviewMode = "desktop"
	ModeTablet  PreviewMode = "tablet"
	ModeMobile  PreviewMode = "mobile"
)

// Widths in logical pixels. Zero means unconstrained.
const (
	WidthTablet = 768
	WidthMobile = 375
)

// Width returns the layout width for m; desktop and unknown modes are unconstrained.
func (m PreviewMode) Width() int {
	switch m {
	case ModeTablet:
		return WidthTablet
	case ModeMobile:
		return WidthMobile
	default:
		return 0
	}
}

func ParseMode(s string) (PreviewMode, error) {
	switch m := PreviewMode(s); m {
	case ModeDesktop, ModeTablet, ModeMobile:
		return m, nil
	case "":
		return ModeDesktop, nil
	default:
		return "", fmt.Errorf("unknown preview mode %q", s)
	}
}
