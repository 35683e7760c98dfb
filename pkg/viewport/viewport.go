// Package viewport classifies viewport widths into the layout breakpoints
// shared by the data generator and the masonry engine.
//
// The thresholds are inclusive upper bounds measured in CSS pixels:
//
//	mobile         <= 600
//	tablet         <= 768
//	small-desktop  <= 1024
//	desktop        otherwise
package viewport

import "fmt"

// Breakpoint is a viewport class.
type Breakpoint int

const (
	Desktop Breakpoint = iota
	SmallDesktop
	Tablet
	Mobile
)

// Upper bounds (inclusive) of each non-desktop breakpoint.
const (
	MobileMax       = 600
	TabletMax       = 768
	SmallDesktopMax = 1024
)

// Classify returns the breakpoint for a viewport width.
func Classify(width float64) Breakpoint {
	switch {
	case width <= MobileMax:
		return Mobile
	case width <= TabletMax:
		return Tablet
	case width <= SmallDesktopMax:
		return SmallDesktop
	default:
		return Desktop
	}
}

func (b Breakpoint) String() string {
	switch b {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	case SmallDesktop:
		return "small-desktop"
	case Desktop:
		return "desktop"
	}
	return fmt.Sprintf("Breakpoint(%d)", int(b))
}

// Parse converts a breakpoint name back into a Breakpoint.
func Parse(s string) (Breakpoint, error) {
	switch s {
	case "mobile":
		return Mobile, nil
	case "tablet":
		return Tablet, nil
	case "small-desktop":
		return SmallDesktop, nil
	case "desktop", "":
		return Desktop, nil
	}
	return Desktop, fmt.Errorf("unknown breakpoint %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (b Breakpoint) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Breakpoint) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
