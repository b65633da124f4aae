// Package style provides shared UI styling primitives: brand colors and the
// status icons printed next to package names.
package style

import "github.com/charmbracelet/lipgloss"

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// StatusIcon returns the icon shown for a finished package, by cache outcome.
func StatusIcon(status string, failed bool) string {
	switch {
	case failed:
		return Cross
	case status == "cached":
		return Dot
	case status == "skipped":
		return Circle
	default:
		return Check
	}
}
