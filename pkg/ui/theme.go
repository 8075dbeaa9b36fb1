package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors adapt to light and dark terminals
var (
	ErrorColor = lipgloss.AdaptiveColor{
		Light: "#DC3545",
		Dark:  "#FF6B7D",
	}

	SuccessColor = lipgloss.AdaptiveColor{
		Light: "#28A745",
		Dark:  "#4CDD76",
	}

	PackageColor = lipgloss.AdaptiveColor{
		Light: "#007ACC",
		Dark:  "#3D9EFF",
	}

	PathColor = lipgloss.AdaptiveColor{
		Light: "#6C757D",
		Dark:  "#A0A8B0",
	}

	MutedColor = lipgloss.AdaptiveColor{
		Light: "#6C757D",
		Dark:  "#ADB5BD",
	}
)

// styles are bound to one renderer so colors follow the capabilities of
// the writer they end up on
type styles struct {
	err     lipgloss.Style
	success lipgloss.Style
	pkg     lipgloss.Style
	path    lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		err: r.NewStyle().
			Foreground(ErrorColor).
			Bold(true),
		success: r.NewStyle().
			Foreground(SuccessColor).
			Bold(true),
		pkg: r.NewStyle().
			Foreground(PackageColor).
			Bold(true),
		path: r.NewStyle().
			Foreground(PathColor).
			Italic(true),
		muted: r.NewStyle().
			Foreground(MutedColor),
	}
}
