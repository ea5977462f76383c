package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"docchat/internal/models"
)

// Theme holds the color scheme for the chat display.
type Theme struct {
	Status   lipgloss.Color
	Success  lipgloss.Color
	Error    lipgloss.Color
	Hint     lipgloss.Color
	NoticeBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:   lipgloss.Color("#5FAFD7"), // light blue
	Success:  lipgloss.Color("#00D787"), // green
	Error:    lipgloss.Color("#FF005F"), // red
	Hint:     lipgloss.Color("#6C6C6C"), // dim gray
	NoticeBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status).Bold(true)
}

func (t Theme) noticeStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Error).
		Background(t.NoticeBg).
		Bold(true).
		Padding(0, 1)
}

// jobStatusView renders an upload status with its glyph, colored by outcome.
func (t Theme) jobStatusView(s models.JobStatus) string {
	switch s {
	case models.StatusPending:
		return t.hintStyle().Render("• pending")
	case models.StatusProcessing:
		return t.statusStyle().Render("… processing")
	case models.StatusCompleted:
		return t.completedStyle().Render("✓ completed")
	case models.StatusError:
		return t.errorStyle().Render("✗ error")
	default:
		return string(s)
	}
}

// relevancePercent formats a [0,1] relevance score for display.
func relevancePercent(r float64) string {
	return fmt.Sprintf("%.0f%%", r*100)
}
