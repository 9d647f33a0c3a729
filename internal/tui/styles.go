package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle    = lipgloss.NewStyle().Bold(true)
	rumorStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))
	noticeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Underline(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	toneStyles = map[game.Tone]lipgloss.Style{
		game.ToneFavorable:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		game.ToneUnfavorable: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		game.ToneNeutral:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}

	wonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	lostStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// ratingStyle colours an analyst rating: buys green, sells red, anything else amber.
func ratingStyle(rating string) lipgloss.Style {
	r := strings.ToLower(rating)
	switch {
	case strings.Contains(r, "buy"):
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	case strings.Contains(r, "sell"):
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	}
}

func renderDelta(d game.DeltaView) string {
	return toneStyles[d.Tone].Render(d.Text)
}
