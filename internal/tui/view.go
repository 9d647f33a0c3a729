package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/damage-control/apps/go-client/internal/game"
	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
)

func (m model) View() string {
	v := m.sess.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render("DAMAGE CONTROL"))
	b.WriteString("\n\n")

	switch v.Phase {
	case session.PhaseNew:
		b.WriteString(m.viewPicker())
	case session.PhaseInProgress:
		b.WriteString(m.viewDashboard(v))
	case session.PhaseEnded:
		b.WriteString(m.viewVerdict(v))
	}

	if m.pending {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("Waiting for the market to react..."))
	}
	if v.Notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(v.Notice))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) viewPicker() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Choose your company"))
	b.WriteString("\n\n")
	for i, a := range m.cat.Archetypes {
		line := fmt.Sprintf("%s %s  %s", a.Icon, a.ID, labelStyle.Render(a.Desc))
		if i == m.pick {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter start • q quit"))
	return b.String()
}

func (m model) viewDashboard(v session.View) string {
	st := v.State
	d := v.Board

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s %s\n\n",
		valueStyle.Render(string(v.Archetype)),
		labelStyle.Render("Round"),
		valueStyle.Render(fmt.Sprintf("%d/%d", v.Round, game.MaxRounds)))

	stats := []string{
		metric("Share price", fmt.Sprintf("$%.2f", st.SharePrice), d.SharePrice),
		metric("Shares", fmt.Sprintf("%.0f", st.TotalShares), d.TotalShares),
		metric("Market cap", fmt.Sprintf("$%.0f", v.MarketCap), d.MarketCap),
		metric("Reputation", fmt.Sprintf("%.0f%%", st.Reputation), d.Reputation),
	}
	b.WriteString(panelStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, stats...)))
	b.WriteString("\n")

	if st.AnalystRating != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Analyst rating:"), ratingStyle(st.AnalystRating).Render(st.AnalystRating))
	}
	if st.Headline != "" {
		b.WriteString("\n" + headlineStyle.Render(st.Headline) + "\n")
	}
	if m.narrative != "" {
		b.WriteString(m.narrative)
		if !strings.HasSuffix(m.narrative, "\n") {
			b.WriteString("\n")
		}
	}
	if st.MarketRumor != "" {
		b.WriteString(rumorStyle.Render("Rumor: "+st.MarketRumor) + "\n")
	}

	b.WriteString(viewFeed(st.StakeholderFeed))

	b.WriteString("\n" + sectionStyle.Render("Your response") + "\n")
	for i, a := range m.cat.Actions {
		label := fmt.Sprintf("[%d] %s  %s", i+1, a.Label, labelStyle.Render(a.Desc))
		if i == m.action {
			prefix := "> "
			if m.focus != focusActions {
				prefix = "* "
			}
			b.WriteString(cursorStyle.Render(prefix) + label + "\n")
		} else {
			b.WriteString("  " + label + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab statement/actions • ↑/↓ or 1-9 pick • enter or ctrl+s submit • q quit"))
	return b.String()
}

func metric(label, value string, d game.DeltaView) string {
	return lipgloss.NewStyle().MarginRight(3).Render(
		labelStyle.Render(label) + "\n" + valueStyle.Render(value) + " " + renderDelta(d))
}

// viewFeed groups stakeholder posts as Public, Investors, then everyone else.
func viewFeed(feed []game.StakeholderPost) string {
	if len(feed) == 0 {
		return ""
	}
	groups := map[game.Group][]game.StakeholderPost{}
	for _, p := range feed {
		g := game.RoleGroup(p.Role)
		groups[g] = append(groups[g], p)
	}

	var b strings.Builder
	b.WriteString("\n" + sectionStyle.Render("Stakeholder feed") + "\n")
	for _, g := range []struct {
		group game.Group
		title string
	}{
		{game.GroupPublic, "Public"},
		{game.GroupInvestor, "Investors"},
		{game.GroupOther, "Other voices"},
	} {
		posts := groups[g.group]
		if len(posts) == 0 {
			continue
		}
		b.WriteString(labelStyle.Render(g.title) + "\n")
		for _, p := range posts {
			who := p.Role
			if p.Name != "" {
				who = p.Name + " (" + p.Role + ")"
			}
			fmt.Fprintf(&b, "  %s: %s\n", valueStyle.Render(who), p.Text)
		}
	}
	return b.String()
}

func (m model) viewVerdict(v session.View) string {
	st := v.State

	var b strings.Builder
	if v.Verdict.Outcome == game.OutcomeWon {
		b.WriteString(wonStyle.Render("CRISIS AVERTED"))
	} else {
		b.WriteString(lostStyle.Render("COMPANY COLLAPSED"))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Company:        "), valueStyle.Render(string(v.Archetype)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Final valuation:"), valueStyle.Render(fmt.Sprintf("$%.0f", v.MarketCap)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Share price:    "), valueStyle.Render(fmt.Sprintf("$%.2f", st.SharePrice)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Reputation:     "), valueStyle.Render(fmt.Sprintf("%.0f%%", st.Reputation)))
	if st.Headline != "" {
		b.WriteString("\n" + headlineStyle.Render(st.Headline) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter/r play again • q quit"))
	return b.String()
}
