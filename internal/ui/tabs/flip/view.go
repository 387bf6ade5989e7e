package flip

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/services"
	"github.com/j-veylop/coinflip-tui/internal/ui/components"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
)

// recentCount is how many past outcomes the strip under the coin shows.
const recentCount = 10

// View renders the flip tab.
func (m *Model) View() string {
	if !m.state.Loaded() {
		return styles.DocStyle.Width(m.width).Height(m.height).
			Render(styles.HelpStyle.Render("Loading..."))
	}

	usage := m.state.Usage()

	sections := []string{
		m.renderQuestion(),
		"",
		m.coin.View(),
		"",
		m.renderAnswer(),
		"",
		m.bar.View(usage, min(m.width-4, 70)),
		"",
		m.renderRecent(),
		"",
		m.renderHint(usage),
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderQuestion() string {
	if m.editing {
		return styles.FocusedBorderStyle.Render(m.input.View())
	}
	if m.question == "" {
		return styles.HelpStyle.Render("Press e to ask a question, or just flip")
	}
	return styles.TitleStyle.Render(m.question)
}

func (m *Model) renderAnswer() string {
	if m.coin.Tossing() {
		return styles.HelpStyle.Render("Flipping...")
	}
	face := m.coin.Face()
	if face == "" {
		return ""
	}

	answer := styles.GetOutcomeStyle(face).Render(fmt.Sprintf("It's %s!", face.Title()))
	if m.asked == "" {
		return answer
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		styles.HelpStyle.Render(m.asked),
		answer,
	)
}

func (m *Model) renderRecent() string {
	flips := m.state.Snapshot().Flips
	if len(flips) == 0 {
		return ""
	}
	if len(flips) > recentCount {
		flips = flips[:recentCount]
	}

	letters := make([]string, len(flips))
	for i, f := range flips {
		letters[i] = styles.GetOutcomeStyle(f.Result).Render(f.Result.Letter())
	}
	return styles.HelpStyle.Render("Recent ") + strings.Join(letters, " ")
}

func (m *Model) renderHint(usage models.UsageStats) string {
	ent := m.state.Entitlement()
	switch {
	case ent.IsPro:
		return styles.HelpStyle.Render("Pro: unlimited flips")
	case usage.RemainingFlips == 0:
		return styles.WarningTextStyle.Render("No free flips left today. Press u to go Pro.")
	default:
		return components.TrialBadge(ent, services.TrialEndingDays) + " " +
			styles.HelpStyle.Render("Press u to unlock unlimited flips")
	}
}
