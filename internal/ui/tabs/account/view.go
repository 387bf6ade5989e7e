package account

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/ui/components"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
	"github.com/j-veylop/coinflip-tui/internal/version"
)

// View renders the account tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderStatusCard(),
	}
	if !m.state.Entitlement().IsPro {
		sections = append(sections, m.renderPlansCard())
	}
	sections = append(sections, m.renderSettingsCard())
	if m.state.Snapshot().DevTools {
		sections = append(sections, m.renderDevCard())
	}
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Account")
	subtitle := styles.HelpStyle.Render("Plan, preferences and application information")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderStatusCard() string {
	ent := m.state.Entitlement()
	u := m.state.Usage()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Status"), "")

	tier := ent.Tier()
	rows = append(rows, renderRow("Plan", styles.GetTierStyle(tier).Render(tierName(tier))))

	if !ent.IsPro {
		rows = append(rows, renderRow("Trial", components.TrialBadgeText(ent)))
		if ent.TrialStart != nil {
			rows = append(rows, renderRow("Trial started", ent.TrialStart.Format("Jan 2, 2006")))
		}
	}

	if u.Unlimited() {
		rows = append(rows, renderRow("Flips today", fmt.Sprintf("%d (unlimited)", u.DailyFlips)))
	} else {
		remaining := styles.GetRemainingStyle(u.RemainingFlips, u.DailyLimit).
			Render(fmt.Sprintf("%d left", u.RemainingFlips))
		rows = append(rows, renderRow("Flips today", fmt.Sprintf("%d/%d, %s", u.DailyFlips, u.DailyLimit, remaining)))
	}
	rows = append(rows, renderRow("Total flips", fmt.Sprintf("%d", u.TotalFlips)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func tierName(t models.Tier) string {
	switch t {
	case models.TierPro:
		return "Pro"
	case models.TierTrial:
		return "Free trial"
	default:
		return "Trial ended"
	}
}

func (m *Model) renderPlansCard() string {
	var rows []string
	rows = append(rows,
		styles.CardTitleStyle.Render("Go Pro"),
		styles.HelpStyle.Render("Unlimited flips and your last 100 flips in history"),
		"",
		components.RenderPlans(purchase.Plans, m.planIndex),
		"",
	)
	if m.state.IsPurchasing() {
		rows = append(rows, styles.WarningTextStyle.Render("Contacting store..."))
	}
	rows = append(rows, styles.HelpStyle.Render("↑/↓ choose • enter buy • R restore"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSettingsCard() string {
	s := m.state.Settings()

	rows := []string{
		styles.CardTitleStyle.Render("Preferences"),
		"",
		renderRow("[s] Sound", onOff(s.SoundEnabled)),
		renderRow("[a] Animations", onOff(s.AnimationsEnabled)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func onOff(b bool) string {
	if b {
		return styles.SuccessTextStyle.Render("on")
	}
	return styles.HelpStyle.Render("off")
}

func (m *Model) renderDevCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("Developer"),
		"",
		styles.WarningTextStyle.Render("[D] Reset trial, daily flips and Pro status"),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders the version and configuration card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Coin Flip"), "")

	rows = append(rows,
		renderRow("Version", version.GetVersion()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)

	if m.config != nil {
		rows = append(rows, "",
			renderRow("Database", m.config.DatabasePath),
			renderRow("Settings", m.config.SettingsPath),
			renderRow("Log File", m.config.LogPath),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderRow renders a key-value row.
func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
