package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/ui/components"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
	"github.com/j-veylop/coinflip-tui/internal/usage"
)

// maxQuestionWidth truncates long questions in the flip list.
const maxQuestionWidth = 48

// View renders the history tab.
func (m *Model) View() string {
	if m.errorMsg != "" {
		return m.renderError()
	}

	flips := m.state.Snapshot().Flips
	if len(flips) == 0 && (m.historyData == nil || !m.historyData.HasData()) {
		if m.loading {
			return m.renderLoading()
		}
		return m.renderEmpty()
	}

	sections := []string{m.renderHeader()}
	if m.confirmClear {
		sections = append(sections,
			styles.WarningTextStyle.Render("Press c again to erase every flip and counter, any other key to cancel"),
			"")
	}
	sections = append(sections,
		m.renderSummary(),
		m.renderDailyChart(),
		m.renderRecentFlips(flips),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No flips yet."),
		styles.HelpStyle.Render("Flip a coin on the Flip tab and it will show up here."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if m.historyData != nil && !m.historyData.FirstFlip.IsZero() {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Flips: %s → %s",
			m.historyData.FirstFlip.Format("Jan 2, 2006"),
			m.historyData.LastFlip.Format("Jan 2, 2006"),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderSummary() string {
	cardWidth := max(m.width-6, 40)
	u := m.state.Usage()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("All-Time Totals"), "")

	heads := styles.GetOutcomeStyle(models.Heads).Render(fmt.Sprintf("%d", u.HeadsCount))
	tails := styles.GetOutcomeStyle(models.Tails).Render(fmt.Sprintf("%d", u.TailsCount))
	rows = append(rows,
		fmt.Sprintf("  Total flips: %s", lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d", u.TotalFlips))),
		fmt.Sprintf("  Heads: %s (%.0f%%)   Tails: %s", heads, u.HeadsPercent(), tails),
	)

	if d := m.historyData; d != nil && d.HasData() {
		rows = append(rows, "",
			styles.CardTitleStyle.Render(m.timeRange.String()), "")

		bars := components.RenderBarChart(
			[]float64{float64(d.Heads), float64(d.Tails)},
			[]string{"Heads", "Tails"},
			max(cardWidth-12, 30),
		)
		for line := range strings.SplitSeq(bars, "\n") {
			rows = append(rows, "  "+line)
		}

		if d.LongestStreak > 0 {
			rows = append(rows, fmt.Sprintf("  Longest streak: %d × %s",
				d.LongestStreak,
				styles.GetOutcomeStyle(d.StreakOutcome).Render(d.StreakOutcome.Title()),
			))
		}
		if day, count := d.BusiestDay(); count > 0 {
			rows = append(rows, fmt.Sprintf("  Busiest day: %s (%d flips)",
				lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(day.Format("Mon, Jan 2")),
				count,
			))
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDailyChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Daily Flips"), "")

	if m.historyData == nil || len(m.historyData.Daily) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No flips in this range"))
	} else {
		daily := m.historyData.Daily
		headsData := make([]float64, len(daily))
		tailsData := make([]float64, len(daily))
		for i, d := range daily {
			headsData[i] = float64(d.Heads)
			tailsData[i] = float64(d.Tails)
		}

		chartWidth := max(cardWidth-12, 30)
		chart := components.RenderDualLineChart(headsData, tailsData, chartWidth, 8,
			fmt.Sprintf("%d days - heads (gold) vs tails (blue)", len(daily)))

		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}

		rows = append(rows, "", "  "+components.RenderLegend([]components.LegendItem{
			{Label: "Heads", Color: components.ChartHeadsColor},
			{Label: "Tails", Color: components.ChartTailsColor},
		}))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRecentFlips(flips []models.FlipRecord) string {
	cardWidth := max(m.width-6, 40)
	u := m.state.Usage()
	pro := m.state.Entitlement().IsPro

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render(fmt.Sprintf("Recent Flips (%d)", len(flips))), "")

	if len(flips) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No flips recorded"))
	}
	for _, f := range flips {
		rows = append(rows, renderFlipRow(f))
	}

	if !pro && u.LoggedFlips > len(flips) {
		rows = append(rows, "",
			styles.WarningTextStyle.Render(fmt.Sprintf(
				"  %d older flips hidden. Pro shows your last %d.",
				u.LoggedFlips-len(flips), usage.ProHistoryLimit)))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderFlipRow(f models.FlipRecord) string {
	outcome := styles.GetOutcomeStyle(f.Result).Render(fmt.Sprintf("%-5s", f.Result.Title()))
	line := fmt.Sprintf("  %s  %s", styles.HelpStyle.Render(f.Timestamp.Format("Jan 02 15:04")), outcome)
	if q := truncate(f.Question, maxQuestionWidth); q != "" {
		line += "  " + q
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
