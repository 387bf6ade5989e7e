package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
)

// FlipsBar renders today's free-flip usage as a progress bar.
type FlipsBar struct {
	progress progress.Model
}

// NewFlipsBar creates a bar that runs from green to red as flips are used.
func NewFlipsBar() FlipsBar {
	return FlipsBar{
		progress: progress.New(
			progress.WithScaledGradient("#51cf66", "#ff6b6b"),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// View renders the bar for stats within width cells.
func (b FlipsBar) View(stats models.UsageStats, width int) string {
	label := styles.ProgressLabelStyle.Width(10).Render("Today")

	if stats.Unlimited() {
		return lipgloss.JoinHorizontal(lipgloss.Center,
			label,
			styles.TierProStyle.Render(fmt.Sprintf("Unlimited flips (%d today)", stats.DailyFlips)),
		)
	}

	b.progress.Width = max(width-34, 10)

	used := 0.0
	if stats.DailyLimit > 0 {
		used = min(float64(stats.DailyFlips)/float64(stats.DailyLimit), 1)
	}

	remaining := styles.GetRemainingStyle(stats.RemainingFlips, stats.DailyLimit).
		Render(fmt.Sprintf("%d left", stats.RemainingFlips))
	counts := styles.HelpStyle.Render(fmt.Sprintf("%d/%d ", stats.DailyFlips, stats.DailyLimit))

	return lipgloss.JoinHorizontal(lipgloss.Center,
		label,
		b.progress.ViewAs(used),
		" ",
		counts,
		remaining,
	)
}
