package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/coinflip-tui/internal/purchase"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
)

// RenderPlans lists plans with the selected one highlighted.
func RenderPlans(plans []purchase.Plan, selected int) string {
	lines := make([]string, 0, len(plans))
	for i, p := range plans {
		row := fmt.Sprintf("%-9s %7s %-9s", p.Name, p.Price, p.Period)
		if p.Note != "" {
			row += " " + styles.SuccessTextStyle.Render(p.Note)
		}

		if i == selected {
			lines = append(lines, styles.SelectedListItemStyle.Render("> "+row))
		} else {
			lines = append(lines, styles.ListItemStyle.Render(row))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderPaywall renders the upgrade modal. A blocking paywall cannot be
// dismissed and says so in its footer.
func RenderPaywall(blocking bool, plans []purchase.Plan, selected int, busy bool) string {
	style := styles.ModalContentStyle
	title := "Daily limit reached"
	body := "You've used today's free flips.\nGo Pro for unlimited flips and full history."
	footer := "↑/↓ choose • enter buy • R restore • esc not now"

	if blocking {
		style = styles.ModalBlockingStyle
		title = "Your free trial has ended"
		body = "Upgrade to Pro to keep flipping."
		footer = "↑/↓ choose • enter buy • R restore • q quit"
	}

	lines := []string{
		styles.TitleStyle.Render(title),
		body,
		"",
		RenderPlans(plans, selected),
		"",
	}
	if busy {
		lines = append(lines, styles.WarningTextStyle.Render("Contacting store..."))
	}
	lines = append(lines, styles.HelpStyle.Render(footer))

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
