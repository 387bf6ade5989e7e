package components

import (
	"fmt"

	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
)

// TrialBadgeText is the badge label for status.
func TrialBadgeText(status models.EntitlementStatus) string {
	switch {
	case status.IsPro:
		return "PRO"
	case !status.TrialActive:
		return "Trial ended"
	case !status.TrialStarted:
		return fmt.Sprintf("%d-day trial", status.TrialDurationDays)
	case status.TrialDaysRemaining == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", status.TrialDaysRemaining)
	}
}

// TrialBadge renders the badge, highlighted once urgentDays or fewer remain.
func TrialBadge(status models.EntitlementStatus, urgentDays int) string {
	style := styles.BadgeStyle
	switch {
	case status.IsPro:
		style = styles.BadgeProStyle
	case !status.TrialActive:
		style = styles.BadgeExpiredStyle
	case status.TrialStarted && status.TrialDaysRemaining <= urgentDays:
		style = styles.BadgeUrgentStyle
	}
	return style.Render(TrialBadgeText(status))
}
