// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/coinflip-tui/internal/models"
)

// Color definitions for the coinflip theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("214") // Gold
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Coin faces
	HeadsColor = lipgloss.Color("220") // Yellow
	TailsColor = lipgloss.Color("75")  // Steel blue

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("208") // Orange
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedBorderStyle creates a focused border.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// ListItemStyle styles list items.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedListItemStyle styles selected list items.
var SelectedListItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(Primary).
	Bold(true)

// TierProStyle styles PRO tier indicators.
var TierProStyle = lipgloss.NewStyle().
	Foreground(Success).
	Bold(true)

// TierTrialStyle styles TRIAL tier indicators.
var TierTrialStyle = lipgloss.NewStyle().
	Foreground(Info)

// TierExpiredStyle styles EXPIRED tier indicators.
var TierExpiredStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// BadgeStyle is the pill drawn around the trial badge.
var BadgeStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Foreground(lipgloss.Color("16")).
	Background(Info)

// BadgeUrgentStyle highlights a trial that is about to end.
var BadgeUrgentStyle = BadgeStyle.
	Background(Warning).
	Bold(true)

// BadgeProStyle is the badge of a Pro user.
var BadgeProStyle = BadgeStyle.
	Background(Success).
	Bold(true)

// BadgeExpiredStyle is the badge of an expired trial.
var BadgeExpiredStyle = BadgeStyle.
	Background(Error).
	Bold(true)

// CoinStyle draws the coin face.
var CoinStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Bold(true).
	Padding(1, 4).
	Align(lipgloss.Center)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// ModalContentStyle styles the paywall and welcome modals.
var ModalContentStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 2).
	Background(BgDark)

// ModalBlockingStyle styles a modal that cannot be dismissed.
var ModalBlockingStyle = ModalContentStyle.
	BorderForeground(Error)

// ButtonStyle is the base button style.
var ButtonStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginRight(1)

// ButtonActiveStyle styles active/focused buttons.
var ButtonActiveStyle = ButtonStyle.
	Background(Primary).
	Foreground(lipgloss.Color("16")).
	Bold(true)

var ButtonInactiveStyle = ButtonStyle.
	Background(BgLight).
	Foreground(TextSecondary)

// GetTierStyle returns the appropriate style for a tier.
func GetTierStyle(tier models.Tier) lipgloss.Style {
	switch tier {
	case models.TierPro:
		return TierProStyle
	case models.TierTrial:
		return TierTrialStyle
	default:
		return TierExpiredStyle
	}
}

// GetOutcomeStyle returns the foreground style of a coin face.
func GetOutcomeStyle(o models.Outcome) lipgloss.Style {
	if o == models.Tails {
		return lipgloss.NewStyle().Foreground(TailsColor).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(HeadsColor).Bold(true)
}

// GetRemainingStyle colors the remaining daily flips.
func GetRemainingStyle(remaining, limit int) lipgloss.Style {
	switch {
	case remaining < 0:
		return TierProStyle
	case remaining == 0:
		return ErrorTextStyle
	case limit > 0 && remaining*5 <= limit*2:
		return WarningTextStyle
	default:
		return SuccessTextStyle
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
