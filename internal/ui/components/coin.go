package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/coinflip-tui/internal/models"
	"github.com/j-veylop/coinflip-tui/internal/ui/styles"
)

// TossFrames is how many spinner frames a toss lasts before the face shows.
const TossFrames = 12

const coinWidth = 13

var coinSpin = spinner.Spinner{
	Frames: []string{"Heads", "  |  ", "Tails", "  |  "},
	FPS:    time.Second / 15,
}

// Coin is the animated coin on the flip tab. It spins for TossFrames frames
// and then reveals the face it was tossed with.
type Coin struct {
	spinner spinner.Model
	face    models.Outcome
	pending models.Outcome
	frames  int
	tossing bool
}

// NewCoin returns a coin that has not been flipped yet.
func NewCoin() Coin {
	s := spinner.New()
	s.Spinner = coinSpin
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	return Coin{spinner: s}
}

// Toss starts revealing result. Without animation the face shows at once.
func (c *Coin) Toss(result models.Outcome, animate bool) tea.Cmd {
	if !animate {
		c.face = result
		c.pending = ""
		c.tossing = false
		return nil
	}

	c.pending = result
	c.frames = TossFrames
	if c.tossing {
		// Already spinning; the running tick chain picks up the new face.
		return nil
	}
	c.tossing = true
	return c.spinner.Tick
}

// Update advances the spin on this coin's ticks and ignores everything else.
func (c Coin) Update(msg tea.Msg) (Coin, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !c.tossing || tick.ID != c.spinner.ID() {
		return c, nil
	}

	c.frames--
	if c.frames <= 0 {
		c.tossing = false
		c.face = c.pending
		c.pending = ""
		return c, nil
	}

	var cmd tea.Cmd
	c.spinner, cmd = c.spinner.Update(msg)
	return c, cmd
}

// Tossing reports whether the coin is still spinning.
func (c Coin) Tossing() bool {
	return c.tossing
}

// Face returns the revealed face, empty before the first flip.
func (c Coin) Face() models.Outcome {
	return c.face
}

// Reset blanks the coin.
func (c *Coin) Reset() {
	c.face = ""
	c.pending = ""
	c.tossing = false
}

// View renders the coin.
func (c Coin) View() string {
	style := styles.CoinStyle.Width(coinWidth)

	switch {
	case c.tossing:
		return style.BorderForeground(styles.Primary).Render(c.spinner.View())
	case c.face == "":
		return style.BorderForeground(styles.Subtle).Render(styles.HelpStyle.Render("?"))
	default:
		faceStyle := styles.GetOutcomeStyle(c.face)
		return style.BorderForeground(faceStyle.GetForeground()).Render(faceStyle.Render(c.face.Title()))
	}
}
