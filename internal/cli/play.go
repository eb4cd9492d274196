package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/timeline"
)

var (
	playBarStyle     = lipgloss.NewStyle().Foreground(colorCyan)
	playTrackStyle   = lipgloss.NewStyle().Foreground(colorDim)
	playCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	playPausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// =============================================================================
// PlayModel - Terminal playback of a scope's clock
// =============================================================================

type tickMsg time.Time

// PlayModel is the bubbletea model driving a timeline player.
type PlayModel struct {
	Name   string
	Player *timeline.Player
	Tick   time.Duration
	Paused bool
	Width  int

	tl *timeline.Timeline
}

// NewPlayModel creates a model playing tl, advancing by tick per frame.
func NewPlayModel(name string, tl *timeline.Timeline, tick time.Duration) PlayModel {
	return PlayModel{
		Name:   name,
		Player: timeline.NewPlayer(tl),
		Tick:   tick,
		Width:  60,
		tl:     tl,
	}
}

func (m PlayModel) Init() tea.Cmd {
	return m.schedule()
}

func (m PlayModel) schedule() tea.Cmd {
	return tea.Tick(m.Tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.Paused = !m.Paused
		case "left", "h":
			m.step(-1)
		case "right", "l":
			m.step(1)
		case "home", "0":
			m.Player.Seek(m.tl.Keyframes[0])
		}
	case tickMsg:
		if !m.Paused {
			m.Player.Tick(float64(m.Tick) / float64(time.Millisecond))
		}
		return m, m.schedule()
	case tea.WindowSizeMsg:
		m.Width = max(20, msg.Width-10)
	}
	return m, nil
}

// step seeks delta keyframes away from the current one, wrapping around.
func (m PlayModel) step(delta int) {
	n := len(m.tl.Keyframes)
	i := ((m.Player.Frame().Index+delta)%n + n) % n
	m.Player.Seek(m.tl.Keyframes[i])
}

func (m PlayModel) View() string {
	var b strings.Builder
	f := m.Player.Frame()

	b.WriteString(StyleTitle.Render("Playing " + m.Name))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.tl.Field + " · " + m.tl.Type))
	b.WriteString("\n\n")

	b.WriteString(progressBar(f.Clock, m.tl.Duration, m.Width))
	b.WriteString(" ")
	b.WriteString(StyleValue.Render(formatMillis(f.Clock) + " / " + formatMillis(m.tl.Duration)))
	b.WriteString("\n\n")

	b.WriteString(m.keyframeStrip(f.Index))
	b.WriteString("\n\n")

	state := StyleDim.Render("playing")
	switch {
	case m.Paused:
		state = playPausedStyle.Render("paused")
	case !m.Player.Playing():
		state = playPausedStyle.Render("holding")
	}
	fmt.Fprintf(&b, "%s %s %s %s  %s\n",
		playCurrentStyle.Render(fmt.Sprint(f.Current)),
		StyleDim.Render(iconArrow),
		StyleValue.Render(fmt.Sprint(f.Next)),
		StyleDim.Render(fmt.Sprintf("tween %.2f", f.Tween)),
		state)
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("space pause  ←/→ seek  0 restart  q quit"))

	return b.String()
}

// keyframeStrip lists the keyframes with the current one highlighted.
func (m PlayModel) keyframeStrip(current int) string {
	parts := make([]string, len(m.tl.Keyframes))
	for i, k := range m.tl.Keyframes {
		if i == current {
			parts[i] = playCurrentStyle.Render(fmt.Sprint(k))
		} else {
			parts[i] = StyleDim.Render(fmt.Sprint(k))
		}
	}
	return strings.Join(parts, " ")
}

// progressBar renders v/total as a bar width cells wide.
func progressBar(v, total float64, width int) string {
	filled := 0
	if total > 0 {
		filled = int(v / total * float64(width))
	}
	filled = min(max(filled, 0), width)
	return playBarStyle.Render(strings.Repeat("█", filled)) +
		playTrackStyle.Render(strings.Repeat("░", width-filled))
}

// =============================================================================
// Play Command
// =============================================================================

// playCommand creates the play command.
func (c *CLI) playCommand() *cobra.Command {
	var (
		scope   int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "play <spec.json|->",
		Short: "Play an animated scope's clock in the terminal",
		Long: `Play an animated scope's clock in the terminal with the easing, pauses
and looping the compiled graph uses. The frame interval is [preview] tick.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			scopes, err := c.loadTimelines(ctx, args[0], noCache)
			if err != nil {
				return err
			}
			if scope < 0 || scope >= len(scopes) {
				return errors.New(errors.ErrCodeInvalidInput, "--scope %d out of range (chart has %d)", scope, len(scopes))
			}
			st := scopes[scope]

			m := NewPlayModel(scopeName(st.Scope.ID), st.Timeline, c.cfg.Preview.Tick.Duration)
			_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().IntVar(&scope, "scope", 0, "index of the scope to play")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
