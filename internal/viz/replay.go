package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/musclesim/internal/physics"
	"github.com/san-kum/musclesim/internal/sim"
)

const (
	canvasWidth  = 60
	canvasHeight = 20
	graphWindow  = 120
	maxSpeed     = 32
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Replay plays back a finished run. Each tick advances the playhead by speed
// samples; playback pauses on the last sample.
type Replay struct {
	title    string
	history  sim.TimeHistory
	scene    *Scene
	canvas   *Canvas
	theme    Theme
	frame    int
	speed    int
	running  bool
	showHelp bool
}

func NewReplay(title string, history sim.TimeHistory, joint physics.Joint, limits physics.Limits) Replay {
	return Replay{
		title:   title,
		history: history,
		scene:   NewScene(joint, limits),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		theme:   Themes[0],
		speed:   1,
		running: len(history) > 1,
	}
}

// WithTheme sets the initial colour theme.
func (r Replay) WithTheme(name string) Replay {
	r.theme = GetTheme(name)
	return r
}

func (r Replay) Frame() int    { return r.frame }
func (r Replay) Speed() int    { return r.speed }
func (r Replay) Running() bool { return r.running }

func (r Replay) Init() tea.Cmd {
	return tick()
}

func (r Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return r, tea.Quit
		case " ":
			r.running = !r.running
			if r.running && r.frame >= len(r.history)-1 {
				r.frame = 0
			}
		case "[":
			r.running = false
			r.seek(-1)
		case "]":
			r.running = false
			r.seek(1)
		case "+", "=":
			r.speed = min(maxSpeed, r.speed*2)
		case "-", "_":
			r.speed = max(1, r.speed/2)
		case "r":
			r.frame = 0
			r.running = len(r.history) > 1
		case "t":
			r.theme = nextTheme(r.theme)
		case "?":
			r.showHelp = !r.showHelp
		}
	case TickMsg:
		if r.running {
			r.seek(r.speed)
			if r.frame >= len(r.history)-1 {
				r.running = false
			}
		}
		return r, tick()
	}
	return r, nil
}

func (r *Replay) seek(delta int) {
	if len(r.history) == 0 {
		r.frame = 0
		return
	}
	r.frame = max(0, min(len(r.history)-1, r.frame+delta))
}

func (r Replay) View() string {
	st := newStyles(r.theme)
	if len(r.history) == 0 {
		return st.header.Render(strings.ToUpper(r.title)) + "\n" + st.help.Render("(empty history)") + "\n"
	}

	s := r.history[r.frame]
	r.scene.Draw(r.canvas, s.Theta)
	canvasView := st.canvas.Render(r.canvas.String())

	var b strings.Builder
	b.WriteString(st.header.Render(strings.ToUpper(r.title)) + "\n")

	status := "PLAYING"
	if !r.running {
		status = "PAUSED"
	}
	b.WriteString(fmt.Sprintf("%s  x%d\n", status, r.speed))
	b.WriteString(ProgressBar(float64(r.frame)/float64(max(1, len(r.history)-1)), 30) + "\n\n")

	row := func(label, value string) {
		b.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", s.Time))
	row("Angle", fmt.Sprintf("%.1f°", physics.Degrees(s.Theta)))
	row("Velocity", fmt.Sprintf("%.3f rad/s", s.Omega))
	row("Force", fmt.Sprintf("%.1f N", s.Force))
	row("Length", fmt.Sprintf("%.4f m", s.Length))
	row("Activation", fmt.Sprintf("%.2f", s.Activation))
	if s.AtLimit {
		b.WriteString(st.warning.Render("AT LIMIT") + "\n")
	}

	lo := max(0, r.frame+1-graphWindow)
	forces := r.history[lo : r.frame+1].Forces()
	if len(forces) > 1 {
		chart := asciigraph.Plot(forces, asciigraph.Height(5), asciigraph.Width(28), asciigraph.Caption("Force (N)"))
		b.WriteString(st.graph.Render(chart) + "\n")
	}
	b.WriteString(st.label.Render("Angle") + Sparkline(r.history[lo:r.frame+1].Thetas(), 30) + "\n")

	b.WriteString(st.help.Render("SP:Pause [ ]:Step +/-:Speed\nR:Restart T:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(b.String()))
	if r.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  [ ]      - Step back/forward        ║
║  + -      - Double/halve speed       ║
║  R        - Restart                  ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// RunReplay takes over the terminal until the user quits.
func RunReplay(r Replay) error {
	_, err := tea.NewProgram(r, tea.WithAltScreen()).Run()
	return err
}
