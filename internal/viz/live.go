package viz

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/grid"
	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/reaction"
	"github.com/san-kum/rdsim/internal/sim"
)

const (
	width           = 72
	height          = 24
	historyCapacity = 600
	maxStepsPerTick = 400
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model owns a private pair of fields and steps them between redraws.
type Model struct {
	n             int
	params        reaction.Params
	initialParams reaction.Params
	stepper       *reaction.GrayScott
	workers       int
	u, v          *grid.Field
	steps         int
	frames        int
	stepsPerTick  int
	running       bool
	unstable      bool
	shade         bool
	canvas        *Canvas
	paramKeys     []string
	selected      int
	meanHistory   []float64
	coverage      *metrics.Coverage
	recording     bool
	recorded      []*sim.Frame
	gifPath       string
	lastErr       error
	showHelp      bool
	preset        string
}

// NewModel seeds an n x n field. stepsPerTick plays the role of
// steps per frame in a batch run.
func NewModel(n int, p reaction.Params, stepsPerTick, workers int, preset string) (Model, error) {
	stepper, err := reaction.New(p)
	if err != nil {
		return Model{}, err
	}
	u, v, err := reaction.Init(n)
	if err != nil {
		return Model{}, err
	}
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	stepper.WithWorkers(workers)

	keys := make([]string, 0, 4)
	for k := range p.GetParams() {
		if k != "spacing" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return Model{
		n:             n,
		params:        p,
		initialParams: p,
		stepper:       stepper,
		workers:       workers,
		u:             u,
		v:             v,
		stepsPerTick:  stepsPerTick,
		running:       true,
		canvas:        NewCanvas(width, height),
		paramKeys:     keys,
		meanHistory:   make([]float64, 0, historyCapacity),
		coverage:      metrics.NewCoverage(metrics.DefaultCoverageThreshold),
		gifPath:       "rdsim.gif",
		preset:        preset,
	}, nil
}

// WithGIFPath sets where recordings are written.
func (m Model) WithGIFPath(path string) Model {
	m.gifPath = path
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "v":
			m.shade = !m.shade
		case "t":
			CurrentTheme = NextTheme(CurrentTheme.Name)
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.recorded = nil
			} else {
				m.recording = true
				m.recorded = make([]*sim.Frame, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.unstable {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs one tick worth of steps and records the resulting frame.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		if err := m.stepper.Advance(m.u, m.v); err != nil {
			m.lastErr = err
			m.running = false
			return
		}
		m.steps++
	}

	frame := &sim.Frame{Index: m.frames, Step: m.steps, Data: m.v.Interior()}
	m.frames++
	if !frame.IsFinite() {
		m.unstable = true
		return
	}

	m.coverage.Observe(frame)
	m.meanHistory = append(m.meanHistory, frame.Mean())
	if len(m.meanHistory) > historyCapacity {
		m.meanHistory = m.meanHistory[1:]
	}
	if m.recording {
		m.recorded = append(m.recorded, frame)
	}
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	next := m.params
	if err := next.SetParam(key, next.GetParams()[key]*factor); err != nil {
		m.lastErr = err
		return
	}
	stepper, err := reaction.New(next)
	if err != nil {
		m.lastErr = err
		return
	}
	m.params = next
	m.stepper = stepper.WithWorkers(m.workers)
}

func (m *Model) reset() {
	u, v, err := reaction.Init(m.n)
	if err != nil {
		m.lastErr = err
		return
	}
	m.u, m.v = u, v
	m.steps, m.frames = 0, 0
	m.unstable = false
	m.lastErr = nil
	m.meanHistory = m.meanHistory[:0]
	m.coverage.Reset()
}

func (m *Model) saveGIF() {
	if len(m.recorded) == 0 {
		return
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		m.lastErr = err
		return
	}
	defer f.Close()

	enc, err := export.NewGIF(f, export.Options{FPS: 30, Scale: 2, Palette: CurrentTheme.Palette})
	if err != nil {
		m.lastErr = err
		return
	}
	for _, frame := range m.recorded {
		if err := enc.Encode(frame); err != nil {
			m.lastErr = err
			return
		}
	}
	if err := enc.Close(); err != nil {
		m.lastErr = err
	}
}

// Steps reports how many updates the viewer has applied since the last reset.
func (m Model) Steps() int { return m.steps }

func (m Model) Params() reaction.Params { return m.params }

func (m Model) status() string {
	switch {
	case m.unstable:
		return statusUnstable.Render("UNSTABLE")
	case m.recording:
		return statusRecording.Render(fmt.Sprintf("REC %d", len(m.recorded)))
	case !m.running:
		return statusPaused.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

func (m Model) View() string {
	data := m.v.Interior()
	if m.shade {
		m.canvas.DrawShade(data)
	} else {
		m.canvas.DrawThreshold(data, 0.5)
	}
	field := lipgloss.NewStyle().Foreground(CurrentTheme.Field)
	canvasView := canvasStyle.Render(field.Render(m.canvas.String()))

	var s strings.Builder
	title := "GRAY-SCOTT"
	if m.preset != "" {
		title += " / " + strings.ToUpper(m.preset)
	}
	s.WriteString(headerStyle.Foreground(CurrentTheme.Accent).Render(title) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.meanHistory) > 1 {
		chart := asciigraph.Plot(m.meanHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("mean V"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Grid") + valueStyle.Render(fmt.Sprintf("%dx%d", m.n, m.n)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.steps)) + "\n")
	s.WriteString(labelStyle.Render("Steps/tick") + valueStyle.Render(fmt.Sprintf("%d", m.stepsPerTick)) + "\n")
	s.WriteString(labelStyle.Render("Trend") + valueStyle.Render(Sparkline(m.meanHistory, 24)) + "\n")
	s.WriteString(labelStyle.Render("Coverage") + valueStyle.Render(ProgressBar(m.coverage.Value(), 16)) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(CurrentTheme.Name) + "\n")

	s.WriteString("\nPARAMETERS\n")
	values := m.params.GetParams()
	initial := m.initialParams.GetParams()
	for i, k := range m.paramKeys {
		ratio := values[k] / (2 * initial[k])
		line := fmt.Sprintf("%-4s %s %.4f", k, ProgressBar(ratio, 10), values[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Width(0).Render(line) + "\n")
		}
	}
	if m.lastErr != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Render(m.lastErr.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reseed Q:Quit\nT:Theme G:Record V:View ?:Help\nTab ↑↓:Tune +-:Speed"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Reseed the field         ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  + / -    - More/fewer steps per tick║
║  V        - Braille or shade view    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
