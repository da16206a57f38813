package ui

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg reports one sampled frame having been examined.
type frameMsg struct {
	index int
	codes int
}

// codeMsg reports a newly discovered unique code.
type codeMsg struct {
	code string
}

const (
	debugHeaderLines = 3
	debugFooterLines = 1
)

// debugModel renders live scan progress on the alternate screen.
type debugModel struct {
	spinner  spinner.Model
	vp       viewport.Model
	video    string
	backend  string
	interval int

	frames  int // sampled frames examined so far
	last    int // stream index of the most recent sampled frame
	inFrame int // codes extracted from that frame
	unique  int
	lines   []string

	ready bool
}

func newDebugModel(video, backend string, interval int) debugModel {
	return debugModel{
		spinner:  NewAppSpinner(),
		video:    video,
		backend:  backend,
		interval: interval,
	}
}

func (m debugModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		vpWidth := msg.Width - 2 // border columns
		vpHeight := msg.Height - debugHeaderLines - debugFooterLines - 2 // -2 border overhead
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.vp = viewport.New(vpWidth, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = vpWidth
			m.vp.Height = vpHeight
		}
		m.vp.SetContent(strings.Join(m.lines, "\n"))
		return m, nil

	case frameMsg:
		m.frames++
		m.last = msg.index
		m.inFrame = msg.codes
		m.appendLine(LabelStyle.Render(fmt.Sprintf("frame %d: %d symbols", msg.index, msg.codes)))
		return m, nil

	case codeMsg:
		m.unique++
		m.appendLine(FoundStyle.Render("+ " + msg.code))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.ready {
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	return m, nil
}

const maxLogLines = 500

func (m *debugModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
	if m.ready {
		m.vp.SetContent(strings.Join(m.lines, "\n"))
		m.vp.GotoBottom()
	}
}

func (m debugModel) View() string {
	if !m.ready {
		return "starting debug view..."
	}

	header := fmt.Sprintf("%s %s %s",
		m.spinner.View(),
		TitleStyle.Render("scanning"),
		NormalStyle.Render(m.video),
	)
	stats := strings.Join([]string{
		LabelStyle.Render("backend ") + StatStyle.Render(m.backend),
		LabelStyle.Render("interval ") + StatStyle.Render(fmt.Sprintf("%d", m.interval)),
		LabelStyle.Render("sampled ") + StatStyle.Render(fmt.Sprintf("%d", m.frames)),
		LabelStyle.Render("frame ") + StatStyle.Render(fmt.Sprintf("%d", m.last)),
		LabelStyle.Render("in frame ") + StatStyle.Render(fmt.Sprintf("%d", m.inFrame)),
		LabelStyle.Render("unique ") + StatStyle.Render(fmt.Sprintf("%d", m.unique)),
	}, "  ")
	bordered := BorderStyle.
		Width(m.vp.Width).
		Render(m.vp.View())
	footer := HintStyle.Render("q closes this view; the scan keeps running")

	return header + "\n" + stats + "\n\n" + bordered + "\n" + footer
}

// DebugView is a live dashboard for --debug runs. It owns a Bubble Tea
// program on the alternate screen; the scan loop feeds it events from
// another goroutine. Closing the view never stops the scan.
type DebugView struct {
	prog   *tea.Program
	active atomic.Bool
	done   chan struct{}
}

// StartDebugView launches the dashboard and returns immediately.
func StartDebugView(video, backend string, interval int) *DebugView {
	d := &DebugView{
		prog: tea.NewProgram(newDebugModel(video, backend, interval), tea.WithAltScreen()),
		done: make(chan struct{}),
	}
	d.active.Store(true)
	go func() {
		_, _ = d.prog.Run()
		d.active.Store(false)
		close(d.done)
	}()
	return d
}

// Active reports whether the dashboard is still on screen. It goes
// false once the user dismisses the view.
func (d *DebugView) Active() bool { return d.active.Load() }

// Frame records a sampled frame.
func (d *DebugView) Frame(index, codes int) {
	if d.Active() {
		d.prog.Send(frameMsg{index: index, codes: codes})
	}
}

// Found records a newly discovered code.
func (d *DebugView) Found(code string) {
	if d.Active() {
		d.prog.Send(codeMsg{code: code})
	}
}

// Close dismisses the dashboard if it is still up and waits for the
// terminal to be restored.
func (d *DebugView) Close() {
	if d.Active() {
		d.prog.Quit()
	}
	<-d.done
}

// LogWriter wraps w so that writes are dropped while the dashboard is
// on screen and pass through once it is gone. Pointing the stderr
// logger at it keeps stray log lines off the alternate screen.
func (d *DebugView) LogWriter(w io.Writer) io.Writer {
	return &gatedWriter{view: d, out: w}
}

type gatedWriter struct {
	view *DebugView
	out  io.Writer
}

func (g *gatedWriter) Write(p []byte) (int, error) {
	if g.view.Active() {
		return len(p), nil
	}
	return g.out.Write(p)
}
