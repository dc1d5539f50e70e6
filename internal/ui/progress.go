package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sdlint/internal/pipeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// stageWeight is the share of a file's bar credit granted while it sits in
// a stage; settled files count as 1.
var stageWeight = map[pipeline.Stage]float64{
	pipeline.StageLoad:  0.2,
	pipeline.StageParse: 0.5,
	pipeline.StageLint:  0.8,
}

var stageLabels = map[pipeline.Stage]string{
	pipeline.StageLoad:  "loading",
	pipeline.StageParse: "parsing",
	pipeline.StageLint:  "linting",
}

// row tracks one file's place in the run.
type row struct {
	name    string
	state   string
	stage   pipeline.Stage
	settled bool
}

type lintProgress struct {
	title   string
	events  <-chan pipeline.Event
	spin    spinner.Model
	bar     progress.Model
	rows    []row
	byName  map[string]int
	phase   string
	width   int
	done    bool
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders lint progress.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = busyStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &lintProgress{
		title:  title,
		events: events,
		spin:   spin,
		bar:    bar,
		rows:   make([]row, len(files)),
		byName: make(map[string]int, len(files)),
		width:  80,
	}
	for i, file := range files {
		m.rows[i] = row{name: file, state: "queued"}
		m.byName[file] = i
	}
	return m
}

func (m *lintProgress) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.nextEvent())
}

// nextEvent blocks on the event channel; a closed channel ends the program.
func (m *lintProgress) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *lintProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.absorb(pipeline.Event(msg))
		return m, tea.Batch(cmd, m.nextEvent())

	case doneMsg:
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		return m, nil

	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		m.bar = updated.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// absorb folds one event into the rows and refreshes the bar percentage.
func (m *lintProgress) absorb(ev pipeline.Event) tea.Cmd {
	if ev.File == "" {
		// run-level event: only the phase banner changes
		if label := stageLabels[ev.Stage]; label != "" {
			m.phase = label
		}
		return nil
	}
	i, ok := m.byName[ev.File]
	if !ok {
		return nil
	}
	r := &m.rows[i]

	switch ev.Status {
	case pipeline.StatusError:
		r.state, r.settled = "error", true
	case pipeline.StatusCached:
		r.state, r.settled = "cached", true
	case pipeline.StatusDone:
		if ev.Stage == pipeline.StageLint {
			r.state, r.settled = "done", true
		} else {
			r.stage = ev.Stage
		}
	case pipeline.StatusWorking:
		r.state = stageLabels[ev.Stage]
		r.stage = ev.Stage
	case pipeline.StatusQueued:
		r.state = "queued"
	}

	return m.bar.SetPercent(m.percent())
}

func (m *lintProgress) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	sum := 0.0
	for i := range m.rows {
		if m.rows[i].settled {
			sum++
			continue
		}
		sum += stageWeight[m.rows[i].stage]
	}
	return sum / float64(len(m.rows))
}

func (m *lintProgress) View() string {
	if len(m.rows) == 0 {
		return ""
	}

	header := m.title
	if m.phase != "" {
		header = fmt.Sprintf("%s (%s)", header, m.phase)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spin.View() + " " + header
	}

	const stateWidth = 12
	nameWidth := m.width - stateWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	for _, r := range m.rows {
		state := stateStyle(r.state).Render(fmt.Sprintf("%*s", stateWidth, r.state))
		fmt.Fprintf(&b, "  %s %s\n", state, clipName(r.name, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func stateStyle(state string) lipgloss.Style {
	switch state {
	case "done", "cached":
		return okStyle
	case "error":
		return errStyle
	case "loading", "parsing", "linting":
		return busyStyle
	default:
		return neutralStyle
	}
}

// clipName shortens a path to the given display width, ellipsizing when
// there is room for it.
func clipName(name string, width int) string {
	if width <= 0 || runewidth.StringWidth(name) <= width {
		return name
	}
	if width <= 3 {
		return runewidth.Truncate(name, width, "")
	}
	return runewidth.Truncate(name, width-3, "...")
}
