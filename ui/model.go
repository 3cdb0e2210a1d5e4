// Package ui provides the terminal front end of dictate.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dgnsrekt/dictate/internal/items"
	"github.com/dgnsrekt/dictate/internal/session"
)

// Controller receives the user's commands. *session.Runner implements it.
type Controller interface {
	Send(ev session.Event) bool
}

// Result reports how the user left the program.
type Result struct {
	// Reset is set when the user asked to go back to the setup form.
	Reset bool
}

// Feed is a session.Display that hands views to the program. Only the
// latest view is kept, so the runner never waits for the screen.
type Feed struct {
	ch chan session.View
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan session.View, 1)}
}

// Update implements session.Display. It must be called from one goroutine.
func (f *Feed) Update(v session.View) {
	select {
	case <-f.ch:
	default:
	}
	f.ch <- v
}

type viewMsg session.View

func waitForView(f *Feed) tea.Cmd {
	return func() tea.Msg {
		return viewMsg(<-f.ch)
	}
}

type statusMsg string

type model struct {
	cfg        Config
	controller Controller
	feed       *Feed
	list       []items.Item // parse order

	view     session.View
	keys     keyMap
	help     help.Model
	progress progress.Model
	spinner  spinner.Model

	width  int
	status string
	result Result
}

func newModel(cfg Config, s session.Session, controller Controller, feed *Feed) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = clockStyle

	m := model{
		cfg:        cfg,
		controller: controller,
		feed:       feed,
		list:       s.List(),
		view:       s.View(),
		keys:       newKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:    sp,
		width:      cfg.MaxWidth,
	}
	m.keys.update(m.view)
	m.resize(cfg.MaxWidth)
	return m
}

// NewProgram returns a Tea program for a session driven by controller. The
// controller must send its views to feed.
func NewProgram(cfg Config, s session.Session, controller Controller, feed *Feed) *tea.Program {
	log.Debug("Starting test screen", "items", len(s.Items()), "max_width", cfg.MaxWidth)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return tea.NewProgram(newModel(cfg, s, controller, feed), opts...)
}

// Run runs the program until the user quits or resets.
func Run(p *tea.Program) (Result, error) {
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("unable to run tui program: %w", err)
	}
	if m, ok := final.(model); ok {
		return m.result, nil
	}
	return Result{}, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForView(m.feed), m.spinner.Tick)
}

func (m *model) resize(width int) {
	if m.cfg.MaxWidth > 0 {
		width = min(width, m.cfg.MaxWidth)
	}
	m.width = max(width, 20)
	m.progress.Width = m.width - 4
	m.help.Width = m.width
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width)
		return m, nil

	case viewMsg:
		m.view = session.View(msg)
		m.keys.update(m.view)
		return m, waitForView(m.feed)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Reset):
		m.send(session.Reset{})
		m.result.Reset = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		m.send(session.Start{})
	case key.Matches(msg, m.keys.ReadAgain):
		m.send(session.ReadAgain{})
	case key.Matches(msg, m.keys.RepeatSentence):
		m.send(session.RepeatSentence{})
	case key.Matches(msg, m.keys.NextSentence):
		m.send(session.NextSentence{})
	case key.Matches(msg, m.keys.NextItem):
		m.send(session.NextItem{})
	case key.Matches(msg, m.keys.End):
		m.send(session.End{})
	case key.Matches(msg, m.keys.Replay):
		m.send(session.ReplayTested{})
	case key.Matches(msg, m.keys.Copy):
		return m, copyCmd(items.TestedParts(m.list))
	}
	return m, nil
}

func (m model) send(ev session.Event) {
	if !m.controller.Send(ev) {
		log.Warn("Session stopped, dropping event", "event", fmt.Sprintf("%T", ev))
	}
}

func copyCmd(parts []string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(strings.Join(parts, "\n")); err != nil {
			log.Warn("Could not copy answers", "err", err)
			return statusMsg("Could not copy to the clipboard")
		}
		return statusMsg(fmt.Sprintf("Copied %d answers", len(parts)))
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("dictate"))
	if m.cfg.Title != "" {
		b.WriteString(" " + dimStyle.Render(truncate.StringWithTail(m.cfg.Title, uint(max(m.width-12, 1)), ellipsis))) //nolint:gosec
	}
	b.WriteString("\n\n")

	switch m.view.State {
	case session.StateIdle:
		m.idleView(&b)
	case session.StateRunning:
		m.runningView(&b)
	case session.StateEnded:
		m.endedView(&b)
	}

	if m.view.Err != nil {
		b.WriteString("\n" + errorStyle.Render(wordwrap.String(m.view.Err.Error(), m.width)) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	if m.cfg.ShowHelp {
		b.WriteString("\n" + m.help.View(m.keys))
	}
	return appStyle.Render(b.String())
}

func (m model) idleView(b *strings.Builder) {
	b.WriteString(taglineStyle.Render(SetupTagline) + "\n\n")
	fmt.Fprintf(b, "%d items ready. Press enter to start.\n", m.view.Total)
}

func (m model) runningView(b *strings.Builder) {
	v := m.view
	b.WriteString(taglineStyle.Render(TestTagline) + "\n\n")

	percent := 0.0
	if v.Total > 0 {
		percent = float64(v.Index+1) / float64(v.Total)
	}
	b.WriteString(m.progress.ViewAs(percent) + "\n")
	b.WriteString(progressStyle.Render(v.Progress) + "   " + clockStyle.Render(v.Clock) + "\n")

	if v.Kind == items.KindParagraph {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Sentence %d of %d", v.Sentence+1, v.Sentences)) + "\n")
	}

	if v.Context != "" {
		b.WriteString("\n" + contextStyle.Render(wordwrap.String(v.Context, m.width-4)) + "\n")
	}

	b.WriteString("\n")
	switch {
	case v.Speaking:
		b.WriteString(m.spinner.View() + " Speaking" + ellipsis + "\n")
	case v.Countdown != "":
		b.WriteString(countStyle.Render(v.Countdown) + "\n")
	default:
		b.WriteString("\n")
	}
}

func (m model) endedView(b *strings.Builder) {
	v := m.view
	title := "Test ended."
	if v.Finished {
		title = "Test complete!"
	}
	b.WriteString(resultTitleStyle.Render(title) + "  " + dimStyle.Render("Time taken "+v.Elapsed) + "\n\n")

	b.WriteString("Answers:\n")
	for i, part := range items.TestedParts(m.list) {
		line := fmt.Sprintf("%2d. %s", i+1, part)
		b.WriteString(truncate.StringWithTail(line, uint(m.width), ellipsis) + "\n") //nolint:gosec
	}

	if v.Replaying {
		b.WriteString("\n" + m.spinner.View() + " Replaying" + ellipsis + "\n")
	}
}
