package output

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rohankatakam/codefolio/internal/page"
)

// Scrubber is a terminal time slider over a page controller
type Scrubber struct {
	ctrl     *page.Controller
	update   *page.Update
	styles   Styles
	body     *StandardFormatter
	width    int
	step     float64
	err      error
	dropped  int
	showHelp bool
}

// NewScrubber creates the slider model; step is the progress change per key
func NewScrubber(ctrl *page.Controller, step float64, color bool) Scrubber {
	if step <= 0 {
		step = 1
	}
	styles := NewStyles(color)
	return Scrubber{
		ctrl:   ctrl,
		update: ctrl.Snapshot(),
		styles: styles,
		body:   &StandardFormatter{styles: styles, MaxFiles: 8},
		width:  80,
		step:   step,
	}
}

// Init initializes the model
func (m Scrubber) Init() tea.Cmd {
	return nil
}

// Update handles key and resize messages
func (m Scrubber) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "right", "l":
			m.seek(m.update.Progress + m.step)
		case "left", "h":
			m.seek(m.update.Progress - m.step)
		case "shift+right", "L", "pgup":
			m.seek(m.update.Progress + 10*m.step)
		case "shift+left", "H", "pgdown":
			m.seek(m.update.Progress - 10*m.step)
		case "home", "g":
			m.seek(0)
		case "end", "G":
			m.seek(100)
		case "n", "]":
			m.seekCommit(1)
		case "p", "[":
			m.seekCommit(-1)
		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, nil
}

func (m *Scrubber) seek(p float64) {
	u, err := m.ctrl.Dispatch(page.Event{Kind: page.KindProgress, Progress: p})
	switch {
	case errors.Is(err, page.ErrThrottled):
		m.dropped++
	case err != nil:
		m.err = err
	default:
		m.update = u
		m.err = nil
	}
}

// seekCommit moves the slider onto the next (dir > 0) or previous commit
func (m *Scrubber) seekCommit(dir int) {
	f := m.ctrl.State().Filter
	if f == nil {
		return
	}
	cur := m.update.Progress
	target, found := 0.0, false
	for _, c := range f.Commits() {
		p := f.ProgressAt(c.Datetime)
		switch {
		case dir > 0 && p > cur && (!found || p < target):
			target, found = p, true
		case dir < 0 && p < cur && (!found || p > target):
			target, found = p, true
		}
	}
	if found {
		m.seek(target)
	}
}

// Progress is the current slider value
func (m Scrubber) Progress() float64 { return m.update.Progress }

// View renders the slider and the current stats
func (m Scrubber) View() string {
	sections := []string{m.renderSlider()}
	if m.err != nil {
		sections = append(sections, m.styles.Accent.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	sections = append(sections, m.body.Render(m.update))
	if m.showHelp {
		sections = append(sections, m.styles.Muted.Render("←/→ step  shift+←/→ jump  n/p commit  home/end ends  q quit"))
	} else {
		sections = append(sections, m.styles.Muted.Render("? help"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Scrubber) renderSlider() string {
	track := m.width - 10
	if track < 10 {
		track = 10
	}
	pos := int(m.update.Progress / 100 * float64(track-1))
	bar := strings.Repeat("─", pos) + "●" + strings.Repeat("─", track-1-pos)
	return m.styles.Bar.Render(bar) + fmt.Sprintf(" %5.1f%%", m.update.Progress)
}

// RunScrubber starts the slider in the terminal and blocks until it exits
func RunScrubber(m Scrubber) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
