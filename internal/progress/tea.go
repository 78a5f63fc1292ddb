package progress

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var labelStyle = lipgloss.NewStyle().Faint(true)

// addMsg is sent into the bubbletea program on every Add call.
type addMsg struct{}

// resetMsg is sent into the bubbletea program on every Reset call.
type resetMsg struct{ maximum int }

type teaModel struct {
	bar     progress.Model
	current int
	maximum int
}

func newTeaModel() teaModel {
	return teaModel{bar: progress.New(progress.WithDefaultGradient())}
}

func (m teaModel) Init() tea.Cmd { return nil }

func (m teaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resetMsg:
		m.maximum = msg.maximum
		m.current = 0
	case addMsg:
		if m.current < m.maximum {
			m.current++
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
	}
	return m, nil
}

func (m teaModel) View() string {
	ratio := 0.0
	if m.maximum > 0 {
		ratio = float64(m.current) / float64(m.maximum)
	}
	return labelStyle.Render(fmt.Sprintf("%d/%d ", m.current, m.maximum)) + m.bar.ViewAs(ratio) + "\n"
}

// TeaSink drives a bubbletea progress bar. The handle returned by
// Widget is the *tea.Program itself, which NewTeaSink already runs in
// the background and Stop quits.
type TeaSink struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewTeaSink constructs a TeaSink and starts its bubbletea program in
// the background. Callers must call Stop when done.
func NewTeaSink() *TeaSink {
	s := &TeaSink{}
	s.program = tea.NewProgram(newTeaModel())
	go func() { _, _ = s.program.Run() }()
	return s
}

func (s *TeaSink) Reset(maximum int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program != nil {
		s.program.Send(resetMsg{maximum: maximum})
	}
}

func (s *TeaSink) Add() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program != nil {
		s.program.Send(addMsg{})
	}
}

func (s *TeaSink) Widget() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.program
}

// Stop quits the underlying bubbletea program.
func (s *TeaSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program != nil {
		s.program.Quit()
	}
}
