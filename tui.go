package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"signbridge/clip"
	"signbridge/notify"
	"signbridge/render"
)

// TUI message types
type RecordingStartMsg struct{}
type RecordingStopMsg struct{}
type RecordingTickMsg struct{ Elapsed string }
type BusyMsg struct {
	Visible  bool
	InFlight int
}
type NoticesMsg struct{ Notices []notify.Notice }
type ResultMsg struct{ View render.ResultsView }
type ModeLineMsg struct{ Text string }
type DeviceLineMsg struct{ Text string }

type inputMode int

const (
	modeText inputMode = iota
	modeFile
)

type tuiModel struct {
	dispatch *Dispatcher

	recording bool
	elapsed   string

	busyVisible bool
	inFlight    int

	mode  inputMode
	input string

	results render.ResultsView
	copied  bool

	notices []notify.Notice

	modeLine      string
	deviceLine    string
	width, height int
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	busyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	islStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	videoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Underline(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpBold    = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	grayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func NewTUIProgram(dispatch *Dispatcher) *tea.Program {
	m := tuiModel{dispatch: dispatch}
	return tea.NewProgram(m, tea.WithAltScreen())
}

// tuiSend forwards a message to the program if it is running.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RecordingStartMsg:
		m.recording = true
		m.elapsed = "00:00"

	case RecordingStopMsg:
		m.recording = false
		m.elapsed = ""

	case RecordingTickMsg:
		m.elapsed = msg.Elapsed

	case BusyMsg:
		m.busyVisible = msg.Visible
		m.inFlight = msg.InFlight

	case NoticesMsg:
		m.notices = msg.Notices

	case ResultMsg:
		m.results = msg.View
		m.copied = false

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+r":
		m.dispatch.ToggleRecording(context.Background())
		return m, nil

	case "tab":
		if m.mode == modeText {
			m.mode = modeFile
		} else {
			m.mode = modeText
		}
		m.input = ""
		return m, nil

	case "ctrl+y":
		if m.results.Revealed {
			if err := clip.CopyResult(m.results.EnglishText, m.results.ISLText); err == nil {
				m.copied = true
			}
		}
		return m, nil

	case "enter":
		input := m.input
		m.input = ""
		if m.mode == modeText {
			m.dispatch.SubmitText(context.Background(), input)
		} else {
			m.dispatch.SubmitFile(context.Background(), input)
		}
		return m, nil

	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil

	case "esc":
		m.input = ""
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeySpace:
		m.input += " "
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("signbridge "+version) + "\n")
	if m.modeLine != "" {
		b.WriteString(labelStyle.Render(m.modeLine) + "\n")
	}
	if m.deviceLine != "" {
		b.WriteString(grayStyle.Render(m.deviceLine) + "\n")
	}
	b.WriteString("\n")

	prompt := "text> "
	if m.mode == modeFile {
		prompt = "file> "
	}
	b.WriteString(labelStyle.Render(prompt) + m.input + "█\n")

	if m.recording {
		b.WriteString(recStyle.Render("● REC "+m.elapsed) + "\n")
	} else {
		b.WriteString(idleStyle.Render("○ IDLE") + "\n")
	}

	if m.busyVisible {
		b.WriteString(busyStyle.Render(fmt.Sprintf("⟳ translating... (%d)", m.inFlight)) + "\n")
	}
	b.WriteString("\n")

	if m.results.Revealed {
		b.WriteString(labelStyle.Render("English: ") + wrapJoin(m.results.EnglishText, m.width-9) + "\n")
		b.WriteString(labelStyle.Render("ISL:     ") + islStyle.Render(wrapJoin(m.results.ISLText, m.width-9)) + "\n")
		if m.results.VideoURL != "" {
			b.WriteString(labelStyle.Render("Video:   ") + videoStyle.Render(m.results.VideoURL) + "\n")
		}
		if m.copied {
			b.WriteString(grayStyle.Render("✓ copied to clipboard") + "\n")
		}
		if m.results.Count > 1 {
			b.WriteString(grayStyle.Render(fmt.Sprintf("%d results this session", m.results.Count)) + "\n")
		}
	}
	b.WriteString("\n")

	for _, n := range m.notices {
		b.WriteString(noticeStyle.Render("⚠ "+n.Text) + "\n")
	}
	if len(m.notices) > 0 {
		b.WriteString("\n")
	}

	help := helpBold.Render("tab") + helpStyle.Render(" input mode  ") +
		helpBold.Render("enter") + helpStyle.Render(" submit  ") +
		helpBold.Render("ctrl+r") + helpStyle.Render(" record  ") +
		helpBold.Render("ctrl+y") + helpStyle.Render(" copy  ") +
		helpBold.Render("ctrl+c") + helpStyle.Render(" quit")
	b.WriteString(help + "\n")

	return b.String()
}

func wrapJoin(text string, width int) string {
	return strings.Join(wrapText(text, width), "\n         ")
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
