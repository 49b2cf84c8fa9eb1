package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cybears/swerve/internal/hw/gamepad"
	"github.com/cybears/swerve/internal/logic/drive"
	"github.com/cybears/swerve/internal/logic/tags"
	"github.com/cybears/swerve/internal/robot"
)

const (
	maxLogs      = 6
	headerHeight = 4
	statusHeight = 3
	footerHeight = maxLogs + 3
	borderSize   = 2
)

// Chart series.
const (
	seriesYaw    = "yaw"
	seriesTarget = "target"
)

var seriesColors = map[string]string{
	seriesYaw:    "12",  // blue
	seriesTarget: "214", // orange
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	lockStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	noLockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// logBuffer keeps the last debug lines for the log box.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range strings.Split(string(p), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			b.lines = append(b.lines, line)
		}
	}
	if len(b.lines) > maxLogs {
		b.lines = b.lines[len(b.lines)-maxLogs:]
	}
	return len(p), nil
}

func (b *logBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

type tickMsg time.Time

func tick(period time.Duration) tea.Cmd {
	return tea.Tick(period, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type simModel struct {
	bot      *robot.Container
	keys     *gamepad.Keyboard
	logs     *logBuffer
	chart    *streamlinechart.Model
	width    int
	height   int
	quitting bool
}

func newSimModel(bot *robot.Container, keys *gamepad.Keyboard, logs *logBuffer) simModel {
	chart := streamlinechart.New(80, 16,
		streamlinechart.WithYRange(-180, 180),
	)
	for name, color := range seriesColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return simModel{bot: bot, keys: keys, logs: logs, chart: &chart}
}

func (m *simModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 16
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - statusHeight - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func (m simModel) Init() tea.Cmd {
	return tick(m.bot.Config.Period())
}

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "1":
			m.bot.Match.Set(tags.Red)
		case "2":
			m.bot.Match.Set(tags.Blue)
		case "3":
			m.bot.Match.Set(tags.Unknown)
		default:
			m.keys.Press(key)
		}
		return m, nil

	case tickMsg:
		m.step()
		return m, tick(m.bot.Config.Period())
	}
	return m, nil
}

// step runs one control cycle and records the heading trace.
func (m *simModel) step() {
	m.bot.Executor.Step()

	yaw := m.bot.Drivetrain.TruePose().HeadingDeg
	target := yaw
	if t := m.bot.Vision.HeadingTarget(); t.Valid {
		target = t.TargetDegrees
	}
	m.chart.PushDataSet(seriesYaw, yaw)
	m.chart.PushDataSet(seriesTarget, target)
	m.chart.DrawAll()
}

func (m simModel) View() string {
	if m.quitting {
		return "Simulation stopped.\n"
	}
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Swerve Drive Sim"))
	sb.WriteString(fmt.Sprintf(" - cycle %d, %s alliance", m.bot.Executor.Cycles(), m.bot.Match.CurrentAlliance()))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("w/s a/d drive  q/e rotate  space stop  f slow  r robot-centric  g auto-rotate  z zero gyro  x reset  1/2/3 red/blue/unknown  esc quit"))
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")
	sb.WriteString(renderLegend())
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))
	if m.width > 4 {
		logStyle = logStyle.Width(m.width - 4)
	}
	lines := m.logs.Lines()
	if len(lines) == 0 {
		lines = []string{statusStyle.Render("no log output yet")}
	}
	sb.WriteString(logStyle.Render(strings.Join(lines, "\n")))
	sb.WriteString("\n")
	return sb.String()
}

func (m simModel) renderStatus() string {
	truth := m.bot.Drivetrain.TruePose()
	est := m.bot.Drivetrain.EstimatedPose()
	mode := m.bot.Teleop.Synthesizer().Mode()
	slow, robotCentric, autoRotate := m.keys.Toggles()

	lock := noLockStyle.Render("no target")
	if m.bot.Vision.AllianceTargetAcquired() {
		id := m.bot.Vision.DetectedTag().FiducialID
		lock = lockStyle.Render(fmt.Sprintf("LOCK %s (tag %d)", m.bot.Approaches.GameTargetName(id), id))
	}
	accepted, rejected := m.bot.Corrector.Counts()

	return strings.Join([]string{
		fmt.Sprintf("true %v   odometry %v", truth, est),
		fmt.Sprintf("mode %-11s slow=%-5t robot-centric=%-5t auto-rotate=%-5t %s",
			mode, slow, robotCentric, autoRotate, modeHint(mode, autoRotate)),
		fmt.Sprintf("%s   vision fused %d / rejected %d", lock, accepted, rejected),
	}, "\n")
}

func modeHint(mode drive.Mode, enabled bool) string {
	switch {
	case mode == drive.AutoRotate:
		return statusStyle.Render("(holding target heading)")
	case !enabled:
		return statusStyle.Render("(auto-rotate off)")
	}
	return ""
}

func renderLegend() string {
	var items []string
	for _, name := range []string{seriesYaw, seriesTarget} {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	return strings.Join(items, "  ")
}
