package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cybears/swerve/internal/config"
	"github.com/cybears/swerve/internal/hw/gamepad"
	"github.com/cybears/swerve/internal/hw/gpio"
	"github.com/cybears/swerve/internal/logic/tags"
	"github.com/cybears/swerve/internal/robot"
)

func newTestModel(t *testing.T) simModel {
	t.Helper()
	cfg := config.Default()
	cfg.Input.Source = "keyboard"
	keys := gamepad.NewKeyboard(gamepad.DefaultHoldPolls, true)
	bot, err := robot.New(cfg, &gpio.MockDriver{}, keys, nil, false)
	if err != nil {
		t.Fatalf("robot.New: %v", err)
	}
	return newSimModel(bot, keys, &logBuffer{})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m simModel, msg tea.Msg) simModel {
	next, _ := m.Update(msg)
	return next.(simModel)
}

func TestSimModel_TickStepsRobot(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 3; i++ {
		m = update(m, tickMsg(time.Now()))
	}
	if got := m.bot.Executor.Cycles(); got != 3 {
		t.Errorf("cycles = %d, want 3", got)
	}
}

func TestSimModel_KeyDrivesRobot(t *testing.T) {
	m := newTestModel(t)
	start := m.bot.Drivetrain.TruePose().X
	m = update(m, key("w"))
	for i := 0; i < gamepad.DefaultHoldPolls; i++ {
		m = update(m, tickMsg(time.Now()))
	}
	if x := m.bot.Drivetrain.TruePose().X; x <= start {
		t.Errorf("w should drive +X, X went %v -> %v", start, x)
	}
}

func TestSimModel_AllianceKeys(t *testing.T) {
	m := newTestModel(t)
	cases := []struct {
		key  string
		want tags.Alliance
	}{
		{"1", tags.Red},
		{"2", tags.Blue},
		{"3", tags.Unknown},
	}
	for _, tc := range cases {
		m = update(m, key(tc.key))
		if got := m.bot.Match.CurrentAlliance(); got != tc.want {
			t.Errorf("after %q alliance = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestSimModel_Quit(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(simModel).quitting || cmd == nil {
		t.Error("esc should quit")
	}
	if v := next.View(); !strings.Contains(v, "stopped") {
		t.Errorf("View after quit = %q", v)
	}
}

func TestSimModel_ViewShowsStatus(t *testing.T) {
	m := newTestModel(t)
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(m, tickMsg(time.Now()))
	v := m.View()
	for _, want := range []string{"Swerve Drive Sim", "mode manual", "no target", "yaw"} {
		if !strings.Contains(v, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestLogBuffer_KeepsLastLines(t *testing.T) {
	b := &logBuffer{}
	for i := 0; i < maxLogs+3; i++ {
		_, _ = b.Write([]byte("line\n"))
	}
	_, _ = b.Write([]byte("last one\n\n"))
	lines := b.Lines()
	if len(lines) != maxLogs {
		t.Fatalf("len = %d, want %d", len(lines), maxLogs)
	}
	if lines[len(lines)-1] != "last one" {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
}
