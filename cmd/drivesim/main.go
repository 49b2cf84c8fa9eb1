// Command drivesim drives the simulated swerve robot from the keyboard and
// plots heading against the auto-rotate target.
package main

import (
	"flag"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cybears/swerve/internal/config"
	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/hw/gamepad"
	"github.com/cybears/swerve/internal/hw/gpio"
	"github.com/cybears/swerve/internal/robot"
)

func main() {
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	alliance := flag.String("alliance", "", "override match alliance (red, blue, unknown)")
	flag.Parse()

	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *alliance != "" {
		cfg.Match.Alliance = *alliance
	}
	cfg.Input.Source = "keyboard"
	cfg.Loop.MockGPIO = true

	// The terminal belongs to the TUI; debug output goes to the log box.
	logs := &logBuffer{}
	debug.Init(cfg.Loop.DebugLevel)
	debug.SetOutput(logs)

	g, err := gpio.NewDriver(true)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	keys := gamepad.NewKeyboard(gamepad.DefaultHoldPolls, cfg.Drive.AutoRotateEnabled)
	bot, err := robot.New(cfg, g, keys, nil, false)
	if err != nil {
		log.Fatalf("build robot failed: %v", err)
	}

	p := tea.NewProgram(newSimModel(bot, keys, logs), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
