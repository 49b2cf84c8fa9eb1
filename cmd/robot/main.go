package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cybears/swerve/internal/config"
	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/hw/gpio"
	"github.com/cybears/swerve/internal/robot"
	"github.com/cybears/swerve/internal/telemetry"
	"github.com/cybears/swerve/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web dashboard on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	alliance := flag.String("alliance", "", "override match alliance (red, blue, unknown)")
	cycles := flag.Uint64("cycles", 0, "stop after this many control cycles (0 = run until interrupted)")
	skipAuto := flag.Bool("skip_auto", false, "start directly in teleop")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if err := applyOverrides(cfg, *alliance); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	if cfg.Input.Source == "keyboard" {
		log.Fatalf("input.source keyboard needs a terminal; use cmd/drivesim")
	}

	debug.Init(cfg.Loop.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Loop.DebugLevel)
	debug.Value("Alliance", cfg.Match.Alliance)

	debug.Value("Mock GPIO", cfg.Loop.MockGPIO)
	gpioDriver, err := gpio.NewDriver(cfg.Loop.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	var (
		broadcaster *web.StatusBroadcaster
		onChange    telemetry.ChangeFunc
	)
	if webPort.port() > 0 {
		broadcaster = web.NewStatusBroadcaster()
		onChange = broadcaster.BroadcastTelemetry
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
	}

	input := robot.NewInput(cfg)
	bot, err := robot.New(cfg, gpioDriver, input, onChange, !*skipAuto)
	if err != nil {
		log.Fatalf("build robot failed: %v", err)
	}

	if port := webPort.port(); port > 0 {
		maint, _ := input.(web.Maintenance)
		srv, err := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, web.Deps{
			Telemetry:   bot.Telemetry,
			Maintenance: maint,
			Alliance:    bot.Match,
			Settings:    cfg,
		})
		if err != nil {
			log.Fatalf("web server: %v", err)
		}
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web server: %v", err)
				cancel()
			}
		}()
	}

	debug.Section("Running")
	if err := bot.Executor.Run(ctx, *cycles); err != nil && ctx.Err() == nil {
		log.Fatalf("control loop: %v", err)
	}

	accepted, rejected := bot.Corrector.Counts()
	debug.Summary("Run Summary")
	debug.Value("Cycles", bot.Executor.Cycles())
	debug.Value("Overruns", bot.Executor.Overruns())
	debug.Value("Vision accepted", accepted)
	debug.Value("Vision rejected", rejected)
	debug.Value("Final pose", bot.Drivetrain.EstimatedPose())
}

// applyOverrides applies non-empty CLI overrides to cfg and revalidates it.
func applyOverrides(cfg *config.Config, alliance string) error {
	if alliance != "" {
		cfg.Match.Alliance = alliance
	}
	return cfg.Validate()
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
