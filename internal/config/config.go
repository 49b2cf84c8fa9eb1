package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SlowModeConfig holds the per-axis multipliers applied while slow mode is held.
type SlowModeConfig struct {
	Translation float64 `yaml:"translation"`
	Strafe      float64 `yaml:"strafe"`
	Rotation    float64 `yaml:"rotation"`
}

// DriveConfig describes teleop shaping and drivetrain limits.
type DriveConfig struct {
	StickDeadband         float64        `yaml:"stick_deadband"`       // joystick deadband, (0, 1); an explicit 0 is replaced by the default
	AutoRotateDeadband    float64        `yaml:"auto_rotate_deadband"` // rotation stick below this lets auto-rotate take over, (0, 1]
	AutoRotateEnabled     bool           `yaml:"auto_rotate_enabled"`  // default for sources without an auto-rotate button
	SlowMode              SlowModeConfig `yaml:"slow_mode"`
	MaxSpeedMps           float64        `yaml:"max_speed_mps"`            // meters per second at full stick
	MaxAngularVelocityRps float64        `yaml:"max_angular_velocity_rps"` // radians per second at full stick
}

// HeadingConfig holds the profiled PID gains of the auto-rotate controller.
// Gains act on degrees; output is a fraction of the max angular velocity.
type HeadingConfig struct {
	Kp                 float64 `yaml:"kp"`
	Ki                 float64 `yaml:"ki"`
	Kd                 float64 `yaml:"kd"`
	MaxVelocityDps     float64 `yaml:"max_velocity_dps"`      // profile cruise rate, deg/s
	MaxAccelerationDps float64 `yaml:"max_acceleration_dps2"` // profile acceleration, deg/s^2
}

// VisionConfig describes the fiducial camera pipeline.
type VisionConfig struct {
	CameraName       string  `yaml:"camera_name"`
	TurnKp           float64 `yaml:"turn_kp"`
	TurnKi           float64 `yaml:"turn_ki"`
	TurnKd           float64 `yaml:"turn_kd"`
	TurnToleranceDeg float64 `yaml:"turn_tolerance_deg"` // turn power is zeroed inside this offset
	MaxPoseJumpM     float64 `yaml:"max_pose_jump_m"`    // vision estimates further than this from odometry are rejected
}

// MatchConfig is the static match state used when no field system is attached.
type MatchConfig struct {
	Alliance string `yaml:"alliance"` // "red", "blue" or "unknown"
}

// LoopConfig controls the control loop and the ambient stack.
type LoopConfig struct {
	PeriodMs   int  `yaml:"period_ms"`   // control period, 20 ms nominal
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/sim, false=real Raspberry Pi)
}

// IndicatorConfig is the target-lock light wiring.
type IndicatorConfig struct {
	Pin int `yaml:"pin"` // BCM pin; 0 = no light
}

// SimConfig seeds the simulated drivetrain and camera.
type SimConfig struct {
	StartX          float64 `yaml:"start_x"`
	StartY          float64 `yaml:"start_y"`
	StartHeadingDeg float64 `yaml:"start_heading_deg"`
	CameraFOVDeg    float64 `yaml:"camera_fov_deg"` // horizontal field of view
	CameraRangeM    float64 `yaml:"camera_range_m"` // max tag detection distance
	LatencyMs       int     `yaml:"latency_ms"`     // camera pipeline latency
	OdometryDrift   float64 `yaml:"odometry_drift"` // fraction of commanded translation lost per cycle
	VisionBiasX     float64 `yaml:"vision_bias_x"`  // constant error added to camera pose estimates
	VisionBiasY     float64 `yaml:"vision_bias_y"`
}

// InputConfig selects and seeds the raw input source.
type InputConfig struct {
	Source      string  `yaml:"source"` // "scripted" or "keyboard"
	Translation float64 `yaml:"translation"`
	Strafe      float64 `yaml:"strafe"`
	Rotation    float64 `yaml:"rotation"`
}

// AutoConfig describes the autonomous drive-forward routine.
type AutoConfig struct {
	DurationMs int     `yaml:"duration_ms"`
	SpeedMps   float64 `yaml:"speed_mps"`
}

// Config aggregates all application configuration.
type Config struct {
	Drive     DriveConfig     `yaml:"drive"`
	Heading   HeadingConfig   `yaml:"heading"`
	Vision    VisionConfig    `yaml:"vision"`
	Match     MatchConfig     `yaml:"match"`
	Loop      LoopConfig      `yaml:"loop"`
	Indicator IndicatorConfig `yaml:"indicator"`
	Sim       SimConfig       `yaml:"sim"`
	Input     InputConfig     `yaml:"input"`
	Auto      AutoConfig      `yaml:"auto"`
}

// ValidateConfigPath checks that path names a .yaml file inside a configs/ directory
// and does not escape it.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config path must end in .yaml: %s", path)
	}
	clean := filepath.Clean(path)
	for _, part := range strings.Split(filepath.ToSlash(clean), "/") {
		if part == ".." {
			return fmt.Errorf("config path must not contain '..': %s", path)
		}
	}
	if filepath.Base(filepath.Dir(clean)) != "configs" {
		return fmt.Errorf("config file must live in a configs/ directory: %s", path)
	}
	if _, err := filepath.Abs(clean); err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	return nil
}

// MaxConfigFileBytes bounds the size of a config file Load accepts.
const MaxConfigFileBytes = 1 << 20

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(data) > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", MaxConfigFileBytes)
	}
	return Parse(data)
}

// Parse unmarshals YAML data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.Drive.AutoRotateEnabled = true
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Drive.StickDeadband == 0 {
		c.Drive.StickDeadband = 0.1
	}
	if c.Drive.AutoRotateDeadband == 0 {
		c.Drive.AutoRotateDeadband = 0.05
	}
	if c.Drive.SlowMode == (SlowModeConfig{}) {
		c.Drive.SlowMode = SlowModeConfig{Translation: 0.3, Strafe: 0.3, Rotation: 0.3}
	}
	if c.Drive.MaxSpeedMps == 0 {
		c.Drive.MaxSpeedMps = 4.5
	}
	if c.Drive.MaxAngularVelocityRps == 0 {
		c.Drive.MaxAngularVelocityRps = 11.5
	}

	if c.Heading.Kp == 0 && c.Heading.Ki == 0 && c.Heading.Kd == 0 {
		c.Heading.Kp = 0.01
	}
	if c.Heading.MaxVelocityDps == 0 {
		c.Heading.MaxVelocityDps = 360
	}
	if c.Heading.MaxAccelerationDps == 0 {
		c.Heading.MaxAccelerationDps = 720
	}

	if c.Vision.CameraName == "" {
		c.Vision.CameraName = "limelight-cybears"
	}
	if c.Vision.TurnKp == 0 && c.Vision.TurnKi == 0 && c.Vision.TurnKd == 0 {
		c.Vision.TurnKp = 0.0075
	}
	if c.Vision.TurnToleranceDeg == 0 {
		c.Vision.TurnToleranceDeg = 2
	}
	if c.Vision.MaxPoseJumpM == 0 {
		c.Vision.MaxPoseJumpM = 1.5
	}

	if c.Match.Alliance == "" {
		c.Match.Alliance = "unknown"
	}

	if c.Loop.PeriodMs == 0 {
		c.Loop.PeriodMs = 20
	}

	if c.Sim.CameraFOVDeg == 0 {
		c.Sim.CameraFOVDeg = 63.3 // Limelight 3 horizontal FOV
	}
	if c.Sim.CameraRangeM == 0 {
		c.Sim.CameraRangeM = 5
	}
	if c.Sim.LatencyMs == 0 {
		c.Sim.LatencyMs = 30
	}
	if c.Sim.StartX == 0 && c.Sim.StartY == 0 {
		c.Sim.StartX, c.Sim.StartY = 2.0, 5.5
	}

	if c.Input.Source == "" {
		c.Input.Source = "scripted"
	}

	if c.Auto.DurationMs == 0 {
		c.Auto.DurationMs = 2000
	}
	if c.Auto.SpeedMps == 0 {
		c.Auto.SpeedMps = 1.0
	}
}

// Validate reports configuration values the robot must not start with.
func (c *Config) Validate() error {
	d := c.Drive
	if !finite(d.StickDeadband) || d.StickDeadband <= 0 || d.StickDeadband >= 1 {
		return fmt.Errorf("drive.stick_deadband must be in (0, 1), got %g", d.StickDeadband)
	}
	if !finite(d.AutoRotateDeadband) || d.AutoRotateDeadband <= 0 || d.AutoRotateDeadband > 1 {
		return fmt.Errorf("drive.auto_rotate_deadband must be in (0, 1], got %g", d.AutoRotateDeadband)
	}
	for name, f := range map[string]float64{
		"translation": d.SlowMode.Translation,
		"strafe":      d.SlowMode.Strafe,
		"rotation":    d.SlowMode.Rotation,
	} {
		if !finite(f) || f < 0 || f > 1 {
			return fmt.Errorf("drive.slow_mode.%s must be in [0, 1], got %g", name, f)
		}
	}
	if !finite(d.MaxSpeedMps) || d.MaxSpeedMps <= 0 {
		return fmt.Errorf("drive.max_speed_mps must be > 0, got %g", d.MaxSpeedMps)
	}
	if !finite(d.MaxAngularVelocityRps) || d.MaxAngularVelocityRps <= 0 {
		return fmt.Errorf("drive.max_angular_velocity_rps must be > 0, got %g", d.MaxAngularVelocityRps)
	}

	h := c.Heading
	if h.Kp < 0 || h.Ki < 0 || h.Kd < 0 {
		return fmt.Errorf("heading gains must be >= 0, got kp=%g ki=%g kd=%g", h.Kp, h.Ki, h.Kd)
	}
	if !finite(h.MaxVelocityDps) || h.MaxVelocityDps <= 0 {
		return fmt.Errorf("heading.max_velocity_dps must be > 0, got %g", h.MaxVelocityDps)
	}
	if !finite(h.MaxAccelerationDps) || h.MaxAccelerationDps <= 0 {
		return fmt.Errorf("heading.max_acceleration_dps2 must be > 0, got %g", h.MaxAccelerationDps)
	}

	if c.Vision.TurnToleranceDeg < 0 {
		return fmt.Errorf("vision.turn_tolerance_deg must be >= 0, got %g", c.Vision.TurnToleranceDeg)
	}
	if !finite(c.Vision.MaxPoseJumpM) || c.Vision.MaxPoseJumpM <= 0 {
		return fmt.Errorf("vision.max_pose_jump_m must be > 0, got %g", c.Vision.MaxPoseJumpM)
	}
	if !finite(c.Sim.VisionBiasX) || !finite(c.Sim.VisionBiasY) {
		return fmt.Errorf("sim.vision_bias_x/y must be finite, got (%g, %g)", c.Sim.VisionBiasX, c.Sim.VisionBiasY)
	}

	switch strings.ToLower(c.Match.Alliance) {
	case "red", "blue", "unknown":
	default:
		return fmt.Errorf("match.alliance must be red, blue or unknown, got %q", c.Match.Alliance)
	}

	if c.Loop.PeriodMs < 1 || c.Loop.PeriodMs > 1000 {
		return fmt.Errorf("loop.period_ms must be between 1 and 1000, got %d", c.Loop.PeriodMs)
	}
	if c.Loop.DebugLevel < 0 || c.Loop.DebugLevel > 4 {
		return fmt.Errorf("loop.debug_level must be between 0 and 4, got %d", c.Loop.DebugLevel)
	}

	switch c.Input.Source {
	case "scripted", "keyboard":
	default:
		return fmt.Errorf("input.source must be scripted or keyboard, got %q", c.Input.Source)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Period returns the control loop period.
func (c *Config) Period() time.Duration {
	return time.Duration(c.Loop.PeriodMs) * time.Millisecond
}

// PeriodSeconds returns the control loop period in seconds.
func (c *Config) PeriodSeconds() float64 {
	return c.Period().Seconds()
}

// Latency returns the simulated camera pipeline latency.
func (c *Config) Latency() time.Duration {
	return time.Duration(c.Sim.LatencyMs) * time.Millisecond
}

// AutoDuration returns how long the drive-forward auto runs.
func (c *Config) AutoDuration() time.Duration {
	return time.Duration(c.Auto.DurationMs) * time.Millisecond
}
