package gamepad

import (
	"sync"

	"github.com/cybears/swerve/internal/logic/drive"
)

var (
	_ drive.InputSource  = (*Keyboard)(nil)
	_ drive.ButtonSource = (*Keyboard)(nil)
)

// Terminals report key presses and repeats but never releases, so each press
// holds its axis for a few polls.
const DefaultHoldPolls = 8

type axisHold struct {
	value float64
	polls int
}

// Keyboard maps keys to a virtual gamepad:
//
//	w/s     translation +/-      a/d  strafe +/-
//	q/e     rotate left/right    space  center all axes
//	f       toggle slow mode     r      toggle robot-centric
//	g       toggle auto-rotate   z      zero gyro    x  reset modules
//
// Press is called from the UI goroutine, Poll from the control loop.
type Keyboard struct {
	mu        sync.Mutex
	holdPolls int

	translation, strafe, rotation axisHold

	slow, robotCentric, autoRotate bool
	buttons                        drive.Buttons
}

// NewKeyboard creates a keyboard source. holdPolls <= 0 uses DefaultHoldPolls.
func NewKeyboard(holdPolls int, autoRotate bool) *Keyboard {
	if holdPolls <= 0 {
		holdPolls = DefaultHoldPolls
	}
	return &Keyboard{holdPolls: holdPolls, autoRotate: autoRotate}
}

// Press handles one key and reports whether it was bound.
func (k *Keyboard) Press(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	hold := func(a *axisHold, v float64) {
		a.value = v
		a.polls = k.holdPolls
	}
	switch key {
	case "w", "up":
		hold(&k.translation, 1)
	case "s", "down":
		hold(&k.translation, -1)
	case "a", "left":
		hold(&k.strafe, 1)
	case "d", "right":
		hold(&k.strafe, -1)
	case "q":
		hold(&k.rotation, 1)
	case "e":
		hold(&k.rotation, -1)
	case " ", "space":
		k.translation, k.strafe, k.rotation = axisHold{}, axisHold{}, axisHold{}
	case "f":
		k.slow = !k.slow
	case "r":
		k.robotCentric = !k.robotCentric
	case "g":
		k.autoRotate = !k.autoRotate
	case "z":
		k.buttons.ZeroGyro = true
	case "x":
		k.buttons.ResetModules = true
	default:
		return false
	}
	return true
}

func (a *axisHold) take() float64 {
	if a.polls <= 0 {
		a.value = 0
		return 0
	}
	a.polls--
	return a.value
}

// Poll implements drive.InputSource.
func (k *Keyboard) Poll() drive.ControlInputs {
	k.mu.Lock()
	defer k.mu.Unlock()
	return drive.ControlInputs{
		Translation:       k.translation.take(),
		Strafe:            k.strafe.take(),
		Rotation:          k.rotation.take(),
		RobotCentric:      k.robotCentric,
		SlowMode:          k.slow,
		AutoRotateEnabled: k.autoRotate,
	}
}

// Buttons returns and clears queued presses.
func (k *Keyboard) Buttons() drive.Buttons {
	k.mu.Lock()
	defer k.mu.Unlock()
	b := k.buttons
	k.buttons = drive.Buttons{}
	return b
}

// Toggles returns the latched switches for display.
func (k *Keyboard) Toggles() (slow, robotCentric, autoRotate bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.slow, k.robotCentric, k.autoRotate
}
