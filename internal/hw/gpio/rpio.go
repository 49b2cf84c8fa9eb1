package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/cybears/swerve/internal/debug"
)

// RPiDriver drives header pins through go-rpio's /dev/gpiomem mapping.
type RPiDriver struct {
	pins    map[int]rpio.Pin
	outputs map[int]bool
}

// NewRPiDriver maps GPIO memory. It fails off a Raspberry Pi.
func NewRPiDriver() (*RPiDriver, error) {
	debug.Info("Initializing Raspberry Pi GPIO (go-rpio)")
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w (is this a Raspberry Pi?)", err)
	}
	return &RPiDriver{
		pins:    make(map[int]rpio.Pin),
		outputs: make(map[int]bool),
	}, nil
}

func (r *RPiDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	p := rpio.Pin(pin)
	switch mode {
	case Output:
		p.Output()
		r.outputs[pin] = true
	case Input:
		p.Input()
		p.PullDown()
		delete(r.outputs, pin)
	default:
		return fmt.Errorf("pin %d: unknown mode %d", pin, mode)
	}
	r.pins[pin] = p
	return nil
}

func (r *RPiDriver) pin(pin int, mode PinMode) (rpio.Pin, error) {
	if p, ok := r.pins[pin]; ok {
		return p, nil
	}
	if err := r.SetupPin(pin, mode); err != nil {
		return 0, err
	}
	return r.pins[pin], nil
}

func (r *RPiDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	p, err := r.pin(pin, Output)
	if err != nil {
		return err
	}
	if level == High {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (r *RPiDriver) ReadPin(pin int) (Level, error) {
	debug.GPIO("ReadPin", pin, nil)
	p, err := r.pin(pin, Input)
	if err != nil {
		return Low, err
	}
	return Level(p.Read() == rpio.High), nil
}

// Close turns outputs off and releases every pin as an input.
func (r *RPiDriver) Close() error {
	debug.Trace("GPIO Close (rpio)")
	for n, p := range r.pins {
		if r.outputs[n] {
			p.Low()
		}
		p.Input()
	}
	return rpio.Close()
}
