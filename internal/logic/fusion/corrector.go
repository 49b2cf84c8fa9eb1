package fusion

import (
	"github.com/cybears/swerve/internal/logic/vision"
	"github.com/cybears/swerve/internal/telemetry"
)

// KeyVerdict is the telemetry key for the last gate verdict.
const KeyVerdict = "vision/Fusion"

// EstimateSource provides the camera's pose estimate each cycle.
type EstimateSource interface {
	PoseEstimate() vision.PoseEstimate
}

// Corrector pulls a vision estimate each cycle and runs it through the gate.
type Corrector struct {
	source    EstimateSource
	estimator Estimator
	gate      *Gate
	sink      telemetry.Sink

	accepted, rejected uint64
}

// NewCorrector wires a source, an estimator and a gate. A nil sink discards telemetry.
func NewCorrector(src EstimateSource, est Estimator, gate *Gate, sink telemetry.Sink) *Corrector {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &Corrector{source: src, estimator: est, gate: gate, sink: sink}
}

// Periodic gates and fuses this cycle's estimate.
func (c *Corrector) Periodic() {
	v := c.gate.Apply(c.source.PoseEstimate(), c.estimator)
	if v == Accepted {
		c.accepted++
	} else {
		c.rejected++
	}
	c.sink.Publish(KeyVerdict, v.String())
}

// Counts returns how many estimates were accepted and rejected so far.
func (c *Corrector) Counts() (accepted, rejected uint64) {
	return c.accepted, c.rejected
}
