package control

import (
	"fmt"
	"math"
)

// PIDCoefficients are the gains of a feedback term. They are fixed once a
// system is built.
type PIDCoefficients struct {
	KP float64 `json:"kp" yaml:"kp"`
	KI float64 `json:"ki" yaml:"ki"`
	KD float64 `json:"kd" yaml:"kd"`
}

func (c PIDCoefficients) validate() error {
	if !isFinite(c.KP) || !isFinite(c.KI) || !isFinite(c.KD) {
		return fmt.Errorf("%w: non-finite gains %+v", ErrInvalidConfig, c)
	}
	return nil
}

// Law selects how a feedback term turns error into output.
type Law int

const (
	// PID is kP*e + kI*∫e + kD*de/dt.
	PID Law = iota
	// SquID replaces the proportional term with the signed square root of kP*e.
	SquID
	// BangBang outputs sign(e).
	BangBang
)

func (l Law) String() string {
	switch l {
	case PID:
		return "pid"
	case SquID:
		return "squid"
	case BangBang:
		return "bangbang"
	}
	return "unknown"
}

// ParseLaw maps a config name to a Law. Empty means PID.
func ParseLaw(s string) (Law, error) {
	switch s {
	case "", "pid":
		return PID, nil
	case "squid":
		return SquID, nil
	case "bangbang", "bang_bang":
		return BangBang, nil
	}
	return PID, fmt.Errorf("%w: unknown feedback law %q", ErrInvalidConfig, s)
}

// FeedbackTerm is the stateful feedback computation for one axis.
type FeedbackTerm struct {
	Coefficients PIDCoefficients
	Law          Law
	// ResetOnCrossover clears the integral whenever the error changes sign.
	ResetOnCrossover bool

	integral float64
	prevErr  float64
	primed   bool
}

func NewFeedbackTerm(c PIDCoefficients) *FeedbackTerm {
	return &FeedbackTerm{Coefficients: c}
}

// feedbackStep is a computed but uncommitted update.
type feedbackStep struct {
	out      float64
	integral float64
	err      float64
}

// Compute returns the feedback output for err over dt and commits the
// integrator state. Invalid input leaves the state untouched.
func (p *FeedbackTerm) Compute(err, dt float64) (float64, error) {
	s, e := p.step(err, dt)
	if e != nil {
		return 0, e
	}
	p.commit(s)
	return s.out, nil
}

func (p *FeedbackTerm) step(err, dt float64) (feedbackStep, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return feedbackStep{}, ErrInvalidTimestep
	}
	if !isFinite(err) {
		return feedbackStep{}, ErrInvalidMeasurement
	}

	if p.Law == BangBang {
		return feedbackStep{out: sign(err), integral: p.integral, err: err}, nil
	}

	c := p.Coefficients
	integral := p.integral
	if p.ResetOnCrossover && p.primed && sign(err) != sign(p.prevErr) {
		integral = 0
	}
	integral += err * dt

	derivative := 0.0
	if p.primed {
		derivative = (err - p.prevErr) / dt
	}

	proportional := c.KP * err
	if p.Law == SquID {
		proportional = sign(c.KP*err) * math.Sqrt(math.Abs(c.KP*err))
	}

	return feedbackStep{
		out:      proportional + c.KI*integral + c.KD*derivative,
		integral: integral,
		err:      err,
	}, nil
}

func (p *FeedbackTerm) commit(s feedbackStep) {
	p.integral = s.integral
	p.prevErr = s.err
	p.primed = true
}

// Reset clears integral and derivative state; the next call is a first call.
func (p *FeedbackTerm) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.primed = false
}

// Integral returns the accumulated error integral.
func (p *FeedbackTerm) Integral() float64 {
	return p.integral
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
