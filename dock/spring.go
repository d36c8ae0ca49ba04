package dock

import (
	"math"
	"time"
)

const (
	// maxSubstep bounds a single integration step.
	maxSubstep = 4 * time.Millisecond
	// maxFrame caps the time consumed by one Step call, so a long pause
	// does not replay seconds of motion.
	maxFrame = 250 * time.Millisecond

	settleEpsilon = 0.01
)

// SpringParams are the physical constants of a Spring.
type SpringParams struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

// DefaultSpringParams match the dock's feel: slightly over-damped.
var DefaultSpringParams = SpringParams{Mass: 0.1, Stiffness: 150, Damping: 12}

// Spring eases a value toward a target. It integrates with semi-implicit
// Euler and treats the damping term implicitly, so it stays stable at
// frame-rate step sizes.
type Spring struct {
	params   SpringParams
	value    float64
	velocity float64
	target   float64
}

// NewSpring returns a spring at rest on value. Zero params fall back to
// DefaultSpringParams.
func NewSpring(value float64, p SpringParams) *Spring {
	if p.Mass <= 0 || p.Stiffness <= 0 || p.Damping < 0 {
		p = DefaultSpringParams
	}
	return &Spring{params: p, value: value, target: value}
}

func (s *Spring) SetTarget(v float64) { s.target = v }
func (s *Spring) Target() float64     { return s.target }
func (s *Spring) Value() float64      { return s.value }
func (s *Spring) Velocity() float64   { return s.velocity }

// Settled reports whether the spring is at rest on its target.
func (s *Spring) Settled() bool {
	return math.Abs(s.value-s.target) < settleEpsilon && math.Abs(s.velocity) < settleEpsilon
}

// Step advances the spring by dt and returns the new value.
func (s *Spring) Step(dt time.Duration) float64 {
	if dt <= 0 {
		return s.value
	}
	if dt > maxFrame {
		dt = maxFrame
	}
	for dt > 0 {
		h := dt
		if h > maxSubstep {
			h = maxSubstep
		}
		s.integrate(h.Seconds())
		dt -= h
	}
	if s.Settled() {
		s.value = s.target
		s.velocity = 0
	}
	return s.value
}

func (s *Spring) integrate(h float64) {
	p := s.params
	accel := -p.Stiffness * (s.value - s.target) / p.Mass
	s.velocity = (s.velocity + accel*h) / (1 + p.Damping/p.Mass*h)
	s.value += s.velocity * h
}
