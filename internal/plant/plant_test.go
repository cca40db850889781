package plant

import (
	"math"
	"testing"
)

func TestPendulumEquilibrium(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	dx := p.Derive(State{0, 0}, 0, 0)

	if math.Abs(dx[0]) > 1e-10 {
		t.Errorf("expected zero velocity at equilibrium, got %f", dx[0])
	}
	if math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected zero acceleration at equilibrium, got %f", dx[1])
	}
}

func TestPendulumGravity(t *testing.T) {
	p := NewPendulum()
	p.Damping = 0

	dx := p.Derive(State{math.Pi / 2, 0}, 0, 0)
	expectedAccel := -p.Gravity / p.Length

	if math.Abs(dx[1]-expectedAccel) > 1e-6 {
		t.Errorf("expected acceleration %f, got %f", expectedAccel, dx[1])
	}
}

func TestMeasureReportsAcceleration(t *testing.T) {
	s := NewSpringMass()
	k := s.Measure(State{0.5, -1}, 2, 0)

	want := (-s.Stiffness*0.5 + s.Damping*1 + 2) / s.Mass
	if k.Position != 0.5 || k.Velocity != -1 {
		t.Errorf("unexpected reading %+v", k)
	}
	if math.Abs(k.Acceleration-want) > 1e-12 {
		t.Errorf("acceleration = %f, want %f", k.Acceleration, want)
	}
}

func TestElevatorHoldForceBalancesGravity(t *testing.T) {
	e := NewElevator()
	dx := e.Derive(State{1, 0}, e.HoldForce(), 0)
	if math.Abs(dx[1]) > 1e-12 {
		t.Errorf("expected no acceleration at hold force, got %f", dx[1])
	}
}

func TestTurntableWrapsHeading(t *testing.T) {
	tt := NewTurntable()
	tests := []struct {
		heading, want float64
	}{
		{370, 10},
		{-30, 330},
		{720, 0},
		{45, 45},
	}

	for _, tc := range tests {
		got := tt.Measure(State{tc.heading, 0}, 0, 0).Position
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("heading %v: got %v, want %v", tc.heading, got, tc.want)
		}
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		p, err := Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if p.StateDim() != 2 {
			t.Errorf("%s: expected state dim 2, got %d", name, p.StateDim())
		}
	}

	if _, err := Lookup("nbody"); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestApplyParams(t *testing.T) {
	p, _ := Lookup("flywheel")
	if err := Apply(p, map[string]float64{"inertia": 0.5, "friction": 0.1}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	fw := p.(*Flywheel)
	if fw.Inertia != 0.5 || fw.Friction != 0.1 {
		t.Errorf("params not applied: %+v", fw)
	}

	if err := Apply(p, map[string]float64{"wingspan": 1}); err == nil {
		t.Error("expected error for unknown param")
	}
	if err := Apply(p, map[string]float64{"inertia": 0}); err == nil {
		t.Error("expected error for non-positive inertia")
	}
}
