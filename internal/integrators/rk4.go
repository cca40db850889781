package integrators

import (
	"fmt"

	"github.com/san-kum/ctrlsys/internal/plant"
)

// RK4 is the classic fourth-order Runge-Kutta step. The input is held
// constant across the step, matching a zero-order-hold actuator.
type RK4 struct {
	k1, k2, k3, k4 plant.State
	scratch        plant.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(plant.State, n)
		r.k2 = make(plant.State, n)
		r.k3 = make(plant.State, n)
		r.k4 = make(plant.State, n)
		r.scratch = make(plant.State, n)
	}
}

func (r *RK4) Step(p plant.Plant, x plant.State, u, t, dt float64) plant.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, p.Derive(x, u, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, p.Derive(r.scratch, u, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, p.Derive(r.scratch, u, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, p.Derive(r.scratch, u, t+dt))

	result := make(plant.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	return result
}

// Lookup returns an integrator by name.
func Lookup(name string) (plant.Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "", "rk4":
		return NewRK4(), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}
