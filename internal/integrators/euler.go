package integrators

import "github.com/san-kum/ctrlsys/internal/plant"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(p plant.Plant, x plant.State, u, t, dt float64) plant.State {
	dx := p.Derive(x, u, t)
	result := make(plant.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
