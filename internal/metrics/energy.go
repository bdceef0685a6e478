package metrics

import (
	"math"

	"github.com/san-kum/mbsim/internal/dynamo"
)

// Energy is the mean total energy over the observed steps.
type Energy struct {
	model dynamo.Hamiltonian
	avg   mean
}

func NewEnergy(model dynamo.Hamiltonian) *Energy {
	return &Energy{model: model}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	e.avg.add(e.model.Energy(x))
}

func (e *Energy) Value() float64 { return e.avg.value() }

func (e *Energy) Reset() { e.avg.reset() }

// EnergyDrift is the largest relative deviation from the first observed
// energy. Systems without an energy function, or starting at zero energy,
// report zero.
type EnergyDrift struct {
	h       dynamo.Hamiltonian
	initial float64
	started bool
	worst   float64
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	h, _ := dyn.(dynamo.Hamiltonian)
	return &EnergyDrift{h: h}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if e.h == nil {
		return
	}

	energy := e.h.Energy(x)
	if !e.started {
		e.initial, e.started = energy, true
	}
	if e.initial != 0 {
		e.worst = math.Max(e.worst, math.Abs(energy-e.initial)/math.Abs(e.initial))
	}
}

func (e *EnergyDrift) Value() float64 { return e.worst }

func (e *EnergyDrift) Reset() {
	e.initial, e.started, e.worst = 0, false, 0
}
