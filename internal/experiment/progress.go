package experiment

import (
	"github.com/san-kum/mbsim/internal/dynamo"
	"github.com/san-kum/mbsim/internal/mbs"
	"go.uber.org/zap"
)

// ProgressEvery is the step interval between progress log entries.
const ProgressEvery = 500

// progressLogger logs the pendulum state at debug level every n steps.
type progressLogger struct {
	logger *zap.Logger
	model  *mbs.Pendulum
	every  int
	step   int
}

func (p *progressLogger) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	if p.step%p.every == 0 {
		p.logger.Debug("step",
			zap.Int("step", p.step),
			zap.Float64("t", t),
			zap.Float64("theta", x[0]),
			zap.Float64("omega", x[1]),
			zap.Float64("energy", p.model.Energy(x)),
		)
	}
	p.step++
}
