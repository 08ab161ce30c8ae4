package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

// Step is one fit/transform stage over a Dataset. Stateless steps fit to nothing.
type Step interface {
	Name() string
	Fit(d data.Dataset) error
	Transform(d data.Dataset) (data.Dataset, error)
}

// Pipeline chains multiple steps.
type Pipeline struct {
	steps []Step
	log   zerolog.Logger
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, log: zerolog.Nop()}
}

// WithLogger sets the logger used for per-step progress.
func (p *Pipeline) WithLogger(l zerolog.Logger) *Pipeline {
	p.log = l
	return p
}

// Steps returns the steps in order.
func (p *Pipeline) Steps() []Step { return append([]Step(nil), p.steps...) }

// Fit fits every step on the output of the step before it.
func (p *Pipeline) Fit(d data.Dataset) error {
	_, err := p.FitTransform(d)
	return err
}

// FitTransform fits every step and returns the fully transformed Dataset.
func (p *Pipeline) FitTransform(d data.Dataset) (data.Dataset, error) {
	for _, step := range p.steps {
		if err := step.Fit(d); err != nil {
			return data.Dataset{}, fmt.Errorf("pipeline: fit %s: %w", step.Name(), err)
		}
		var err error
		if d, err = step.Transform(d); err != nil {
			return data.Dataset{}, fmt.Errorf("pipeline: %s: %w", step.Name(), err)
		}
		p.log.Debug().Str("step", step.Name()).Int("rows", d.Len()).Strs("columns", d.Names()).Msg("step applied")
	}
	return d, nil
}

// Transform applies the already fitted steps.
func (p *Pipeline) Transform(d data.Dataset) (data.Dataset, error) {
	for _, step := range p.steps {
		var err error
		if d, err = step.Transform(d); err != nil {
			return data.Dataset{}, fmt.Errorf("pipeline: %s: %w", step.Name(), err)
		}
	}
	return d, nil
}
