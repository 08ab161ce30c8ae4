package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/nn"
	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/optim"
)

// Solver selects the optimizer used by Fit.
type Solver string

const (
	LBFGS           Solver = "lbfgs" // quasi-Newton, gonum/optimize
	GradientDescent Solver = "gd"    // full-batch gradient descent
)

// ParseSolver validates a solver name.
func ParseSolver(s string) (Solver, error) {
	switch Solver(s) {
	case LBFGS, GradientDescent:
		return Solver(s), nil
	}
	return "", fmt.Errorf("logistic: unknown solver %q (want lbfgs or gd)", s)
}

// ConvergenceWarning reports that the optimizer stopped before converging.
// It is not fatal: the model keeps the best parameters found.
type ConvergenceWarning struct {
	Solver     Solver
	Iterations int
	Status     string
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("logistic regression (%s) did not converge after %d iterations: %s", w.Solver, w.Iterations, w.Status)
}

// LogisticRegression (binary) with sigmoid link and L2 penalty on the weights.
type LogisticRegression struct {
	W []float64 // weights, one per feature
	b float64   // bias

	MaxIter int     // optimizer iteration cap
	C       float64 // inverse regularization strength
	Tol     float64 // gradient threshold
	Solver  Solver
	Lr      float64 // learning rate, gradient descent only

	features   []string
	fitted     bool
	iterations int
	warning    *ConvergenceWarning
	log        zerolog.Logger
}

// Option functional config for LogisticRegression
type Option func(*LogisticRegression)

func WithMaxIterations(n int) Option { return func(m *LogisticRegression) { m.MaxIter = n } }
func WithC(c float64) Option { return func(m *LogisticRegression) { m.C = c } }
func WithTolerance(tol float64) Option { return func(m *LogisticRegression) { m.Tol = tol } }
func WithSolver(s Solver) Option { return func(m *LogisticRegression) { m.Solver = s } }
func WithLearningRate(lr float64) Option { return func(m *LogisticRegression) { m.Lr = lr } }
func WithLogger(l zerolog.Logger) Option { return func(m *LogisticRegression) { m.log = l } }

// NewLogisticRegression returns an unfitted model. Defaults: 1000 iterations,
// C=1, tolerance 1e-4, L-BFGS.
func NewLogisticRegression(opts ...Option) *LogisticRegression {
	m := &LogisticRegression{
		MaxIter: 1000,
		C:       1.0,
		Tol:     1e-4,
		Solver:  LBFGS,
		Lr:      0.1,
		log:     log.Logger,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Clone returns an unfitted model with the same options.
func (m *LogisticRegression) Clone() Classifier {
	return &LogisticRegression{MaxIter: m.MaxIter, C: m.C, Tol: m.Tol, Solver: m.Solver, Lr: m.Lr, log: m.log}
}

// Fit estimates weights and bias starting from zero. When the iteration cap
// is reached first, a ConvergenceWarning is logged, kept in Warning, and
// Fit still succeeds with the last parameters.
func (m *LogisticRegression) Fit(X data.FeatureMatrix, y []int) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.New("logistic: empty feature matrix")
	}
	if len(y) != n {
		return fmt.Errorf("logistic: %d labels for %d rows", len(y), n)
	}
	if m.MaxIter < 1 {
		return fmt.Errorf("logistic: max iterations must be positive, got %d", m.MaxIter)
	}
	if !(m.C > 0) {
		return fmt.Errorf("logistic: C must be positive, got %v", m.C)
	}
	if err := X.Validate("fit"); err != nil {
		return err
	}
	target := make([]float64, n)
	for i, label := range y {
		if label != 0 && label != 1 {
			return &data.DomainError{Op: "fit", Column: "target", Row: i, Value: strconv.Itoa(label), Reason: "is not a 0/1 label"}
		}
		target[i] = float64(label)
	}

	m.warning = nil
	loss := nn.NewLogLoss(X.X, target, m.C)
	theta := make([]float64, p+1)
	var err error
	switch m.Solver {
	case LBFGS:
		theta, err = m.minimize(loss, theta)
	case GradientDescent:
		theta = m.descend(loss, theta)
	default:
		err = fmt.Errorf("logistic: unknown solver %q", m.Solver)
	}
	if err != nil {
		return err
	}

	m.W = append([]float64(nil), theta[:p]...)
	m.b = theta[p]
	m.features = append([]string(nil), X.Names...)
	m.fitted = true
	if m.warning != nil {
		m.log.Warn().Err(m.warning).Int("iterations", m.iterations).Msg("ConvergenceWarning")
	} else {
		m.log.Debug().Int("iterations", m.iterations).Str("solver", string(m.Solver)).Msg("logistic regression converged")
	}
	return nil
}

func (m *LogisticRegression) minimize(loss *nn.LogLoss, theta []float64) ([]float64, error) {
	problem := optimize.Problem{Func: loss.Func, Grad: loss.Grad}
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: m.Tol,
	}
	res, err := optimize.Minimize(problem, theta, settings, &optimize.LBFGS{})
	if res == nil || res.X == nil {
		return nil, fmt.Errorf("logistic: %w", err)
	}
	m.iterations = res.MajorIterations
	switch {
	case err != nil:
		m.warning = &ConvergenceWarning{Solver: LBFGS, Iterations: m.iterations, Status: err.Error()}
	case res.Status == optimize.IterationLimit:
		m.warning = &ConvergenceWarning{Solver: LBFGS, Iterations: m.iterations, Status: res.Status.String()}
	}
	return res.X, nil
}

// descend runs full-batch gradient descent on the mean loss.
func (m *LogisticRegression) descend(loss *nn.LogLoss, theta []float64) []float64 {
	opt := optim.NewSGD(m.Lr)
	grad := make([]float64, len(theta))
	for it := 0; it < m.MaxIter; it++ {
		loss.Grad(grad, theta)
		if floats.Norm(grad, math.Inf(1)) < m.Tol {
			m.iterations = it
			return theta
		}
		opt.Step(theta, grad)
	}
	m.iterations = m.MaxIter
	m.warning = &ConvergenceWarning{Solver: GradientDescent, Iterations: m.MaxIter, Status: "IterationLimit"}
	return theta
}

// PredictProba returns p(y=1) for each row of X.
func (m *LogisticRegression) PredictProba(X data.FeatureMatrix) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if err := m.checkColumns(X); err != nil {
		return nil, err
	}
	if err := X.Validate("predict"); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	z := mat.NewVecDense(n, nil)
	z.MulVec(X.X, mat.NewVecDense(p, m.W))
	out := make([]float64, n)
	for i := range out {
		out[i] = nn.Sigmoid(z.AtVec(i) + m.b)
	}
	return out, nil
}

// Predict returns the class labels (0 or 1); 1 when p(y=1) > 0.5.
func (m *LogisticRegression) Predict(X data.FeatureMatrix) ([]int, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return BinaryPredFromProba(proba, 0.5), nil
}

func (m *LogisticRegression) checkColumns(X data.FeatureMatrix) error {
	for j, name := range m.features {
		if j >= len(X.Names) {
			return &data.SchemaError{Op: "predict", Column: name, Reason: "missing from the prediction matrix"}
		}
		if X.Names[j] != name {
			return &data.SchemaError{Op: "predict", Column: X.Names[j], Reason: fmt.Sprintf("found at position %d where %q was fitted", j, name)}
		}
	}
	if len(X.Names) > len(m.features) {
		return &data.SchemaError{Op: "predict", Column: X.Names[len(m.features)], Reason: "was not seen during fit"}
	}
	return nil
}

// Bias returns the fitted intercept.
func (m *LogisticRegression) Bias() float64 { return m.b }

// Features returns the column names seen by Fit.
func (m *LogisticRegression) Features() []string { return append([]string(nil), m.features...) }

// Iterations returns how many optimizer iterations the last Fit used.
func (m *LogisticRegression) Iterations() int { return m.iterations }

// Converged reports whether the last Fit converged.
func (m *LogisticRegression) Converged() bool { return m.fitted && m.warning == nil }

// Warning returns the ConvergenceWarning of the last Fit, or nil.
func (m *LogisticRegression) Warning() *ConvergenceWarning { return m.warning }
