package nn

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogLoss is the L2-regularized binary cross-entropy of a linear model,
// averaged over the n samples:
//
//	(sum_i softplus(z_i) - y_i*z_i + ||w||^2 / (2C)) / n,  z = Xw + b
//
// Its minimizer is that of the summed loss; the mean keeps gradient
// thresholds independent of n. Parameters are packed as theta = [w..., b];
// the bias is not penalized.
type LogLoss struct {
	X *mat.Dense
	Y []float64
	C float64

	z *mat.VecDense
	r *mat.VecDense
}

func NewLogLoss(x *mat.Dense, y []float64, c float64) *LogLoss {
	n, _ := x.Dims()
	return &LogLoss{X: x, Y: y, C: c, z: mat.NewVecDense(n, nil), r: mat.NewVecDense(n, nil)}
}

func (l *LogLoss) linear(theta []float64) {
	_, p := l.X.Dims()
	l.z.MulVec(l.X, mat.NewVecDense(p, theta[:p]))
	b := theta[p]
	for i := 0; i < l.z.Len(); i++ {
		l.z.SetVec(i, l.z.AtVec(i)+b)
	}
}

// Func returns the loss at theta.
func (l *LogLoss) Func(theta []float64) float64 {
	_, p := l.X.Dims()
	l.linear(theta)
	s := 0.0
	for i, y := range l.Y {
		z := l.z.AtVec(i)
		s += Softplus(z) - y*z
	}
	w := theta[:p]
	return (s + floats.Dot(w, w)/(2*l.C)) / float64(len(l.Y))
}

// Grad writes the gradient at theta into grad.
func (l *LogLoss) Grad(grad, theta []float64) {
	_, p := l.X.Dims()
	l.linear(theta)
	for i, y := range l.Y {
		l.r.SetVec(i, Sigmoid(l.z.AtVec(i))-y)
	}
	gw := mat.NewVecDense(p, grad[:p])
	gw.MulVec(l.X.T(), l.r)
	floats.AddScaled(grad[:p], 1/l.C, theta[:p])
	grad[p] = floats.Sum(l.r.RawVector().Data)
	floats.Scale(1/float64(len(l.Y)), grad)
}
