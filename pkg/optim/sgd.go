package optim

import "gonum.org/v1/gonum/floats"

// SGD is a plain gradient descent optimizer with a fixed learning rate.
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

// Step updates weights in place: w -= lr * g.
func (o *SGD) Step(weights, grads []float64) {
	floats.AddScaled(weights, -o.LearningRate, grads)
}
