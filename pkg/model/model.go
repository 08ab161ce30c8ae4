package model

import (
	"errors"

	"github.com/HROlive/Data-analytics-in-the-era-of-large-scale-machine-learning/pkg/data"
)

// ErrNotFitted is returned when predicting with a model that was never fitted.
var ErrNotFitted = errors.New("model: not fitted")

// Classifier is a binary (0/1) supervised learner over named feature matrices.
type Classifier interface {
	Fit(X data.FeatureMatrix, y []int) error
	Predict(X data.FeatureMatrix) ([]int, error)
}

// Cloner returns an unfitted copy carrying the same hyperparameters.
// Cross-validation uses it to refit per fold.
type Cloner interface {
	Classifier
	Clone() Classifier
}
