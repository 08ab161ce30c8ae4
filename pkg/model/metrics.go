package model

import "fmt"

// Scores holds the binary classification metrics for one evaluation.
type Scores struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Confusion counts for labels 0/1, positive class 1.
type Confusion struct {
	TP, FP, TN, FN int
}

// ConfusionMatrix tallies predictions against the truth.
func ConfusionMatrix(yTrue, yPred []int) (Confusion, error) {
	var c Confusion
	if len(yTrue) != len(yPred) {
		return c, fmt.Errorf("metrics: %d labels against %d predictions", len(yTrue), len(yPred))
	}
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			c.TP++
		case yPred[i] == 1 && yTrue[i] == 0:
			c.FP++
		case yPred[i] == 0 && yTrue[i] == 1:
			c.FN++
		case yPred[i] == 0 && yTrue[i] == 0:
			c.TN++
		default:
			return c, fmt.Errorf("metrics: row %d: labels must be 0 or 1 (true %d, predicted %d)", i, yTrue[i], yPred[i])
		}
	}
	return c, nil
}

// Evaluate computes accuracy, precision, recall and F1. A metric whose
// denominator is zero is reported as 0.
func Evaluate(yTrue, yPred []int) (Scores, error) {
	if len(yTrue) == 0 {
		return Scores{}, fmt.Errorf("metrics: no labels to evaluate")
	}
	c, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return Scores{}, err
	}
	s := Scores{Accuracy: c.Accuracy()}
	s.Precision, s.Recall, s.F1 = c.PrecisionRecallF1()
	return s, nil
}

// Accuracy is the fraction of correct predictions; 0 when empty.
func (c Confusion) Accuracy() float64 {
	n := c.TP + c.FP + c.TN + c.FN
	if n == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(n)
}

// PrecisionRecallF1 for the positive class.
func (c Confusion) PrecisionRecallF1() (prec, rec, f1 float64) {
	if c.TP+c.FP > 0 {
		prec = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		rec = float64(c.TP) / float64(c.TP+c.FN)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// BinaryPredFromProba labels a row 1 when its probability exceeds threshold.
func BinaryPredFromProba(proba []float64, threshold float64) []int {
	out := make([]int, len(proba))
	for i, p := range proba {
		if p > threshold {
			out[i] = 1
		}
	}
	return out
}
