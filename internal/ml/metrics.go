package ml

import (
	"fmt"
)

// ClassificationMetrics are binary scores for the positive label 1
type ClassificationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	F1        float64 `json:"f1"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// Score compares predictions to truth. A zero denominator scores 0.
func Score(yTrue, yPred []float64) (ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return ClassificationMetrics{}, fmt.Errorf("%d labels for %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return ClassificationMetrics{}, fmt.Errorf("no labels to score")
	}

	var tp, fp, fn, correct float64
	for i := range yTrue {
		t, p := yTrue[i] == 1, yPred[i] == 1
		if yTrue[i] == yPred[i] {
			correct++
		}
		switch {
		case t && p:
			tp++
		case !t && p:
			fp++
		case t && !p:
			fn++
		}
	}

	m := ClassificationMetrics{
		Accuracy:  correct / float64(len(yTrue)),
		Precision: safeDiv(tp, tp+fp),
		Recall:    safeDiv(tp, tp+fn),
	}
	m.F1 = safeDiv(2*tp, 2*tp+fp+fn)
	return m, nil
}

// Accuracy is the share of matching labels
func Accuracy(yTrue, yPred []float64) (float64, error) {
	m, err := Score(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return m.Accuracy, nil
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
