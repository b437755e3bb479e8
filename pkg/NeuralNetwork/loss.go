package NeuralNetwork

import "math"

const probEps = 1e-12

// BCE returns the mean binary cross-entropy and its gradient with respect to
// each prediction's logit (p - y) / n. Labels are 0 or 1.
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	if n == 0 {
		return 0, nil
	}
	s := 0.0
	grad := make([]float64, n)

	for i := 0; i < n; i++ {
		p := math.Min(math.Max(yPred[i], probEps), 1-probEps)
		y := yTrue[i]
		s += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (p - y) / float64(n)
	}
	return s / float64(n), grad
}
