package optim

// SGD is plain stochastic gradient descent with a fixed learning rate.
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

// Step updates weights in place: w -= lr * g.
func (o *SGD) Step(weights, grads []float64) {
	for i := range weights {
		weights[i] -= o.LearningRate * grads[i]
	}
}

// StepScalar applies the same update to a single parameter such as a bias.
func (o *SGD) StepScalar(param, grad float64) float64 {
	return param - o.LearningRate*grad
}
