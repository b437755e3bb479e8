package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/RajatSharma-ops/Biased-AI/pkg/NeuralNetwork"
	"github.com/RajatSharma-ops/Biased-AI/pkg/data"
	"github.com/RajatSharma-ops/Biased-AI/pkg/optim"
	"github.com/RajatSharma-ops/Biased-AI/pkg/stats"
)

// LogisticRegression with sigmoid output, trained by mini-batch gradient
// descent on standardized features. More than two classes are handled
// one-vs-rest.
type LogisticRegression struct {
	Lr          float64
	Epochs      int
	BatchSize   int
	L2          float64 // ridge penalty on weights
	Tol         float64 // stop when epoch loss improves by less than Tol
	RandomState int64

	scaler    *stats.StandardScaler
	units     []*logitUnit // one unit for binary, one per class otherwise
	classes   []int
	nFeatures int
}

// logitUnit is a single binary logistic model.
type logitUnit struct {
	W []float64 // weights
	b float64   // bias
}

// LogisticOption functional config for LogisticRegression
type LogisticOption func(*LogisticRegression)

func WithLearningRate(lr float64) LogisticOption { return func(m *LogisticRegression) { m.Lr = lr } }
func WithEpochs(n int) LogisticOption            { return func(m *LogisticRegression) { m.Epochs = n } }
func WithBatchSize(n int) LogisticOption         { return func(m *LogisticRegression) { m.BatchSize = n } }
func WithL2(l float64) LogisticOption            { return func(m *LogisticRegression) { m.L2 = l } }
func WithLogisticRandomState(seed int64) LogisticOption {
	return func(m *LogisticRegression) { m.RandomState = seed }
}

// NewLogisticRegression stores the hyperparameters; weights are created in Fit.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	m := &LogisticRegression{
		Lr:        0.1,
		Epochs:    200,
		BatchSize: 32,
		L2:        1e-4,
		Tol:       1e-6,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Fit standardizes X and trains one unit (binary) or one unit per class.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	p, classes, err := checkTrainingData(X, y)
	if err != nil {
		return fmt.Errorf("logistic: %w", err)
	}
	scaler := stats.NewStandardScaler()
	Xs, err := scaler.FitTransform(X)
	if err != nil {
		return fmt.Errorf("logistic: %w", err)
	}

	targets := classes[1:]
	if len(classes) > 2 {
		targets = classes
	}
	rnd := rand.New(rand.NewSource(m.RandomState))
	units := make([]*logitUnit, len(targets))
	for k, positive := range targets {
		yb := make([]float64, len(y))
		for i, lab := range y {
			if lab == positive {
				yb[i] = 1
			}
		}
		u, err := m.fitUnit(Xs, yb, p, rnd)
		if err != nil {
			return fmt.Errorf("logistic: class %d: %w", positive, err)
		}
		units[k] = u
	}

	m.scaler = scaler
	m.units = units
	m.classes = classes
	m.nFeatures = p
	return nil
}

// fitUnit runs mini-batch SGD with BCE loss for one binary problem.
func (m *LogisticRegression) fitUnit(X [][]float64, y []float64, p int, rnd *rand.Rand) (*logitUnit, error) {
	u := &logitUnit{W: make([]float64, p)}
	// Small random weights break symmetry.
	for i := range u.W {
		u.W[i] = rnd.NormFloat64() * 0.01
	}
	opt := optim.NewSGD(m.Lr)
	prevLoss := math.Inf(1)

	for ep := 0; ep < m.Epochs; ep++ {
		batches, done := data.Batches(X, y, m.BatchSize, rnd)
		epochLoss, seen := 0.0, 0

		for batch := range batches {
			// Forward pass.
			proba := make([]float64, len(batch.X))
			for i, row := range batch.X {
				proba[i] = u.proba(row)
			}
			loss, dy := NeuralNetwork.BCE(batch.Y, proba)
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				close(done)
				return nil, ErrNotConverged
			}
			epochLoss += loss * float64(len(batch.Y))
			seen += len(batch.Y)

			// Backward pass.
			gW := make([]float64, p)
			gb := 0.0
			for i, row := range batch.X {
				floats.AddScaled(gW, dy[i], row)
				gb += dy[i]
			}
			if m.L2 > 0 {
				floats.AddScaled(gW, m.L2, u.W)
			}
			opt.Step(u.W, gW)
			u.b = opt.StepScalar(u.b, gb)
		}
		close(done)

		if seen == 0 {
			break
		}
		epochLoss /= float64(seen)
		for _, w := range u.W {
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, ErrNotConverged
			}
		}
		if math.Abs(prevLoss-epochLoss) < m.Tol {
			break
		}
		prevLoss = epochLoss
	}
	return u, nil
}

func (u *logitUnit) proba(row []float64) float64 {
	return NeuralNetwork.Sigmoid(floats.Dot(u.W, row) + u.b)
}

// PredictProba returns p(class) per row and unit: one column for binary
// problems (probability of the larger class), one per class otherwise.
func (m *LogisticRegression) PredictProba(X [][]float64) [][]float64 {
	Xs := m.scaler.Transform(X)
	out := make([][]float64, len(Xs))
	for i, row := range Xs {
		ps := make([]float64, len(m.units))
		for k, u := range m.units {
			ps[k] = u.proba(row)
		}
		out[i] = ps
	}
	return out
}

// Predict thresholds binary probabilities at 0.5 and takes the most
// confident unit for one-vs-rest.
func (m *LogisticRegression) Predict(X [][]float64) []int {
	proba := m.PredictProba(X)
	out := make([]int, len(proba))
	for i, ps := range proba {
		if len(m.units) == 1 {
			if ps[0] >= 0.5 {
				out[i] = m.classes[1]
			} else {
				out[i] = m.classes[0]
			}
			continue
		}
		out[i] = m.classes[argmax(ps)]
	}
	return out
}

func (m *LogisticRegression) NumFeatures() int { return m.nFeatures }
func (m *LogisticRegression) Classes() []int   { return m.classes }
