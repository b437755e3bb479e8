package model

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/RajatSharma-ops/Biased-AI/pkg/stats"
)

// KNN classifies by majority vote of the K nearest training rows
// (Euclidean distance on standardized features).
type KNN struct {
	K int

	scaler  *stats.StandardScaler
	X       [][]float64
	yIdx    []int
	classes []int
}

// NewKNN creates and returns a new KNN model.
func NewKNN(k int) *KNN {
	return &KNN{K: k}
}

// Fit stores the scaled training data and labels.
func (m *KNN) Fit(X [][]float64, y []int) error {
	_, classes, err := checkTrainingData(X, y)
	if err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	if m.K <= 0 {
		return fmt.Errorf("knn: K must be positive, got %d", m.K)
	}
	m.scaler = stats.NewStandardScaler()
	if m.X, err = m.scaler.FitTransform(X); err != nil {
		return fmt.Errorf("knn: %w", err)
	}
	m.classes = classes
	m.yIdx = make([]int, len(y))
	for i, lab := range y {
		m.yIdx[i] = classIndex(lab, classes)
	}
	return nil
}

// Predict finds the K nearest neighbours of every row, split across workers.
func (m *KNN) Predict(X [][]float64) []int {
	if len(X) == 0 {
		return nil
	}
	// Query rows go through the scaler fitted on the training data.
	Xs := m.scaler.Transform(X)
	out := make([]int, len(Xs))
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(Xs) + workers - 1) / workers

	// Each worker owns a contiguous block of rows and writes only its slots in out.
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(Xs))
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = m.classes[m.predictSingle(Xs[i])]
			}
		}(start, end)
	}

	wg.Wait()
	return out
}

// predictSingle returns the class index voted by the K nearest neighbours.
// Equal distances keep training order; equal votes go to the lowest class.
func (m *KNN) predictSingle(xi []float64) int {
	type neighbour struct {
		d float64
		c int
	}
	// nbrs holds the k nearest rows seen so far, sorted by distance.
	k := min(m.K, len(m.X))
	nbrs := make([]neighbour, 0, k+1)

	for j, xj := range m.X {
		d := euclidSquared(xi, xj)
		// Skip rows no closer than the current k-th neighbour.
		if len(nbrs) == k && d >= nbrs[k-1].d {
			continue
		}
		// Insert after any equal distances, then drop the farthest.
		pos := sort.Search(len(nbrs), func(a int) bool { return nbrs[a].d > d })
		nbrs = append(nbrs, neighbour{})
		copy(nbrs[pos+1:], nbrs[pos:])
		nbrs[pos] = neighbour{d: d, c: m.yIdx[j]}
		if len(nbrs) > k {
			nbrs = nbrs[:k]
		}
	}

	// Count one vote per neighbour.
	votes := make([]int, len(m.classes))
	for _, n := range nbrs {
		votes[n.c]++
	}
	return argmax(votes)
}

func (m *KNN) NumFeatures() int {
	if m.scaler == nil {
		return 0
	}
	return len(m.scaler.Mean)
}

func (m *KNN) Classes() []int { return m.classes }

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
