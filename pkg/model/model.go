package model

import (
	"errors"
	"sort"
)

// Classifier is a supervised model over encoded features and integer labels.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	// NumFeatures is the row width the model was fitted on.
	NumFeatures() int
	// Classes returns the sorted labels seen during Fit.
	Classes() []int
}

// checkTrainingData validates X and y and returns the feature count and the
// sorted distinct labels.
func checkTrainingData(X [][]float64, y []int) (int, []int, error) {
	if len(X) == 0 {
		return 0, nil, errors.New("empty X")
	}
	if len(y) != len(X) {
		return 0, nil, errors.New("X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return 0, nil, errors.New("inconsistent number of features in X rows")
		}
	}
	classes := uniqueLabels(y)
	if len(classes) < 2 {
		return 0, nil, ErrSingleClass
	}
	return p, classes, nil
}

func uniqueLabels(y []int) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// classIndex returns the index of label in the sorted classes slice, or -1.
func classIndex(label int, classes []int) int {
	i := sort.SearchInts(classes, label)
	if i < len(classes) && classes[i] == label {
		return i
	}
	return -1
}

// argmax returns the first index of the largest count, so ties go to the
// lowest class.
func argmax[T int | float64](counts []T) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
