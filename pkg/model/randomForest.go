package model

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest for classification
type RandomForest struct {
	// Hyperparameters / options
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 => sqrt(p)
	Bootstrap       bool
	RandomState     int64

	// Internal state
	Trees     []*DecisionTreeClassifier
	classes   []int
	nFeatures int
}

// RandomForestOption functional config for RandomForest
type RandomForestOption func(*RandomForest)

func WithNEstimators(n int) RandomForestOption { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) RandomForestOption  { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}
func WithForestRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForest) { rf.RandomState = seed }
}

// NewRandomForest initializes the forest with deterministic defaults.
func NewRandomForest(opts ...RandomForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     50,
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MaxFeatures:     0,
		Bootstrap:       true,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the trees concurrently. Tree i draws its bootstrap sample and
// feature subsets from seed RandomState+i, so the forest is reproducible.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	p, classes, err := checkTrainingData(X, y)
	if err != nil {
		return fmt.Errorf("randomforest: %w", err)
	}
	if rf.NEstimators <= 0 {
		return fmt.Errorf("randomforest: NEstimators must be positive, got %d", rf.NEstimators)
	}
	// Features tried per split default to sqrt(p).
	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(p))))
	}

	n := len(X)
	trees := make([]*DecisionTreeClassifier, rf.NEstimators)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < rf.NEstimators; i++ {
		i := i
		g.Go(func() error {
			seed := rf.RandomState + int64(i)
			treeRand := rand.New(rand.NewSource(seed))

			// Bootstrap sampling: an index slice, not a copy of the data.
			sample := make([]int, n)
			for j := range sample {
				if rf.Bootstrap {
					sample[j] = treeRand.Intn(n)
				} else {
					sample[j] = j
				}
			}

			// Fit a tree on the sample, sharing the forest's class list.
			tree := NewDecisionTreeClassifier(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithRandomState(seed),
			)
			if err := tree.fitIndices(X, y, sample, p, classes); err != nil {
				return fmt.Errorf("randomforest: tree %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	rf.Trees = trees
	rf.classes = classes
	rf.nFeatures = p
	return nil
}

// Predict returns the majority vote of all trees; ties go to the lowest class.
func (rf *RandomForest) Predict(X [][]float64) []int {
	// One vote counter per row and class.
	votes := make([][]int, len(X))
	for i := range votes {
		votes[i] = make([]int, len(rf.classes))
	}
	// Every tree votes with the majority class of the leaf x lands in.
	for _, tree := range rf.Trees {
		for i, x := range X {
			votes[i][tree.leafFor(x).predIndex]++
		}
	}
	out := make([]int, len(X))
	for i := range X {
		out[i] = rf.classes[argmax(votes[i])]
	}
	return out
}

func (rf *RandomForest) NumFeatures() int { return rf.nFeatures }
func (rf *RandomForest) Classes() []int   { return rf.classes }
