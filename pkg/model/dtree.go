package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeClassifier is a CART-style classifier with axis-aligned
// threshold splits (x <= threshold goes left).
type DecisionTreeClassifier struct {
	// Hyperparameters / options
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"
	MaxFeatures         int     // 0 => all features, >0 => features sampled per split
	MinImpurityDecrease float64 // minimal impurity decrease to accept a split
	RandomState         int64   // seed for feature subsampling

	// internals
	root      *dtNode
	classes   []int
	nFeatures int
}

// dtNode holds a node in the tree.
type dtNode struct {
	isLeaf    bool
	feature   int
	threshold float64
	left      *dtNode
	right     *dtNode

	n         int
	predIndex int // index into classes of the majority class
}

// Option functional config
type Option func(*DecisionTreeClassifier)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.Criterion = c } }
func WithMaxFeatures(k int) Option  { return func(t *DecisionTreeClassifier) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier returns a classifier with deterministic defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---------------------------
// Public API
// ---------------------------

// Fit trains the decision tree on X (n x p) and integer labels y.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []int) error {
	p, classes, err := checkTrainingData(X, y)
	if err != nil {
		return fmt.Errorf("dtree: %w", err)
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.fitIndices(X, y, idx, p, classes)
}

// fitIndices grows the tree on the rows listed in idx (which may repeat, as
// in a bootstrap sample). classes is the label set shared by an ensemble.
func (t *DecisionTreeClassifier) fitIndices(X [][]float64, y []int, idx []int, p int, classes []int) error {
	if len(idx) == 0 {
		return errors.New("dtree: empty sample")
	}
	if t.Criterion != "gini" && t.Criterion != "entropy" {
		return fmt.Errorf("dtree: unknown criterion %q", t.Criterion)
	}
	t.classes = classes
	t.nFeatures = p
	b := &treeBuilder{
		tree:     t,
		X:        X,
		yIdx:     make([]int, len(y)),
		nClasses: len(classes),
		rnd:      rand.New(rand.NewSource(t.RandomState)),
	}
	for i, lab := range y {
		b.yIdx[i] = classIndex(lab, classes)
	}
	if t.Criterion == "entropy" {
		b.impurity = entropyFromCounts
	} else {
		b.impurity = giniFromCounts
	}
	t.root = b.build(idx, 0)
	return nil
}

// Predict returns predicted class labels.
func (t *DecisionTreeClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = t.classes[t.leafFor(X[i]).predIndex]
	}
	return out
}

func (t *DecisionTreeClassifier) NumFeatures() int { return t.nFeatures }
func (t *DecisionTreeClassifier) Classes() []int   { return t.classes }

// Depth returns the depth of the fitted tree (a single leaf has depth 0).
func (t *DecisionTreeClassifier) Depth() int { return depthOf(t.root) }

func depthOf(n *dtNode) int {
	if n == nil || n.isLeaf {
		return 0
	}
	return 1 + max(depthOf(n.left), depthOf(n.right))
}

func (t *DecisionTreeClassifier) leafFor(x []float64) *dtNode {
	node := t.root
	for !node.isLeaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

// parallelSplitWork is the rows*features size above which split search
// fans out one goroutine per feature.
const parallelSplitWork = 1 << 14

type treeBuilder struct {
	tree     *DecisionTreeClassifier
	X        [][]float64
	yIdx     []int // class index per row
	nClasses int
	impurity func([]int) float64
	rnd      *rand.Rand
}

// splitResult holds the best split found for one feature.
type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

func (r splitResult) better(o splitResult) bool {
	if r.feature == -1 {
		return false
	}
	if o.feature == -1 || r.gain > o.gain {
		return true
	}
	return r.gain == o.gain && r.feature < o.feature
}

func (b *treeBuilder) leaf(node *dtNode, counts []int) *dtNode {
	node.isLeaf = true
	node.predIndex = argmax(counts)
	return node
}

func (b *treeBuilder) build(idx []int, depth int) *dtNode {
	t := b.tree
	node := &dtNode{n: len(idx)}
	counts := b.counts(idx)

	// Pure, small or depth-capped nodes become leaves.
	if isPure(counts) || len(idx) < max(t.MinSamplesSplit, 2) || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return b.leaf(node, counts)
	}

	features := b.candidateFeatures()
	parent := b.impurity(counts)

	// Search every candidate feature; large nodes fan out one goroutine each.
	best := splitResult{feature: -1}
	if len(idx)*len(features) >= parallelSplitWork {
		results := make([]splitResult, len(features))
		var wg sync.WaitGroup
		for k, f := range features {
			wg.Add(1)
			go func(k, f int) {
				defer wg.Done()
				results[k] = b.bestSplitForFeature(idx, f, parent)
			}(k, f)
		}
		wg.Wait()
		for _, r := range results {
			if r.better(best) {
				best = r
			}
		}
	} else {
		for _, f := range features {
			if r := b.bestSplitForFeature(idx, f, parent); r.better(best) {
				best = r
			}
		}
	}

	// No split improves impurity enough, so this node stays a leaf.
	if best.feature == -1 || best.gain <= t.MinImpurityDecrease {
		return b.leaf(node, counts)
	}

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = b.build(best.leftIdx, depth+1)
	node.right = b.build(best.rightIdx, depth+1)
	return node
}

// candidateFeatures returns all features, or a random subset of MaxFeatures.
func (b *treeBuilder) candidateFeatures() []int {
	p := b.tree.nFeatures
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}
	k := b.tree.MaxFeatures
	if k <= 0 || k >= p {
		return feats
	}
	// Partial Fisher-Yates shuffle, then sort so ties break by feature index.
	for i := 0; i < k; i++ {
		j := i + b.rnd.Intn(p-i)
		feats[i], feats[j] = feats[j], feats[i]
	}
	feats = feats[:k]
	sort.Ints(feats)
	return feats
}

// bestSplitForFeature scans sorted values of feature f once, moving rows from
// the right child to the left and scoring each boundary between distinct values.
func (b *treeBuilder) bestSplitForFeature(idx []int, f int, parent float64) splitResult {
	result := splitResult{feature: -1}
	minLeaf := max(b.tree.MinSamplesLeaf, 1)

	sorted := append([]int(nil), idx...)
	sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

	// Start with every row on the right.
	left := make([]int, b.nClasses)
	right := b.counts(sorted)
	n := float64(len(sorted))
	bestPos := -1

	for s := 1; s < len(sorted); s++ {
		ci := b.yIdx[sorted[s-1]]
		left[ci]++
		right[ci]--
		// Only boundaries between distinct values that leave minLeaf rows per side count.
		lo, hi := b.X[sorted[s-1]][f], b.X[sorted[s]][f]
		if lo == hi || s < minLeaf || len(sorted)-s < minLeaf {
			continue
		}
		weighted := (float64(s)/n)*b.impurity(left) + (float64(len(sorted)-s)/n)*b.impurity(right)
		gain := parent - weighted
		if gain > result.gain {
			result.gain = gain
			result.feature = f
			result.threshold = lo + (hi-lo)/2
			bestPos = s
		}
	}
	if bestPos > 0 {
		result.leftIdx = sorted[:bestPos]
		result.rightIdx = sorted[bestPos:]
	}
	return result
}

func (b *treeBuilder) counts(idx []int) []int {
	counts := make([]int, b.nClasses)
	for _, i := range idx {
		counts[b.yIdx[i]]++
	}
	return counts
}

// ---------------------------
// Utilities: impurity
// ---------------------------

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 1.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * p
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
