package loader

import (
	"math"
	"math/rand"
	"sort"
)

// Partition is a train/test assignment of row indices.
type Partition struct {
	Train      []int
	Test       []int
	Stratified bool
}

// TestSize returns ceil(n*testRatio), kept inside [1, n-1] when n >= 2.
func TestSize(n int, testRatio float64) int {
	if n < 2 {
		return 0
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	return max(1, min(nTest, n-1))
}

// TrainTestSplit assigns a seeded random permutation of n rows to train and test.
func TrainTestSplit(n int, testRatio float64, seed int64) Partition {
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(n)
	nTest := TestSize(n, testRatio)
	p := Partition{
		Test:  append([]int(nil), indices[:nTest]...),
		Train: append([]int(nil), indices[nTest:]...),
	}
	sort.Ints(p.Train)
	sort.Ints(p.Test)
	return p
}

// StratifiedSplit splits n = len(y) rows so that every class keeps its share
// in the test set. It falls back to TrainTestSplit when a class has fewer
// than two rows or there are more classes than rows on either side.
func StratifiedSplit(y []int, testRatio float64, seed int64) Partition {
	n := len(y)
	nTest := TestSize(n, testRatio)

	byClass := map[int][]int{}
	var classes []int
	for i, c := range y {
		if _, ok := byClass[c]; !ok {
			classes = append(classes, c)
		}
		byClass[c] = append(byClass[c], i)
	}
	sort.Ints(classes)

	canStratify := len(classes) > 1 && nTest >= len(classes) && n-nTest >= len(classes)
	for _, c := range classes {
		if len(byClass[c]) < 2 {
			canStratify = false
		}
	}
	if !canStratify {
		return TrainTestSplit(n, testRatio, seed)
	}

	// Largest-remainder allocation of test slots, at least one per class and
	// never the whole class.
	alloc := make(map[int]int, len(classes))
	type rem struct {
		class int
		frac  float64
	}
	rems := make([]rem, 0, len(classes))
	assigned := 0
	for _, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / float64(n)
		k := int(math.Floor(exact))
		k = max(1, min(k, len(byClass[c])-1))
		alloc[c] = k
		assigned += k
		rems = append(rems, rem{c, exact - math.Floor(exact)})
	}
	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for i := 0; assigned < nTest && i < 4*len(rems); i++ {
		c := rems[i%len(rems)].class
		if alloc[c] < len(byClass[c])-1 {
			alloc[c]++
			assigned++
		}
	}
	for i := len(rems) - 1; assigned > nTest && i >= 0; i-- {
		c := rems[i].class
		if alloc[c] > 1 {
			alloc[c]--
			assigned--
		}
	}

	rnd := rand.New(rand.NewSource(seed))
	p := Partition{Stratified: true}
	for _, c := range classes {
		idx := byClass[c]
		perm := rnd.Perm(len(idx))
		for k, pi := range perm {
			if k < alloc[c] {
				p.Test = append(p.Test, idx[pi])
			} else {
				p.Train = append(p.Train, idx[pi])
			}
		}
	}
	sort.Ints(p.Train)
	sort.Ints(p.Test)
	return p
}

// TakeRows selects elements of xs by index, in index order.
func TakeRows[T any](xs []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
