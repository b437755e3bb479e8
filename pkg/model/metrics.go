package model

// Confusion holds one-vs-rest confusion counts for a positive class.
type Confusion struct {
	TP, FP, TN, FN int
}

// BinaryConfusion counts outcomes treating positive as the positive class and
// every other label as negative.
func BinaryConfusion(yTrue, yPred []int, positive int) Confusion {
	var c Confusion
	for i := range yTrue {
		actual, predicted := yTrue[i] == positive, yPred[i] == positive
		switch {
		case actual && predicted:
			c.TP++
		case !actual && predicted:
			c.FP++
		case actual && !predicted:
			c.FN++
		default:
			c.TN++
		}
	}
	return c
}

// Add merges counts.
func (c Confusion) Add(o Confusion) Confusion {
	return Confusion{TP: c.TP + o.TP, FP: c.FP + o.FP, TN: c.TN + o.TN, FN: c.FN + o.FN}
}

func (c Confusion) Total() int { return c.TP + c.FP + c.TN + c.FN }

// SafeDiv returns num/den, or 0 when den is 0.
func SafeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func (c Confusion) Precision() float64     { return SafeDiv(c.TP, c.TP+c.FP) }
func (c Confusion) Recall() float64        { return SafeDiv(c.TP, c.TP+c.FN) }
func (c Confusion) SelectionRate() float64 { return SafeDiv(c.TP+c.FP, c.Total()) }
func (c Confusion) FalsePositiveRate() float64 {
	return SafeDiv(c.FP, c.FP+c.TN)
}
func (c Confusion) FalseNegativeRate() float64 {
	return SafeDiv(c.FN, c.FN+c.TP)
}

// F1 is the harmonic mean of precision and recall, 0 when both are 0.
func (c Confusion) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// AccuracyInt is the fraction of exact label matches (multiclass aware).
func AccuracyInt(yTrue []int, yPred []int) float64 {
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return SafeDiv(c, len(yTrue))
}
