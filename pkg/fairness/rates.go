package fairness

import (
	"encoding/json"

	"github.com/RajatSharma-ops/Biased-AI/pkg/artifact"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
	"github.com/RajatSharma-ops/Biased-AI/pkg/stats"
)

// Rates are the outcome rates of one sensitive group.
type Rates struct {
	SelectionRate     float64 `json:"selection_rate"`
	TruePositiveRate  float64 `json:"true_positive_rate"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
	FalseNegativeRate float64 `json:"false_negative_rate"`
	Count             int     `json:"count"`
}

func ratesFrom(c model.Confusion) Rates {
	return Rates{
		SelectionRate:     c.SelectionRate(),
		TruePositiveRate:  c.Recall(),
		FalsePositiveRate: c.FalsePositiveRate(),
		FalseNegativeRate: c.FalseNegativeRate(),
		Count:             c.Total(),
	}
}

// GroupRates maps each sensitive group to its Rates, keeping groups in the
// order they were first seen. Summary figures are derived from the current
// rates every time they are asked for.
type GroupRates struct {
	order []string
	rates map[string]Rates
}

func NewGroupRates() *GroupRates {
	return &GroupRates{rates: map[string]Rates{}}
}

// Set stores r for group, appending the group if it is new.
func (g *GroupRates) Set(group string, r Rates) {
	if _, ok := g.rates[group]; !ok {
		g.order = append(g.order, group)
	}
	g.rates[group] = r
}

func (g *GroupRates) Get(group string) (Rates, bool) {
	r, ok := g.rates[group]
	return r, ok
}

// Groups returns group names in first-seen order.
func (g *GroupRates) Groups() []string { return append([]string(nil), g.order...) }

func (g *GroupRates) Len() int { return len(g.order) }

func (g *GroupRates) collect(f func(Rates) float64) []float64 {
	out := make([]float64, len(g.order))
	for i, k := range g.order {
		out[i] = f(g.rates[k])
	}
	return out
}

// SelectionRates returns selection rates in group order.
func (g *GroupRates) SelectionRates() []float64 {
	return g.collect(func(r Rates) float64 { return r.SelectionRate })
}

// Disparity is max - min selection rate across groups (demographic parity
// difference). It is 0 for fewer than two groups.
func (g *GroupRates) Disparity() float64 { return stats.Spread(g.SelectionRates()) }

// EqualOpportunityDiff is the spread of true positive rates.
func (g *GroupRates) EqualOpportunityDiff() float64 {
	return stats.Spread(g.collect(func(r Rates) float64 { return r.TruePositiveRate }))
}

// EqualizedOddsDiff is the larger of the TPR and FPR spreads.
func (g *GroupRates) EqualizedOddsDiff() float64 {
	fpr := stats.Spread(g.collect(func(r Rates) float64 { return r.FalsePositiveRate }))
	return max(g.EqualOpportunityDiff(), fpr)
}

// DisparateImpact is min/max selection rate, 0 when no group is selected.
func (g *GroupRates) DisparateImpact() float64 {
	lo, hi := stats.MinMax(g.SelectionRates())
	if hi == 0 {
		return 0
	}
	return lo / hi
}

// Native renders the groups as an ordered map of ordered rate records.
func (g *GroupRates) Native() any {
	out := artifact.NewOrderedMap()
	for _, k := range g.order {
		out.Set(k, artifact.ToNative(g.rates[k]))
	}
	return out
}

// MarshalJSON writes groups in first-seen order.
func (g *GroupRates) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Native())
}
