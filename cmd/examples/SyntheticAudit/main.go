package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"

	"github.com/RajatSharma-ops/Biased-AI/pkg/data"
	"github.com/RajatSharma-ops/Biased-AI/pkg/dataprep"
	"github.com/RajatSharma-ops/Biased-AI/pkg/fairness"
	"github.com/RajatSharma-ops/Biased-AI/pkg/logging"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
	"github.com/RajatSharma-ops/Biased-AI/pkg/report"
)

// generateHiringData builds a table of applicants where the hiring label
// depends on a skill score plus a bonus for group "A". bias=0 gives a fair
// dataset.
func generateHiringData(n int, bias float64, rnd *rand.Rand) *data.Table {
	t := &data.Table{Header: []string{"experience", "score", "degree", "group", "hired"}}
	degrees := []string{"none", "bachelor", "master"}
	for i := 0; i < n; i++ {
		group := "B"
		if rnd.Intn(2) == 0 {
			group = "A"
		}
		exp := rnd.Intn(20)
		score := rnd.NormFloat64()
		deg := rnd.Intn(len(degrees))

		logit := 1.2*score + 0.08*float64(exp-10) + 0.4*float64(deg-1)
		if group == "A" {
			logit += bias
		}
		hired := "no"
		if rnd.Float64() < 1/(1+math.Exp(-logit)) {
			hired = "yes"
		}

		expCell := strconv.Itoa(exp)
		if rnd.Float64() < 0.03 {
			expCell = "NA"
		}
		t.Rows = append(t.Rows, []string{
			expCell,
			strconv.FormatFloat(score, 'f', 3, 64),
			degrees[deg],
			group,
			hired,
		})
	}
	return t
}

func main() {
	n := flag.Int("n", 1000, "number of applicants")
	bias := flag.Float64("bias", 1.5, "logit bonus given to group A in the labels")
	seed := flag.Int64("seed", 42, "random seed")
	chartDir := flag.String("charts", "", "write one selection rate chart per model here")
	flag.Parse()

	logger := logging.New(logging.Config{Level: "warn"})
	rnd := rand.New(rand.NewSource(*seed))

	fmt.Println("=== Synthetic Hiring Audit ===")
	t := generateHiringData(*n, *bias, rnd)
	fmt.Printf("Generated %d applicants, group A bias %.2f\n", len(t.Rows), *bias)

	split, err := dataprep.PreprocessTable(t, "hired", "group", dataprep.WithSeed(*seed))
	if err != nil {
		log.Fatalf("preprocess: %v", err)
	}
	fmt.Printf("Train size: %d, Test size: %d, features: %v\n\n", len(split.XTrain), len(split.XTest), split.FeatureNames)

	reg, err := model.TrainModels(context.Background(), split.XTrain, split.YTrain,
		model.WithSeed(*seed), model.WithLogger(logger))
	if err != nil {
		log.Fatalf("training: %v", err)
	}

	fmt.Printf("%-22s %-9s %-9s %-9s %-9s %-9s\n", "model", "accuracy", "f1", "sel(A)", "sel(B)", "disparity")
	for _, name := range reg.Names() {
		m, _ := reg.Get(name)
		ev, err := fairness.Evaluate(m, split.XTest, split.YTest, split.ATest, split.Positive)
		if err != nil {
			log.Fatalf("evaluate %s: %v", name, err)
		}
		a, _ := ev.Groups.Get("A")
		b, _ := ev.Groups.Get("B")
		fmt.Printf("%-22s %-9.4f %-9.4f %-9.4f %-9.4f %-9.4f\n",
			name, ev.Overall.Accuracy, ev.Overall.F1, a.SelectionRate, b.SelectionRate, ev.Overall.Disparity)

		if *chartDir != "" {
			path := filepath.Join(*chartDir, "synthetic_"+name+".png")
			if err := report.SelectionRateChart(ev.Groups, "Selection rate by group ("+name+")", path); err != nil {
				log.Printf("chart %s: %v", name, err)
			}
		}
	}
	for _, f := range reg.Failures() {
		fmt.Printf("dropped: %v\n", f)
	}
}
