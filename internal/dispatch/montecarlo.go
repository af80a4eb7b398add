package dispatch

import (
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// SimParams describes a batch of repeated resolutions of one config.
type SimParams struct {
	Config Config
	Layout Layout
	Trials int
	// Seed makes the batch reproducible; 0 draws a fresh one.
	Seed uint64
	// Workers splits trials across goroutines, each with its own seeded
	// RNG. <= 0 picks 4, or 1 for small batches.
	Workers int
}

// Stats summarizes an integer sample.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	Max    int     `json:"max"`
}

// Report is the outcome distribution of a batch next to the displayed
// overlap estimate.
type Report struct {
	Trials   int    `json:"trials"`
	Seed     uint64 `json:"seed"`
	Overlap  int    `json:"overlap_percent"`
	Success  int    `json:"success"`
	Bonus    int    `json:"bonus"`
	Failure  int    `json:"failure"`
	AutoFail int    `json:"auto_fail"`

	SuccessRate float64 `json:"success_rate"` // success + bonus
	BonusRate   float64 `json:"bonus_rate"`
	FailureRate float64 `json:"failure_rate"`

	Steps   Stats `json:"steps"`
	Bounces Stats `json:"bounces"`
}

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:   mean,
		Var:    variance,
		StdDev: math.Sqrt(variance),
		P50:    percentile(0.50),
		P90:    percentile(0.90),
		P99:    percentile(0.99),
		Max:    cp[n-1],
	}
}

type batch struct {
	results []Result
	err     error
}

func simulateBatch(cfg Config, l Layout, count int, rng RandomSource) batch {
	b := batch{results: make([]Result, 0, count)}
	for i := 0; i < count; i++ {
		run, err := NewRun(cfg, l, rng)
		if err != nil {
			b.err = err
			return b
		}
		b.results = append(b.results, run.Complete())
	}
	return b
}

// RunMonteCarlo repeats the resolution p.Trials times and tallies outcomes.
// The same Seed and Workers always give the same report.
func RunMonteCarlo(p SimParams) (Report, error) {
	if len(p.Config.Attributes) < MinAttributes {
		return Report{}, ErrTooFewAttributes
	}
	seed := p.Seed
	if seed == 0 {
		seed = NewSeed()
	}
	rep := Report{Trials: p.Trials, Seed: seed, Overlap: OverlapPercent(p.Config.Attributes, p.Layout)}
	if p.Trials <= 0 {
		return rep, nil
	}

	numGo := p.Workers
	if numGo <= 0 {
		numGo = 4
		if p.Trials < 100 {
			numGo = 1
		}
	}
	if numGo > p.Trials {
		numGo = p.Trials
	}

	log.Debug().Int("trials", p.Trials).Int("workers", numGo).Uint64("seed", seed).Msg("starting monte carlo")

	batches := make([]batch, numGo)
	var wg sync.WaitGroup
	for g := 0; g < numGo; g++ {
		count := p.Trials / numGo
		if g < p.Trials%numGo {
			count++
		}
		wg.Add(1)
		go func(g, count int) {
			defer wg.Done()
			batches[g] = simulateBatch(p.Config, p.Layout, count, NewSeededRNG(seed+uint64(g)))
		}(g, count)
	}
	wg.Wait()

	steps := make([]int, 0, p.Trials)
	bounces := make([]int, 0, p.Trials)
	for _, b := range batches {
		if b.err != nil {
			return Report{}, b.err
		}
		for _, res := range b.results {
			switch res.Outcome {
			case OutcomeSuccess:
				rep.Success++
			case OutcomeBonus:
				rep.Bonus++
			default:
				rep.Failure++
			}
			if res.Reason == ReasonAutoFail {
				rep.AutoFail++
			}
			steps = append(steps, res.Steps)
			bounces = append(bounces, res.Bounces)
		}
	}

	n := float64(p.Trials)
	rep.SuccessRate = float64(rep.Success+rep.Bonus) / n
	rep.BonusRate = float64(rep.Bonus) / n
	rep.FailureRate = float64(rep.Failure) / n
	rep.Steps = calcStats(steps)
	rep.Bounces = calcStats(bounces)
	return rep, nil
}
