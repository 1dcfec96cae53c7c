package sandbox

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// Dt is the per-period time step of the discretized process, one trading day.
const Dt = 1.0 / TradingDays

// ErrInvalidParameters is returned when a simulation is requested with
// out-of-domain parameters.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

// GBM parameterizes a Geometric Brownian Motion price process.
// Drift and Volatility are annualized.
type GBM struct {
	Initial    float64
	Drift      float64
	Volatility float64
}

// NewSource returns a seedable random source for SimulatePaths. The same
// seed always yields the same stream, which makes simulations reproducible.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// SimulatePaths generates independent discretized GBM price paths. Each path
// has horizon+1 values: index 0 is the initial price, each following step
// multiplies the prior value by exp((mu - sigma²/2)·Dt + sigma·√Dt·Z) with Z
// standard normal. The simulator carries no state between calls; all
// randomness comes from the caller-provided source.
func SimulatePaths(rng *rand.Rand, g GBM, horizon, iterations int) ([][]float64, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations %d: %w", iterations, ErrInvalidParameters)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon %d: %w", horizon, ErrInvalidParameters)
	}
	if g.Volatility < 0 {
		return nil, fmt.Errorf("volatility %v: %w", g.Volatility, ErrInvalidParameters)
	}
	if g.Initial <= 0 {
		return nil, fmt.Errorf("initial price %v: %w", g.Initial, ErrInvalidParameters)
	}

	drift := (g.Drift - 0.5*g.Volatility*g.Volatility) * Dt
	shock := g.Volatility * math.Sqrt(Dt)

	paths := make([][]float64, iterations)
	for i := range paths {
		path := make([]float64, horizon+1)
		path[0] = g.Initial
		price := g.Initial
		for t := 1; t <= horizon; t++ {
			price *= math.Exp(drift + shock*rng.NormFloat64())
			path[t] = price
		}
		paths[i] = path
	}
	return paths, nil
}

// Terminals extracts the final value of each path.
func Terminals(paths [][]float64) []float64 {
	terminals := make([]float64, 0, len(paths))
	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		terminals = append(terminals, path[len(path)-1])
	}
	return terminals
}

// ProbabilityOfTarget returns the fraction of paths whose terminal value is
// at or above target. It is deterministic given the path matrix.
func ProbabilityOfTarget(paths [][]float64, target float64) float64 {
	terminals := Terminals(paths)
	if len(terminals) == 0 {
		return 0
	}
	hits := 0
	for _, v := range terminals {
		if v >= target {
			hits++
		}
	}
	return float64(hits) / float64(len(terminals))
}

// SimulationReport summarizes the terminal distribution of one simulation.
type SimulationReport struct {
	Symbol     string
	Horizon    int
	Iterations int
	Seed       uint64
	Initial    float64
	Drift      float64
	Volatility float64
	Target     float64

	Mean        float64
	Median      float64
	P5          float64
	P95         float64
	Probability float64 // of reaching Target, 0 when Target is 0
}

// Simulate runs a full simulation and summarizes the terminal distribution.
func Simulate(symbol string, g GBM, horizon, iterations int, seed uint64, target float64) (*SimulationReport, error) {
	rng := NewSource(seed)
	paths, err := SimulatePaths(rng, g, horizon, iterations)
	if err != nil {
		return nil, fmt.Errorf("simulate %s: %w", symbol, err)
	}
	terminals := Terminals(paths)
	sorted := make([]float64, len(terminals))
	copy(sorted, terminals)
	sort.Float64s(sorted)

	report := &SimulationReport{
		Symbol:     symbol,
		Horizon:    horizon,
		Iterations: iterations,
		Seed:       seed,
		Initial:    g.Initial,
		Drift:      g.Drift,
		Volatility: g.Volatility,
		Target:     target,
		Mean:       mean(terminals),
		Median:     percentile(sorted, 0.5),
		P5:         percentile(sorted, 0.05),
		P95:        percentile(sorted, 0.95),
	}
	if target > 0 {
		report.Probability = ProbabilityOfTarget(paths, target)
	}
	return report, nil
}
