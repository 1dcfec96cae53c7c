package renderer

import (
	"fmt"
	"math"

	"github.com/quantfolio/sandbox"
)

// Risk is the renderable view of a risk report. Values are pre-formatted so
// the templates stay free of any numeric logic.
type Risk struct {
	Observations int
	TotalReturn  sandbox.Percent
	Volatility   sandbox.Percent
	Sharpe       string // "n/a" when undefined
	VaR95        sandbox.Percent
	Drawdown     sandbox.Percent
	PeakIndex    int
	TroughIndex  int
	Recovery     string // "not recovered" or the index
}

// NewRisk builds the renderable view of a risk report.
func NewRisk(r *sandbox.RiskReport) *Risk {
	sharpe := "n/a"
	if !math.IsNaN(r.Sharpe) {
		sharpe = fmt.Sprintf("%.2f", r.Sharpe)
	}
	recovery := "not recovered"
	if r.MaxDrawdown.RecoveryIndex >= 0 {
		recovery = fmt.Sprintf("observation %d", r.MaxDrawdown.RecoveryIndex)
	}
	return &Risk{
		Observations: r.Observations,
		TotalReturn:  r.TotalReturn,
		Volatility:   r.Volatility,
		Sharpe:       sharpe,
		VaR95:        r.VaR95,
		Drawdown:     sandbox.Percent(r.MaxDrawdown.Drawdown * 100),
		PeakIndex:    r.MaxDrawdown.PeakIndex,
		TroughIndex:  r.MaxDrawdown.TroughIndex,
		Recovery:     recovery,
	}
}

// Simulation is the renderable view of a Monte Carlo simulation report.
type Simulation struct {
	Symbol      string
	Horizon     int
	Iterations  int
	Seed        uint64
	Initial     string
	Drift       sandbox.Percent
	Volatility  sandbox.Percent
	Mean        string
	Median      string
	P5          string
	P95         string
	Target      string // empty when no target was asked
	Probability sandbox.Percent
}

// NewSimulation builds the renderable view of a simulation report.
func NewSimulation(r *sandbox.SimulationReport) *Simulation {
	s := &Simulation{
		Symbol:      r.Symbol,
		Horizon:     r.Horizon,
		Iterations:  r.Iterations,
		Seed:        r.Seed,
		Initial:     fmt.Sprintf("%.2f", r.Initial),
		Drift:       sandbox.Percent(r.Drift * 100),
		Volatility:  sandbox.Percent(r.Volatility * 100),
		Mean:        fmt.Sprintf("%.2f", r.Mean),
		Median:      fmt.Sprintf("%.2f", r.Median),
		P5:          fmt.Sprintf("%.2f", r.P5),
		P95:         fmt.Sprintf("%.2f", r.P95),
		Probability: sandbox.Percent(r.Probability * 100),
	}
	if r.Target > 0 {
		s.Target = fmt.Sprintf("%.2f", r.Target)
	}
	return s
}
