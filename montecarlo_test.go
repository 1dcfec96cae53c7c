package sandbox

import (
	"errors"
	"testing"
)

func TestSimulatePaths_Shape(t *testing.T) {
	g := GBM{Initial: 100, Drift: 0.05, Volatility: 0.2}
	paths, err := SimulatePaths(NewSource(42), g, 10, 5)
	if err != nil {
		t.Fatalf("SimulatePaths() failed: %v", err)
	}
	if len(paths) != 5 {
		t.Fatalf("got %d paths, want 5", len(paths))
	}
	for i, path := range paths {
		if len(path) != 11 {
			t.Fatalf("path %d has %d values, want 11", i, len(path))
		}
		if path[0] != 100 {
			t.Errorf("path %d starts at %v, want 100", i, path[0])
		}
		for t2, v := range path {
			if v <= 0 {
				t.Errorf("path %d value %d is %v, GBM must stay positive", i, t2, v)
			}
		}
	}
}

func TestSimulatePaths_Reproducible(t *testing.T) {
	g := GBM{Initial: 100, Drift: 0.05, Volatility: 0.2}
	a, err := SimulatePaths(NewSource(7), g, 252, 100)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := SimulatePaths(NewSource(7), g, 252, 100)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("path %d step %d differs: %v vs %v", i, j, a[i][j], b[i][j])
			}
		}
	}

	// a different seed must draw a different stream
	c, _ := SimulatePaths(NewSource(8), g, 252, 100)
	if a[0][1] == c[0][1] {
		t.Error("different seeds produced the same first step")
	}
}

func TestSimulatePaths_ZeroVolatility(t *testing.T) {
	// sigma 0 collapses GBM to deterministic exponential drift
	g := GBM{Initial: 100, Drift: 0.05, Volatility: 0}
	paths, err := SimulatePaths(NewSource(1), g, 5, 2)
	if err != nil {
		t.Fatalf("SimulatePaths() failed: %v", err)
	}
	if paths[0][5] != paths[1][5] {
		t.Errorf("zero volatility paths differ: %v vs %v", paths[0][5], paths[1][5])
	}
	if paths[0][5] <= 100 {
		t.Errorf("terminal %v, want growth above 100 under positive drift", paths[0][5])
	}
}

func TestSimulatePaths_InvalidParameters(t *testing.T) {
	tests := []struct {
		name       string
		g          GBM
		horizon    int
		iterations int
	}{
		{"zero iterations", GBM{Initial: 100, Volatility: 0.2}, 10, 0},
		{"negative iterations", GBM{Initial: 100, Volatility: 0.2}, 10, -1},
		{"zero horizon", GBM{Initial: 100, Volatility: 0.2}, 0, 10},
		{"negative volatility", GBM{Initial: 100, Volatility: -0.2}, 10, 10},
		{"zero initial", GBM{Initial: 0, Volatility: 0.2}, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SimulatePaths(NewSource(1), tt.g, tt.horizon, tt.iterations); !errors.Is(err, ErrInvalidParameters) {
				t.Fatalf("error = %v, want ErrInvalidParameters", err)
			}
		})
	}
}

func TestProbabilityOfTarget(t *testing.T) {
	paths := [][]float64{
		{100, 110},
		{100, 95},
		{100, 120},
		{100, 110},
	}
	tests := []struct {
		target float64
		want   float64
	}{
		{90, 1},
		{110, 0.75}, // at or above
		{121, 0},
	}
	for _, tt := range tests {
		if got := ProbabilityOfTarget(paths, tt.target); got != tt.want {
			t.Errorf("ProbabilityOfTarget(%v) = %v, want %v", tt.target, got, tt.want)
		}
	}
	if got := ProbabilityOfTarget(nil, 100); got != 0 {
		t.Errorf("ProbabilityOfTarget(nil) = %v, want 0", got)
	}
}

func TestTerminals(t *testing.T) {
	paths := [][]float64{{100, 110}, {100, 95}, {}}
	got := Terminals(paths)
	if len(got) != 2 || got[0] != 110 || got[1] != 95 {
		t.Errorf("Terminals() = %v, want [110 95]", got)
	}
}

func TestSimulate_Report(t *testing.T) {
	g := GBM{Initial: 100, Drift: 0.05, Volatility: 0.2}
	report, err := Simulate("AAPL", g, 252, 1000, 42, 110)
	if err != nil {
		t.Fatalf("Simulate() failed: %v", err)
	}
	if report.Symbol != "AAPL" || report.Horizon != 252 || report.Iterations != 1000 || report.Seed != 42 {
		t.Errorf("report header = %+v", report)
	}
	if report.P5 >= report.Median || report.Median >= report.P95 {
		t.Errorf("quantiles not ordered: p5=%v median=%v p95=%v", report.P5, report.Median, report.P95)
	}
	if report.Probability < 0 || report.Probability > 1 {
		t.Errorf("probability = %v, want within [0,1]", report.Probability)
	}

	// same seed, same summary
	again, err := Simulate("AAPL", g, 252, 1000, 42, 110)
	if err != nil {
		t.Fatalf("second Simulate() failed: %v", err)
	}
	if report.Mean != again.Mean || report.Probability != again.Probability {
		t.Errorf("same seed gave different summaries: %v vs %v", report.Mean, again.Mean)
	}
}
