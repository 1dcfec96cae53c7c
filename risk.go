package sandbox

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// TradingDays is the default annualization factor: trading days per year.
const TradingDays = 252

var (
	// ErrDivisionByZero is returned when a return is requested from a zero base value.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInsufficientData is returned when a series is too short for the metric.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrZeroVolatility is returned when a ratio over volatility is undefined.
	ErrZeroVolatility = errors.New("zero volatility")
	// ErrInvalidConfidence is returned when a confidence level is outside (0,1).
	ErrInvalidConfidence = errors.New("confidence level must be in (0,1)")
	// ErrMismatchedSeries is returned when two series that must be aligned differ in length.
	ErrMismatchedSeries = errors.New("mismatched series lengths")
)

// PortfolioReturn computes the simple return from begin to end.
func PortfolioReturn(begin, end float64) (float64, error) {
	if begin == 0 {
		return 0, fmt.Errorf("portfolio return from zero base: %w", ErrDivisionByZero)
	}
	return (end - begin) / begin, nil
}

// Returns derives the period-over-period returns of a value series.
// The result has len(values)-1 entries.
func Returns(values []float64) ([]float64, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("returns need at least 2 values, got %d: %w", len(values), ErrInsufficientData)
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		r, err := PortfolioReturn(values[i-1], values[i])
		if err != nil {
			return nil, fmt.Errorf("returns at index %d: %w", i, err)
		}
		returns = append(returns, r)
	}
	return returns, nil
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sample standard deviation, n-1 denominator.
func stddev(xs []float64) float64 {
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// Volatility computes the sample standard deviation of a return series,
// scaled by the square root of the annualization factor.
func Volatility(returns []float64, factor float64) (float64, error) {
	if len(returns) < 2 {
		return 0, fmt.Errorf("volatility needs at least 2 returns, got %d: %w", len(returns), ErrInsufficientData)
	}
	return stddev(returns) * math.Sqrt(factor), nil
}

// SharpeRatio computes the annualized Sharpe ratio of a return series.
// The annual risk-free rate is de-annualized to a per-period rate before
// computing excess returns. It returns ErrZeroVolatility when the return
// series has no dispersion.
func SharpeRatio(returns []float64, riskFreeAnnual, factor float64) (float64, error) {
	if len(returns) < 2 {
		return 0, fmt.Errorf("sharpe ratio needs at least 2 returns, got %d: %w", len(returns), ErrInsufficientData)
	}
	rf := riskFreeAnnual / factor
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - rf
	}
	sd := stddev(excess)
	if sd == 0 {
		return 0, fmt.Errorf("sharpe ratio: %w", ErrZeroVolatility)
	}
	return mean(excess) / sd * math.Sqrt(factor), nil
}

// Drawdown describes the worst peak-to-trough decline of a value series.
// RecoveryIndex is the first index at or after the trough where the series
// regains its peak value, or -1 when it never recovers.
type Drawdown struct {
	Drawdown      float64 // relative decline, (peak-trough)/peak
	PeakIndex     int
	TroughIndex   int
	RecoveryIndex int
}

// MaxDrawdown computes the maximum relative decline of a time-ordered value
// series. A single value has zero drawdown; an empty series is an error.
func MaxDrawdown(values []float64) (Drawdown, error) {
	if len(values) == 0 {
		return Drawdown{}, fmt.Errorf("max drawdown of empty series: %w", ErrInsufficientData)
	}
	dd := Drawdown{RecoveryIndex: -1}
	peak, peakIdx := values[0], 0
	for i, v := range values {
		if v > peak {
			peak, peakIdx = v, i
			continue
		}
		if peak == 0 {
			continue
		}
		if d := (peak - v) / peak; d > dd.Drawdown {
			dd.Drawdown = d
			dd.PeakIndex = peakIdx
			dd.TroughIndex = i
		}
	}
	// recovery: first value at or above the peak after the trough.
	if dd.Drawdown > 0 {
		peakValue := values[dd.PeakIndex]
		for i := dd.TroughIndex + 1; i < len(values); i++ {
			if values[i] >= peakValue {
				dd.RecoveryIndex = i
				break
			}
		}
	}
	return dd, nil
}

// percentile computes the empirical percentile of a sorted ascending series
// with linear interpolation between order statistics. p is in [0,1].
func percentile(sorted []float64, p float64) float64 {
	rank := float64(len(sorted)-1) * p
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ValueAtRisk computes the historical Value-at-Risk of a return series at
// the given confidence level: the return at the (1-confidence) empirical
// percentile, linearly interpolated. The input order is never mutated.
func ValueAtRisk(returns []float64, confidence float64) (float64, error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, fmt.Errorf("value at risk at %v: %w", confidence, ErrInvalidConfidence)
	}
	if len(returns) == 0 {
		return 0, fmt.Errorf("value at risk of empty series: %w", ErrInsufficientData)
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)
	return percentile(sorted, 1-confidence), nil
}

// ExpectedShortfall computes the average of the returns at or below the
// Value-at-Risk threshold at the given confidence level.
func ExpectedShortfall(returns []float64, confidence float64) (float64, error) {
	threshold, err := ValueAtRisk(returns, confidence)
	if err != nil {
		return 0, fmt.Errorf("expected shortfall: %w", err)
	}
	sum, n := 0.0, 0
	for _, r := range returns {
		if r <= threshold {
			sum += r
			n++
		}
	}
	if n == 0 {
		return threshold, nil
	}
	return sum / float64(n), nil
}

// Beta computes the sensitivity of a portfolio return series to a market
// return series: covariance over market variance. Both series must be
// aligned period by period.
func Beta(portfolio, market []float64) (float64, error) {
	if len(portfolio) != len(market) {
		return 0, fmt.Errorf("beta over %d vs %d returns: %w", len(portfolio), len(market), ErrMismatchedSeries)
	}
	if len(portfolio) < 2 {
		return 0, fmt.Errorf("beta needs at least 2 returns, got %d: %w", len(portfolio), ErrInsufficientData)
	}
	mp, mm := mean(portfolio), mean(market)
	cov, varm := 0.0, 0.0
	for i := range portfolio {
		cov += (portfolio[i] - mp) * (market[i] - mm)
		varm += (market[i] - mm) * (market[i] - mm)
	}
	if varm == 0 {
		return 0, fmt.Errorf("beta against flat market: %w", ErrZeroVolatility)
	}
	return cov / varm, nil
}

// TrackingError computes the annualized standard deviation of the return
// differences between a portfolio and its benchmark.
func TrackingError(portfolio, benchmark []float64, factor float64) (float64, error) {
	if len(portfolio) != len(benchmark) {
		return 0, fmt.Errorf("tracking error over %d vs %d returns: %w", len(portfolio), len(benchmark), ErrMismatchedSeries)
	}
	if len(portfolio) < 2 {
		return 0, fmt.Errorf("tracking error needs at least 2 returns, got %d: %w", len(portfolio), ErrInsufficientData)
	}
	diff := make([]float64, len(portfolio))
	for i := range portfolio {
		diff[i] = portfolio[i] - benchmark[i]
	}
	return stddev(diff) * math.Sqrt(factor), nil
}

// RiskReport aggregates the standard metrics over one total-value series.
// Sharpe is NaN when the series has zero volatility.
type RiskReport struct {
	Observations int
	TotalReturn  Percent
	Volatility   Percent // annualized
	Sharpe       float64
	MaxDrawdown  Drawdown
	VaR95        Percent // one-period, 95% confidence
	RiskFree     float64 // annual rate the Sharpe was computed against
}

// NewRiskReport computes a RiskReport from a time-ordered series of total
// portfolio values. At least 3 values are required so that volatility is
// defined over the derived returns.
func NewRiskReport(values []float64, riskFree float64) (*RiskReport, error) {
	if len(values) < 3 {
		return nil, fmt.Errorf("risk report needs at least 3 values, got %d: %w", len(values), ErrInsufficientData)
	}
	returns, err := Returns(values)
	if err != nil {
		return nil, fmt.Errorf("risk report: %w", err)
	}
	total, err := PortfolioReturn(values[0], values[len(values)-1])
	if err != nil {
		return nil, fmt.Errorf("risk report: %w", err)
	}
	vol, err := Volatility(returns, TradingDays)
	if err != nil {
		return nil, fmt.Errorf("risk report: %w", err)
	}
	sharpe, err := SharpeRatio(returns, riskFree, TradingDays)
	if err != nil {
		if !errors.Is(err, ErrZeroVolatility) {
			return nil, fmt.Errorf("risk report: %w", err)
		}
		sharpe = math.NaN()
	}
	dd, err := MaxDrawdown(values)
	if err != nil {
		return nil, fmt.Errorf("risk report: %w", err)
	}
	vaR, err := ValueAtRisk(returns, 0.95)
	if err != nil {
		return nil, fmt.Errorf("risk report: %w", err)
	}
	return &RiskReport{
		Observations: len(values),
		TotalReturn:  Percent(total * 100),
		Volatility:   Percent(vol * 100),
		Sharpe:       sharpe,
		MaxDrawdown:  dd,
		VaR95:        Percent(vaR * 100),
		RiskFree:     riskFree,
	}, nil
}
