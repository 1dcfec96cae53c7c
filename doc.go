// Package sandbox implements a simulated trading ledger and its risk
// analytics. It is designed as a self-contained core: callers execute
// trades against an in-memory portfolio, query fresh summaries and risk
// reports, and persist the whole state as a single snapshot document.
//
// The core functionalities include:
//   - Ledger Primitives: Position and Transaction value types carrying the
//     cost-basis and realized-gain arithmetic of a single symbol.
//   - Portfolio Manager: trade validation and execution, cash accounting,
//     and an append-only, immutable transaction log that is the audit trail
//     for every cash and position change.
//   - Risk Calculator: pure functions over return series (volatility,
//     Sharpe ratio, max drawdown, Value-at-Risk, beta, tracking error).
//   - Monte Carlo Simulator: seedable Geometric Brownian Motion price
//     paths and scenario probabilities for what-if queries.
//   - Persistence: a JSON snapshot codec that verifies cash conservation
//     and cost-basis agreement on load.
//
// A Portfolio is single-threaded by design: callers must serialize access
// to one instance. The risk and simulation functions are stateless and
// safe for concurrent use on immutable inputs.
//
// This package serves as the foundational logic for the `sbx` command-line
// tool.
package sandbox
