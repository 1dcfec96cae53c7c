package agent

import (
	"context"
	"fmt"

	"github.com/quantfolio/sandbox"
	"github.com/quantfolio/sandbox/renderer"
	"google.golang.org/genai"
)

// Loader gives the quant expert read access to the user's current state.
// The CLI wires these to its snapshot and history files.
type Loader struct {
	Portfolio func() (*sandbox.Portfolio, error)
	History   func() (*sandbox.History, error)
}

// NewQuant creates the expert in charge of the user's sandbox portfolio.
func NewQuant(load Loader) *Expert {
	lib := []Function{
		summaryFunc(load),
		transactionsFunc(load),
		riskFunc(load),
		simulateFunc(load),
	}
	return &Expert{
		Name: "Quant",
		Description: `This is the Quant. He has read access to the user's simulated portfolio:
		cash, positions, the transaction log, risk metrics, and a Monte Carlo simulator.
		Ask the Quant for any figure about the user's holdings, profit and loss, or risk.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a quantitative analyst in charge of the user's simulated portfolio.
				You know how to use the Tools to extract relevant information about the
				user's positions, cash, realized and unrealized profit and loss, the risk
				taken so far, and forward-looking price scenarios.
				You are part of a team of experts; yours is everything measurable about
				this portfolio. Pardon their approximative language and figure out what
				they meant.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

func okResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"output": output,
		},
	}
}

func summaryFunc(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Summary",
			Description: "Summary returns the portfolio's current cash, positions, total value and profit and loss.",
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown summary of the portfolio with one row per position.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			p, err := load.Portfolio()
			if err != nil {
				return errResponse(id, "Summary", err)
			}
			return okResponse(id, "Summary", renderer.SummaryMarkdown(sandbox.Today(), p.Summary()))
		},
	}
}

func transactionsFunc(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Transactions",
			Description: "Transactions returns the full trade log: every buy and sell with price, fees and realized profit.",
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown table of all transactions in execution order.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			p, err := load.Portfolio()
			if err != nil {
				return errResponse(id, "Transactions", err)
			}
			return okResponse(id, "Transactions", renderer.LogMarkdown(p.Transactions()))
		},
	}
}

func riskFunc(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Risk",
			Description: `Risk computes the portfolio's risk metrics from its daily value history:
			total return, annualized volatility, Sharpe ratio, max drawdown and 95% Value at Risk.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"riskFree": {
						Type:        genai.TypeNumber,
						Description: "Annual risk free rate used for the Sharpe ratio, e.g. 0.02. Defaults to 0.02.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown risk report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			h, err := load.History()
			if err != nil {
				return errResponse(id, "Risk", err)
			}
			riskFree := 0.02
			if v, ok := args["riskFree"].(float64); ok {
				riskFree = v
			}
			report, err := sandbox.NewRiskReport(h.TotalValues(), riskFree)
			if err != nil {
				return errResponse(id, "Risk", err)
			}
			return okResponse(id, "Risk", renderer.RenderRisk(renderer.NewRisk(report)))
		},
	}
}

func simulateFunc(load Loader) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Simulate",
			Description: `Simulate runs a Monte Carlo simulation of one held symbol's price,
			starting from its current price, and reports the terminal price distribution.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"symbol": {
						Type:        genai.TypeString,
						Description: "The symbol of a held position to simulate.",
					},
					"horizon": {
						Type:        genai.TypeInteger,
						Description: "Horizon in trading days. Defaults to 252 (one year).",
					},
					"drift": {
						Type:        genai.TypeNumber,
						Description: "Annual drift of the price process, e.g. 0.05. Defaults to 0.05.",
					},
					"volatility": {
						Type:        genai.TypeNumber,
						Description: "Annual volatility of the price process, e.g. 0.2. Defaults to 0.2.",
					},
					"target": {
						Type:        genai.TypeNumber,
						Description: "Optional target price; the report then includes the probability of reaching it.",
					},
				},
				Required: []string{"symbol"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown simulation report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			symbol, ok := args["symbol"].(string)
			if !ok {
				return errResponse(id, "Simulate", fmt.Errorf("argument 'symbol' is not a string but %T", args["symbol"]))
			}
			p, err := load.Portfolio()
			if err != nil {
				return errResponse(id, "Simulate", err)
			}
			pos, held := p.Position(symbol)
			if !held {
				return errResponse(id, "Simulate", fmt.Errorf("no position held in %q", symbol))
			}

			horizon := 252
			if v, ok := args["horizon"].(float64); ok && v > 0 {
				horizon = int(v)
			}
			drift := 0.05
			if v, ok := args["drift"].(float64); ok {
				drift = v
			}
			volatility := 0.2
			if v, ok := args["volatility"].(float64); ok {
				volatility = v
			}
			target := 0.0
			if v, ok := args["target"].(float64); ok {
				target = v
			}

			g := sandbox.GBM{Initial: pos.CurrentPrice.AsFloat(), Drift: drift, Volatility: volatility}
			report, err := sandbox.Simulate(symbol, g, horizon, 10000, 1, target)
			if err != nil {
				return errResponse(id, "Simulate", err)
			}
			return okResponse(id, "Simulate", renderer.RenderSimulation(renderer.NewSimulation(report)))
		},
	}
}
