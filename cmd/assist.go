package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/quantfolio/sandbox/agent"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI analyst.
type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI analyst" }
func (*assistCmd) Usage() string {
	return `sbx assist [initial question]

  Starts an interactive session with the AI analyst. The analyst can read
  the portfolio, its risk report, and run simulations.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	load := agent.Loader{
		Portfolio: decodePortfolio,
		History:   decodeHistory,
	}
	a := agent.New(os.Stdout, os.Stdin, agent.NewMarkets(), agent.NewQuant(load))

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Analyst failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
