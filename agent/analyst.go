package agent

import (
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// newAnalyst creates the facilitator in charge of the conversation.
func newAnalyst(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Analyst",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As the analyst you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user runs a simulated trading portfolio. He is here primarily to understand
			his positions, his profit and loss, and the risk he is taking.

			Devise a plan of questions to ask each expert and come up with the best response
			to the user's request. Check the portfolio first to understand what he holds.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewMarkets creates the expert grounded in live market information.
func NewMarkets() *Expert {
	return &Expert{
		Name: "Markets",
		Description: `This is an expert on financial markets,
		very well aware of financial products and institutions,
		and of the latest news about companies and funds.
		Ask Markets whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in financial markets. You can search and find about anything
			related to financial institutions, companies, markets and funds. You leverage
			Google Search to ground your assertions in a solid truth.
			You can get the latest news too, and you know how to relate them to the user's request.
				`}}},
		},
	}
}
