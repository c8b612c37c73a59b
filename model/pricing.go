package model

import "github.com/spetersoncode/triage/llm"

// Pricing contains pricing per million tokens (USD).
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost estimates the USD cost of usage at these prices.
func (p Pricing) Cost(usage llm.Usage) float64 {
	return float64(usage.InputTokens)/1_000_000*p.InputPerMillion +
		float64(usage.OutputTokens)/1_000_000*p.OutputPerMillion
}
