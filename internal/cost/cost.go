// Package cost computes estimated processing cost from agent identity,
// elapsed time, and token usage. Everything here is pure and
// deterministic.
package cost

import "math"

// Per-agent base cost in USD per request. Coordination-heavy agents
// carry a higher base.
var baseCosts = map[string]float64{
	"claude":      0.015,
	"gpt4":        0.03,
	"copilot":     0.008,
	"multi_agent": 0.05,
}

// defaultBaseCost applies to agents missing from the table.
const defaultBaseCost = 0.015

const (
	// perTokenRate is USD per token consumed.
	perTokenRate = 0.000002
	// perSecondRate is the time penalty in USD per second.
	perSecondRate = 0.001
)

// Estimate returns the estimated cost in USD for one execution,
// rounded to two decimal places (half-up).
func Estimate(agent string, execSeconds int, tokensUsed int) float64 {
	base, ok := baseCosts[agent]
	if !ok {
		base = defaultBaseCost
	}
	amount := base + float64(tokensUsed)*perTokenRate + float64(execSeconds)*perSecondRate
	return round2(amount)
}

// Per-agent token multipliers for estimation when the executor does not
// report usage. Agents producing more detailed output consume more.
var tokenMultipliers = map[string]float64{
	"claude":      1.5,
	"gpt4":        1.8,
	"copilot":     1.0,
	"multi_agent": 2.5,
}

// defaultTokenMultiplier applies to agents missing from the table.
const defaultTokenMultiplier = 1.2

// EstimateTokens gives a rough token usage estimate for a goal when the
// executor reports none. Four tokens per character of goal text, scaled
// by the agent's output multiplier.
func EstimateTokens(goal string, agent string) int {
	mult, ok := tokenMultipliers[agent]
	if !ok {
		mult = defaultTokenMultiplier
	}
	return int(math.Round(float64(len(goal)*4) * mult))
}

// round2 rounds to two decimal places, half-up.
func round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
