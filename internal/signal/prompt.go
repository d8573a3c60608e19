// Package signal builds market-analysis prompts and defensively parses the
// model's free-text answer into a well-formed result.
package signal

import (
	"fmt"
	"strings"

	"github.com/signalboard/signalboard/internal/domain"
	"github.com/signalboard/signalboard/internal/llm"
)

// systemPrompt is the fixed instruction block sent with every analysis. It
// forbids mirroring market prices and anchors the model's research on each
// outcome's resolution rule.
const systemPrompt = `You are an elite prediction market analyst. Your expertise lies in synthesizing market data, real-time information, and probabilistic reasoning to deliver actionable predictions.

Responsibilities:
1. MARKET DATA INTERPRETATION AND RESOLUTION RULES. Read and understand the RESOLUTION RULE for each outcome: it defines exactly how the market resolves and is your validation framework. Identify the data or metrics the rule requires (market cap, a specific date, a specific event) and research those directly. Each outcome may carry a different rule; treat them separately.
2. INDEPENDENT ANALYSIS. Market prices reflect what people are betting, not absolute truth. Conduct your own research and make your own assessment. Do NOT simply mirror market prices.
3. PROBABILISTIC REASONING. Assign confidence percentages to ALL possible outcomes; they must sum to 100%. Validate your predicted outcome against each resolution rule before committing.
4. COMPARATIVE ANALYSIS. Explain separately why each alternative outcome is less likely to satisfy its resolution criteria.`

// responseFormat spells out the JSON shape the parser expects back.
const responseFormat = `Format your response as JSON:
{
  "outcome": "name of the outcome you predict will win (for multi-outcome markets use the specific name, e.g. "NVIDIA", not "yes")",
  "confidence": number between 0 and 100 for that outcome,
  "outcomes": { "outcome name": confidence, ... covering ALL outcomes, summing to 100 },
  "reasoning": "detailed explanation for the selected outcome",
  "comparativeAnalysis": "detailed explanation of why other outcomes are less likely"
}

IMPORTANT:
- The "outcomes" object must contain confidence percentages for ALL outcomes and they must sum to 100% total.
- Your confidence percentages must reflect YOUR analysis, not just market prices.`

// noRule is the placeholder used when an outcome carries no resolution rule.
// The model is told not to invent resolution semantics in that case.
const noRule = "No resolution rule specified"

// BuildPrompt serializes the market into the analysis message sequence.
// A non-empty search context is appended as an extra system message so the
// model sees it after the market block, matching the call order of the
// analyze pipeline.
func BuildPrompt(m domain.NormalizedMarket, search domain.SearchContext) []llm.Message {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: marketBlock(m) + "\n\n" + responseFormat},
	}
	if !search.Empty() {
		messages = append(messages, llm.Message{
			Role:    llm.RoleSystem,
			Content: "Recent search results:\n" + FormatSearchContext(search),
		})
	}
	return messages
}

// marketBlock renders every known market field into the structured prompt
// section. Probabilities go through domain.FormatPercent so zero prices show
// as N/A instead of a misleading 0%.
func marketBlock(m domain.NormalizedMarket) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this prediction market with all available data:\n\n")
	fmt.Fprintf(&b, "Question: %s\n", m.Question)
	fmt.Fprintf(&b, "Description: %s\n", m.Description)
	fmt.Fprintf(&b, "Provider: %s\n", m.Provider)
	if m.ResolutionSource != "" {
		fmt.Fprintf(&b, "Main Resolution Source: %s\n", m.ResolutionSource)
	}

	b.WriteString("\nPRICING DATA:\n")
	if len(m.Outcomes) > 0 {
		fmt.Fprintf(&b, "- Yes Price: %s\n", domain.FormatPercent(m.Outcomes[0].YesPrice))
		fmt.Fprintf(&b, "- No Price: %s\n", domain.FormatPercent(m.Outcomes[0].NoPrice))
	}
	fmt.Fprintf(&b, "- Best Bid: %s\n", domain.FormatPercent(m.BestBid))
	fmt.Fprintf(&b, "- Best Ask: %s\n", domain.FormatPercent(m.BestAsk))
	fmt.Fprintf(&b, "- Last Trade Price: %s\n", domain.FormatPercent(m.LastTradePrice))
	fmt.Fprintf(&b, "- 24h Price Change: %s\n", formatChange(m.OneDayPriceChange))
	fmt.Fprintf(&b, "- 1h Price Change: %s\n", formatChange(m.OneHourPriceChange))

	b.WriteString("\nMARKET METRICS:\n")
	fmt.Fprintf(&b, "- Total Volume: %s\n", formatUSD(m.Volume))
	fmt.Fprintf(&b, "- 24h Volume: %s\n", formatUSDOrNA(m.Volume24hr))
	fmt.Fprintf(&b, "- Liquidity: %s\n", formatUSDOrNA(m.Liquidity))
	fmt.Fprintf(&b, "- Competitive Score: %s\n", domain.FormatPercent(m.CompetitiveScore))
	fmt.Fprintf(&b, "- End Date: %s\n", formatEndDate(m))
	fmt.Fprintf(&b, "- Tags: %s\n", formatTags(m.Tags))

	active := m.ActiveOutcomes()
	if len(active) > 0 {
		b.WriteString("\nOUTCOMES (all possible outcomes for this market):\n")
		for i, o := range active {
			rule := o.ResolutionRule
			if rule == "" {
				rule = noRule
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, o.Name)
			fmt.Fprintf(&b, "   RESOLUTION RULE (CRITICAL): %s\n", rule)
			fmt.Fprintf(&b, "   - Yes Price: %s | No Price: %s\n",
				domain.FormatPercent(o.YesPrice), domain.FormatPercent(o.NoPrice))
		}
	}

	return b.String()
}

// FormatSearchContext renders search results as a numbered list plus the
// synthesized answer, the shape the model is instructed to cite from.
func FormatSearchContext(s domain.SearchContext) string {
	var parts []string
	for i, r := range s.Results {
		parts = append(parts, fmt.Sprintf("%d. %s\n   URL: %s\n   Content: %s", i+1, r.Title, r.URL, r.Content))
	}
	out := strings.Join(parts, "\n\n")
	if s.Answer != "" {
		if out != "" {
			out += "\n\n"
		}
		out += "Direct Answer: " + s.Answer
	}
	return out
}

// formatChange renders a price change. Providers omit the field rather than
// report an exact zero, so 0 means absent and shows as N/A like the other
// optional metrics.
func formatChange(c float64) string {
	if c == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", c*100)
}

func formatUSD(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

func formatUSDOrNA(v float64) string {
	if v <= 0 {
		return "N/A"
	}
	return formatUSD(v)
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "None"
	}
	return strings.Join(tags, ", ")
}

func formatEndDate(m domain.NormalizedMarket) string {
	if m.EndDate == nil {
		return "Not specified"
	}
	return m.EndDate.Format("2006-01-02")
}
