package prompt

import (
	"strings"
	"unicode/utf8"
)

// Approximate per-section token limits. LLMs run ~4 chars/token for English.
const (
	BudgetPersona      = 600 // tokens
	BudgetState        = 150
	BudgetConstraints  = 200
	BudgetSummary      = 400
	BudgetMemories     = 250
	BudgetShortContext = 800
	CharsPerToken      = 4
)

// Budget enforces per-block character limits. Never send unbounded history
// or raw logs.
type Budget struct {
	MaxPersona      int
	MaxState        int
	MaxConstraints  int
	MaxSummary      int
	MaxMemories     int
	MaxShortContext int
}

// DefaultBudget returns the default limits.
func DefaultBudget() Budget {
	return Budget{
		MaxPersona:      BudgetPersona * CharsPerToken,
		MaxState:        BudgetState * CharsPerToken,
		MaxConstraints:  BudgetConstraints * CharsPerToken,
		MaxSummary:      BudgetSummary * CharsPerToken,
		MaxMemories:     BudgetMemories * CharsPerToken,
		MaxShortContext: BudgetShortContext * CharsPerToken,
	}
}

// TrimToChars truncates s to maxChars, preferring a word boundary.
func TrimToChars(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	out := string(r[:maxChars])
	lastSpace := strings.LastIndex(out, " ")
	if lastSpace > maxChars/2 {
		return strings.TrimSpace(out[:lastSpace])
	}
	return strings.TrimSpace(out)
}

// EstimateTokens is a rough token estimate (runes / 4).
func EstimateTokens(s string) int {
	return utf8.RuneCountInString(s) / CharsPerToken
}
