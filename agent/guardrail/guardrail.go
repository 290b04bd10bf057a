// Package guardrail applies safety policy to raw queries before routing and
// to draft answers after generation. Both checks are pure functions of their
// inputs; the filter is fully configured at construction and holds no
// mutable state.
package guardrail

import (
	"regexp"
	"strings"

	contractx "github.com/finsightai/finsight/agent/contract"
)

// Disclaimer is appended deterministically to answers that touch investment
// topics. The post-check never rewrites factual content; it only appends
// this text or blocks the answer outright.
const Disclaimer = "Disclaimer: This analysis is for educational purposes only and is not financial advice. Consult a qualified advisor before investing."

type Config struct {
	// Leniency is the number of non-financial content words tolerated in a
	// query with zero financial-vocabulary hits before it is rejected as
	// off-topic. Short ambiguous queries pass through to the conservative
	// retrieval-only plan instead of being rejected here.
	Leniency int `envconfig:"LENIENCY" split_words:"true" default:"4"`
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+|any\s+)?(?:previous|prior)\s+(?:instructions|constraints|rules)`),
	regexp.MustCompile(`(?i)disregard\s+(?:your|the|all)\s+(?:instructions|rules|guidelines)`),
	regexp.MustCompile(`(?i)(?:reveal|show|print|repeat|leak)\b.{0,40}\b(?:system|hidden|initial)\s+prompt`),
	regexp.MustCompile(`(?i)act\s+as\s+if\s+you\s+are`),
	regexp.MustCompile(`(?i)pretend\s+to\s+be`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(?:a|an|in)\b`),
}

var prohibitedClaimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)guaranteed\s+returns?`),
	regexp.MustCompile(`(?i)risk[\s-]free\s+investment`),
	regexp.MustCompile(`(?i)can'?t\s+lose\s+money`),
}

var directivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)you\s+should\s+(?:buy|sell|invest\s+in|short)\b`),
	regexp.MustCompile(`(?i)definitely\s+(?:buy|sell|invest)\b`),
	regexp.MustCompile(`(?i)\b(?:buy|sell)\s+(?:now|immediately|today)\b`),
	regexp.MustCompile(`(?i)\bI\s+recommend\s+(?:buying|selling|shorting)\b`),
}

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

var financialVocabulary = map[string]struct{}{
	"stock": {}, "stocks": {}, "price": {}, "prices": {}, "market": {},
	"ratio": {}, "earnings": {}, "eps": {}, "dividend": {}, "portfolio": {},
	"invest": {}, "investment": {}, "investor": {}, "equity": {}, "bond": {},
	"sector": {}, "company": {}, "companies": {}, "revenue": {}, "profit": {},
	"margin": {}, "sentiment": {}, "inflation": {}, "gdp": {}, "economy": {},
	"economic": {}, "indicator": {}, "rate": {}, "rates": {}, "volume": {},
	"financial": {}, "finance": {}, "valuation": {}, "asset": {}, "assets": {},
	"debt": {}, "roe": {}, "pe": {}, "p/e": {}, "share": {}, "shares": {},
	"trading": {}, "fund": {}, "index": {}, "news": {}, "quarterly": {},
	"annual": {}, "calculate": {}, "growth": {}, "cash": {}, "income": {},
}

var investmentVocabulary = []string{"invest", "buy", "sell", "portfolio", "stock", "share"}

// Filter implements contract.Guardrail.
type Filter struct {
	leniency int
}

var _ contractx.Guardrail = (*Filter)(nil)

func New(cfg Config) *Filter {
	leniency := cfg.Leniency
	if leniency <= 0 {
		leniency = 4
	}
	return &Filter{leniency: leniency}
}

// CheckInput rejects prompt-injection attempts, prohibited finance claims,
// and clearly off-topic queries. Rejection is binary; no sanitization is
// attempted on input.
func (f *Filter) CheckInput(text string) contractx.Verdict {
	trimmed := strings.TrimSpace(text)

	for _, pattern := range injectionPatterns {
		if pattern.MatchString(trimmed) {
			return contractx.Verdict{Allowed: false, ReasonCode: contractx.ReasonInjectionDetected}
		}
	}

	for _, pattern := range prohibitedClaimPatterns {
		if pattern.MatchString(trimmed) {
			return contractx.Verdict{Allowed: false, ReasonCode: contractx.ReasonDisallowed}
		}
	}

	if f.isOffTopic(trimmed) {
		return contractx.Verdict{Allowed: false, ReasonCode: contractx.ReasonOffTopic}
	}

	return contractx.Verdict{Allowed: true, ReasonCode: contractx.ReasonOK, SanitizedText: trimmed}
}

// CheckOutput scans a draft answer against the grounding set. Explicit
// trade directives and numeric claims not traceable to grounding block the
// answer; otherwise the standard disclaimer is appended when investment
// vocabulary is present.
func (f *Filter) CheckOutput(text string, grounding []string) contractx.Verdict {
	trimmed := strings.TrimSpace(text)

	for _, pattern := range directivePatterns {
		if pattern.MatchString(trimmed) {
			return contractx.Verdict{Allowed: false, ReasonCode: contractx.ReasonDisallowed}
		}
	}

	for _, pattern := range prohibitedClaimPatterns {
		if pattern.MatchString(trimmed) {
			return contractx.Verdict{Allowed: false, ReasonCode: contractx.ReasonDisallowed}
		}
	}

	if !numericClaimsGrounded(trimmed, grounding) {
		return contractx.Verdict{Allowed: false, ReasonCode: contractx.ReasonDisallowed}
	}

	sanitized := trimmed
	if mentionsInvestments(trimmed) && !strings.Contains(strings.ToLower(trimmed), "disclaimer") {
		sanitized = trimmed + "\n\n" + Disclaimer
	}

	return contractx.Verdict{Allowed: true, ReasonCode: contractx.ReasonOK, SanitizedText: sanitized}
}

func (f *Filter) isOffTopic(text string) bool {
	words := strings.Fields(strings.ToLower(text))

	financialHits := 0
	contentWords := 0
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()$%")
		if len(w) < 3 {
			continue
		}
		contentWords++
		if _, ok := financialVocabulary[w]; ok {
			financialHits++
		}
	}

	return financialHits == 0 && contentWords > f.leniency
}

func mentionsInvestments(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range investmentVocabulary {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// numericClaimsGrounded verifies that every multi-digit number in the answer
// appears somewhere in the grounding set. Single digits are skipped; list
// markers and ordinals would make the check useless otherwise.
func numericClaimsGrounded(text string, grounding []string) bool {
	if len(grounding) == 0 {
		return true
	}

	grounded := make(map[string]struct{})
	for _, g := range grounding {
		for _, raw := range numberPattern.FindAllString(g, -1) {
			grounded[normalizeNumber(raw)] = struct{}{}
		}
	}

	for _, raw := range numberPattern.FindAllString(text, -1) {
		normalized := normalizeNumber(raw)
		if len(strings.ReplaceAll(normalized, ".", "")) < 2 {
			continue
		}
		if _, ok := grounded[normalized]; !ok {
			return false
		}
	}
	return true
}

func normalizeNumber(raw string) string {
	n := strings.ReplaceAll(raw, ",", "")
	if strings.Contains(n, ".") {
		n = strings.TrimRight(n, "0")
		n = strings.TrimSuffix(n, ".")
	}
	return n
}
