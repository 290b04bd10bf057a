// Package router decides which tools a query needs and whether to consult the
// vector index. Classification is heuristic first: a compact regex taxonomy
// covers the common question shapes, and only queries the heuristics cannot
// place are escalated to the LLM classifier. Routing never fails past this
// boundary; anything unclassifiable degrades to a retrieval-only plan.
package router

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	contractx "github.com/finsightai/finsight/agent/contract"
	toolx "github.com/finsightai/finsight/agent/tool"
)

type Config struct {
	DefaultTopK   int           `envconfig:"DEFAULT_TOP_K" default:"5"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	CacheInterval time.Duration `envconfig:"CACHE_INTERVAL" default:"30m"`
}

// Classification is the category assignment for one query, produced either by
// the heuristics or by the LLM classifier.
type Classification struct {
	Categories []string `json:"categories"`
	Company    string   `json:"company,omitempty"`
	Sector     string   `json:"sector,omitempty"`
	Indicator  string   `json:"indicator,omitempty"`
}

const (
	categoryCalculation      = "calculation"
	categoryStructuredLookup = "structured_lookup"
	categorySentiment        = "sentiment"
	categoryWebLookup        = "web_lookup"
	categoryNarrative        = "narrative"
)

// Classifier resolves queries the regex taxonomy cannot place.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Engine implements contract.Router. Identical queries over the same tool set
// reuse the cached plan.
type Engine struct {
	cfg        Config
	classifier Classifier
	cache      *gocache.Cache
}

var _ contractx.Router = (*Engine)(nil)

// New builds an Engine. classifier may be nil; escalation is then skipped and
// ambiguous queries route straight to retrieval.
func New(cfg Config, classifier Classifier) *Engine {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheInterval <= 0 {
		cfg.CacheInterval = 30 * time.Minute
	}
	return &Engine{
		cfg:        cfg,
		classifier: classifier,
		cache:      gocache.New(cfg.CacheTTL, cfg.CacheInterval),
	}
}

// Route classifies the query and maps categories onto the available tools.
// The returned plan orders tools canonically so downstream prompts are
// reproducible regardless of match order.
func (e *Engine) Route(ctx context.Context, q contractx.Query, available []string) contractx.Plan {
	key := planKey(q.Text, available)
	if cached, ok := e.cache.Get(key); ok {
		if plan, ok := cached.(contractx.Plan); ok {
			return plan
		}
	}

	cls, escalated := e.classify(ctx, q.Text)
	plan := e.buildPlan(q.Text, cls, available)
	if escalated {
		log.Debug().Str("conversation_id", q.ConversationID).
			Strs("categories", cls.Categories).
			Msg("router escalated query to classifier")
	}

	e.cache.SetDefault(key, plan)
	return plan
}

func (e *Engine) classify(ctx context.Context, text string) (Classification, bool) {
	cls := classifyHeuristically(text)
	if len(cls.Categories) > 0 {
		return cls, false
	}
	if e.classifier == nil {
		return Classification{Categories: []string{categoryNarrative}}, false
	}

	escalated, err := e.classifier.Classify(ctx, text)
	if err != nil || len(escalated.Categories) == 0 {
		if err != nil {
			log.Warn().Err(err).Msg("classifier failed, routing to retrieval only")
		}
		return Classification{Categories: []string{categoryNarrative}}, true
	}
	return escalated, true
}

func (e *Engine) buildPlan(text string, cls Classification, available []string) contractx.Plan {
	allowed := make(map[string]bool, len(available))
	for _, id := range available {
		allowed[id] = true
	}

	selections := make(map[string]contractx.ToolSelection)
	needsRetrieval := false

	for _, category := range cls.Categories {
		switch category {
		case categoryCalculation:
			if allowed[toolx.ToolCalculator] {
				if args, ok := calculatorArgs(text); ok {
					selections[toolx.ToolCalculator] = contractx.ToolSelection{ToolID: toolx.ToolCalculator, Args: args}
					continue
				}
			}
			// A calculation we cannot extract arguments for still needs
			// grounding material to answer from.
			needsRetrieval = true
		case categoryStructuredLookup:
			if allowed[toolx.ToolMarketData] {
				selections[toolx.ToolMarketData] = contractx.ToolSelection{
					ToolID: toolx.ToolMarketData,
					Args:   marketDataArgs(text, cls),
				}
			} else {
				needsRetrieval = true
			}
		case categorySentiment:
			if allowed[toolx.ToolSentiment] {
				selections[toolx.ToolSentiment] = contractx.ToolSelection{
					ToolID: toolx.ToolSentiment,
					Args:   sentimentArgs(text, cls),
				}
			}
			needsRetrieval = true
		case categoryWebLookup:
			if allowed[toolx.ToolWebSearch] {
				selections[toolx.ToolWebSearch] = contractx.ToolSelection{
					ToolID: toolx.ToolWebSearch,
					Args:   map[string]any{"query": strings.TrimSpace(text)},
				}
			}
			needsRetrieval = true
		default:
			needsRetrieval = true
		}
	}

	if len(selections) == 0 {
		needsRetrieval = true
	}

	plan := contractx.Plan{NeedsRetrieval: needsRetrieval}
	for _, id := range canonicalToolOrder {
		if sel, ok := selections[id]; ok {
			plan.Tools = append(plan.Tools, sel)
		}
	}
	if plan.NeedsRetrieval {
		plan.RetrievalTopK = e.cfg.DefaultTopK
	}
	return plan
}

// canonicalToolOrder fixes plan ordering: structured data sources first, web
// search last.
var canonicalToolOrder = []string{
	toolx.ToolMarketData,
	toolx.ToolSentiment,
	toolx.ToolCalculator,
	toolx.ToolWebSearch,
}

var (
	calculationPattern = regexp.MustCompile(`(?i)\b(calculate|compute|p/?e\s*ratio|price.to.earnings|return on equity|\broe\b|current ratio|debt.to.equity|profit margin|percentage change)\b`)
	expressionHint     = regexp.MustCompile(`\d+(?:\.\d+)?\s*[-+*/%^]\s*\d`)
	lookupPattern      = regexp.MustCompile(`(?i)\b(stock price|share price|closing price|close[d]? at|trading volume|open price|high price|low price|gdp|inflation|unemployment|interest rate)\b`)
	sentimentPattern   = regexp.MustCompile(`(?i)\b(sentiment|news coverage|positive or negative|tone of the news|how is the news)\b`)
	webPattern         = regexp.MustCompile(`(?i)\b(latest|current|today|right now|this week|recent news|breaking)\b`)
	narrativePattern   = regexp.MustCompile(`(?i)\b(why|explain|summari[sz]e|overview|outlook|compare|what happened|tell me about)\b`)
)

func classifyHeuristically(text string) Classification {
	var cls Classification
	lower := strings.ToLower(text)

	isCalculation := calculationPattern.MatchString(text) || expressionHint.MatchString(stripDates(text))
	selfContained := false
	if isCalculation {
		cls.Categories = append(cls.Categories, categoryCalculation)
		_, selfContained = calculatorArgs(text)
	}
	// A calculation that quotes its own operands is not also a data lookup,
	// even when it mentions prices.
	if lookupPattern.MatchString(text) && !selfContained {
		cls.Categories = append(cls.Categories, categoryStructuredLookup)
	}
	if sentimentPattern.MatchString(text) {
		cls.Categories = append(cls.Categories, categorySentiment)
	}
	if webPattern.MatchString(text) && !calculationPattern.MatchString(text) {
		cls.Categories = append(cls.Categories, categoryWebLookup)
	}
	if len(cls.Categories) == 0 && narrativePattern.MatchString(text) {
		cls.Categories = append(cls.Categories, categoryNarrative)
	}

	cls.Company = extractCompany(text)
	cls.Indicator = extractIndicator(lower)
	cls.Sector = extractSector(lower)
	return cls
}

var knownCompanies = []string{
	"Apple", "Microsoft", "Amazon", "Alphabet", "Google", "Tesla",
	"Nvidia", "Meta", "Netflix", "Intel", "JPMorgan", "Goldman Sachs",
	"ExxonMobil", "Pfizer", "Walmart",
}

func extractCompany(text string) string {
	lower := strings.ToLower(text)
	for _, company := range knownCompanies {
		if strings.Contains(lower, strings.ToLower(company)) {
			return company
		}
	}
	return ""
}

var indicatorAliases = map[string]string{
	"gdp":           "GDP",
	"inflation":     "Inflation Rate",
	"unemployment":  "Unemployment Rate",
	"interest rate": "Interest Rate",
}

func extractIndicator(lower string) string {
	for alias, canonical := range indicatorAliases {
		if strings.Contains(lower, alias) {
			return canonical
		}
	}
	return ""
}

var knownSectors = []string{
	"technology", "healthcare", "energy", "finance", "retail", "automotive",
}

func extractSector(lower string) string {
	for _, sector := range knownSectors {
		if strings.Contains(lower, sector) {
			return sector
		}
	}
	return ""
}

var (
	peRatioPattern   = regexp.MustCompile(`(?i)p/?e(?:\s*ratio)?|price.to.earnings`)
	roePattern       = regexp.MustCompile(`(?i)return on equity|\broe\b`)
	pricePattern     = regexp.MustCompile(`(?i)(?:stock\s+)?price\s+(?:of\s+|is\s+)?\$?(\d+(?:\.\d+)?)`)
	epsPattern       = regexp.MustCompile(`(?i)eps\s+(?:of\s+|is\s+)?\$?(\d+(?:\.\d+)?)`)
	netIncomePattern = regexp.MustCompile(`(?i)net income\s+(?:of\s+|is\s+)?\$?(\d+(?:\.\d+)?)`)
	equityPattern    = regexp.MustCompile(`(?i)(?:shareholders?'?\s+)?equity\s+(?:of\s+|is\s+)?\$?(\d+(?:\.\d+)?)`)
	datePattern      = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

// calculatorArgs extracts a complete formula invocation from the query text.
// It reports false when no known formula with all of its operands is present,
// unless the query carries a raw arithmetic expression.
func calculatorArgs(text string) (map[string]any, bool) {
	if peRatioPattern.MatchString(text) {
		price, okPrice := firstNumber(pricePattern, text)
		eps, okEPS := firstNumber(epsPattern, text)
		if okPrice && okEPS {
			return map[string]any{"formula": "pe_ratio", "price": price, "eps": eps}, true
		}
	}
	if roePattern.MatchString(text) {
		netIncome, okIncome := firstNumber(netIncomePattern, text)
		equity, okEquity := firstNumber(equityPattern, text)
		if okIncome && okEquity {
			return map[string]any{"formula": "roe", "net_income": netIncome, "equity": equity}, true
		}
	}
	if expr := extractExpression(text); expr != "" {
		return map[string]any{"expression": expr}, true
	}
	return nil, false
}

var rawExpressionPattern = regexp.MustCompile(`\d+(?:\.\d+)?(?:\s*[-+*/%^]\s*\(?\s*\d+(?:\.\d+)?\s*\)?)+`)

func extractExpression(text string) string {
	return strings.TrimSpace(rawExpressionPattern.FindString(stripDates(text)))
}

// stripDates blanks ISO dates so their hyphens are not mistaken for
// subtraction when sniffing arithmetic.
func stripDates(text string) string {
	return datePattern.ReplaceAllString(text, " ")
}

func firstNumber(pattern *regexp.Regexp, text string) (float64, bool) {
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func marketDataArgs(text string, cls Classification) map[string]any {
	args := make(map[string]any)
	if cls.Company != "" {
		args["company"] = cls.Company
	}
	if cls.Indicator != "" {
		args["indicator"] = cls.Indicator
	}
	dates := datePattern.FindAllString(text, 2)
	if len(dates) > 0 {
		args["from"] = dates[0]
	}
	if len(dates) > 1 {
		args["to"] = dates[1]
	}
	return args
}

func sentimentArgs(text string, cls Classification) map[string]any {
	args := make(map[string]any)
	if cls.Company != "" {
		args["company"] = cls.Company
	}
	if cls.Sector != "" {
		args["sector"] = cls.Sector
	}
	dates := datePattern.FindAllString(text, 2)
	if len(dates) > 0 {
		args["from"] = dates[0]
	}
	if len(dates) > 1 {
		args["to"] = dates[1]
	}
	return args
}

func planKey(text string, available []string) string {
	ids := append([]string(nil), available...)
	sort.Strings(ids)
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return normalized + "|" + strings.Join(ids, ",")
}
