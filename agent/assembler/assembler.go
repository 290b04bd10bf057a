// Package assembler merges tool outputs, retrieved passages, and the
// conversation window into one grounded prompt. The prompt is built strictly
// from succeeded invocations and passage text; failed tools contribute only
// their reason code to the trace, never fabricated data. Output is
// deterministic for identical inputs.
package assembler

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	contractx "github.com/finsightai/finsight/agent/contract"
	statex "github.com/finsightai/finsight/agent/state"
	toolx "github.com/finsightai/finsight/agent/tool"
)

// Input carries everything gathered during the executing state.
type Input struct {
	Query       contractx.Query
	History     []statex.Turn
	Passages    []contractx.Passage
	Invocations []contractx.ToolInvocation
}

// Output is the grounded material handed to the reasoning backend and the
// output guardrail.
type Output struct {
	Prompt    string
	Sources   []string
	Grounding []string
	Trace     []contractx.ToolTraceEntry
}

// Tool sections are ordered structured-data first so that, when sources
// disagree on a figure, the model sees database results before external
// search snippets. Within a rank, ordering falls back to tool id.
var sectionRank = map[string]int{
	toolx.ToolMarketData: 0,
	toolx.ToolSentiment:  1,
	toolx.ToolCalculator: 2,
	toolx.ToolWebSearch:  3,
}

// Build assembles the grounded prompt. Passages must already be deduplicated
// and ordered by the retriever.
func Build(in Input) Output {
	var out Output
	out.Grounding = append(out.Grounding, in.Query.Text)

	var b strings.Builder
	fmt.Fprintf(&b, "User Question: %s\n", in.Query.Text)

	if len(in.History) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range in.History {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	succeeded := orderedSucceeded(in.Invocations)
	if len(succeeded) > 0 {
		b.WriteString("\nTool Results:\n")
		for _, inv := range succeeded {
			rendered := renderOutput(inv.Output)
			fmt.Fprintf(&b, "- %s: %s\n", inv.ToolID, rendered)
			out.Grounding = append(out.Grounding, rendered)
		}
	}

	if len(in.Passages) > 0 {
		b.WriteString("\nRelevant Context:\n")
		for i, p := range in.Passages {
			fmt.Fprintf(&b, "[%d] %s%s\n", i+1, p.Text, metadataSuffix(p.Metadata))
			out.Sources = append(out.Sources, p.SourceID)
			out.Grounding = append(out.Grounding, p.Text)
		}
	}

	b.WriteString("\nAnswer the question using only the tool results and context above.")
	out.Prompt = b.String()
	out.Trace = Trace(in.Invocations)
	return out
}

// Trace summarizes every invocation, succeeded or failed, ordered by tool id
// independent of completion order.
func Trace(invocations []contractx.ToolInvocation) []contractx.ToolTraceEntry {
	entries := make([]contractx.ToolTraceEntry, 0, len(invocations))
	for _, inv := range invocations {
		entry := contractx.ToolTraceEntry{
			ToolID:  inv.ToolID,
			Status:  inv.Status,
			Latency: inv.Latency,
		}
		if inv.Err != nil {
			entry.Error = inv.Err.Error()
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ToolID < entries[j].ToolID
	})
	return entries
}

func orderedSucceeded(invocations []contractx.ToolInvocation) []contractx.ToolInvocation {
	succeeded := make([]contractx.ToolInvocation, 0, len(invocations))
	for _, inv := range invocations {
		if inv.Status == contractx.InvocationSucceeded {
			succeeded = append(succeeded, inv)
		}
	}
	sort.SliceStable(succeeded, func(i, j int) bool {
		ri, rj := rank(succeeded[i].ToolID), rank(succeeded[j].ToolID)
		if ri != rj {
			return ri < rj
		}
		return succeeded[i].ToolID < succeeded[j].ToolID
	})
	return succeeded
}

func rank(toolID string) int {
	if r, ok := sectionRank[toolID]; ok {
		return r
	}
	return len(sectionRank)
}

func renderOutput(output any) string {
	switch v := output.(type) {
	case toolx.FormulaOutput:
		return fmt.Sprintf("%s = %s%s (inputs: %s)", v.Formula, formatFloat(v.Result), v.Unit, formatInputs(v.Inputs))
	case toolx.ExpressionOutput:
		return fmt.Sprintf("%s = %s", v.Expression, formatFloat(v.Result))
	case toolx.PriceOutput:
		return renderPrice(v)
	case toolx.IndicatorOutput:
		return renderIndicator(v)
	case toolx.SentimentOutput:
		return renderSentiment(v)
	case toolx.SearchOutput:
		return renderSearch(v)
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func renderPrice(v toolx.PriceOutput) string {
	if v.Latest != nil {
		return fmt.Sprintf("%s latest close %s on %s (volume %d)",
			v.Company, formatFloat(v.Latest.Close), v.Latest.Date.Format("2006-01-02"), v.Latest.Volume)
	}

	var parts []string
	for _, p := range v.Series {
		parts = append(parts, fmt.Sprintf("%s close=%s volume=%d", p.Date.Format("2006-01-02"), formatFloat(p.Close), p.Volume))
	}
	return fmt.Sprintf("%s price series: %s", v.Company, strings.Join(parts, "; "))
}

func renderIndicator(v toolx.IndicatorOutput) string {
	var parts []string
	for _, p := range v.Series {
		parts = append(parts, fmt.Sprintf("%s=%s (%s)", p.Date.Format("2006-01-02"), formatFloat(p.Value), p.Period))
	}
	return fmt.Sprintf("%s: %s", v.Indicator, strings.Join(parts, "; "))
}

func renderSentiment(v toolx.SentimentOutput) string {
	subject := v.Company
	if subject == "" {
		subject = v.Sector
	}
	if subject == "" {
		subject = "overall"
	}

	var parts []string
	for _, b := range v.Buckets {
		parts = append(parts, fmt.Sprintf("%s=%d", b.Sentiment, b.Count))
	}
	return fmt.Sprintf("sentiment for %s over %d articles: %s (average score %s)",
		subject, v.Articles, strings.Join(parts, ", "), formatFloat(v.Average))
}

func renderSearch(v toolx.SearchOutput) string {
	var parts []string
	for _, r := range v.Results {
		parts = append(parts, fmt.Sprintf("%s (%s)", r.Snippet, r.Source))
	}
	return fmt.Sprintf("web results for %q: %s", v.Query, strings.Join(parts, "; "))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInputs(inputs map[string]float64) string {
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatFloat(inputs[k])))
	}
	return strings.Join(parts, ", ")
}

func metadataSuffix(metadata map[string]string) string {
	if len(metadata) == 0 {
		return ""
	}

	var parts []string
	if v := metadata["company"]; v != "" {
		parts = append(parts, "Company: "+v)
	}
	if v := metadata["publish_date"]; v != "" {
		parts = append(parts, "Date: "+v)
	}
	if v := metadata["sector"]; v != "" {
		parts = append(parts, "Sector: "+v)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, " | ") + ")"
}
