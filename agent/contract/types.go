package contract

import (
	"sort"
	"time"
)

// Query is the immutable input to one orchestration run.
type Query struct {
	Text           string    `json:"text"`
	ConversationID string    `json:"conversation_id,omitempty"`
	ReceivedAt     time.Time `json:"received_at"`
}

// ToolSelection names one tool the router picked, along with the arguments
// it extracted for it.
type ToolSelection struct {
	ToolID string         `json:"tool_id"`
	Args   map[string]any `json:"args,omitempty"`
}

// Plan is the routing decision for one query. It is produced once and never
// mutated afterwards.
type Plan struct {
	Tools          []ToolSelection `json:"tools,omitempty"`
	NeedsRetrieval bool            `json:"needs_retrieval"`
	RetrievalTopK  int             `json:"retrieval_top_k,omitempty"`
}

// ToolIDs returns the selected tool ids in plan order.
func (p Plan) ToolIDs() []string {
	ids := make([]string, 0, len(p.Tools))
	for _, sel := range p.Tools {
		ids = append(ids, sel.ToolID)
	}
	return ids
}

type InvocationStatus string

const (
	InvocationPending   InvocationStatus = "pending"
	InvocationSucceeded InvocationStatus = "succeeded"
	InvocationFailed    InvocationStatus = "failed"
)

// ToolInvocation records one attempt at one planned tool. Each planned tool
// is attempted at most once per query; a failed invocation never transitions
// back to succeeded.
type ToolInvocation struct {
	ToolID  string           `json:"tool_id"`
	Args    map[string]any   `json:"args,omitempty"`
	Status  InvocationStatus `json:"status"`
	Output  any              `json:"output,omitempty"`
	Err     *ToolError       `json:"error,omitempty"`
	Latency time.Duration    `json:"latency"`
}

// Passage is one retrieved grounding snippet.
type Passage struct {
	SourceID string            `json:"source_id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SortPassages orders passages by descending score with ties broken by
// ascending source id, so assembled prompts are reproducible.
func SortPassages(passages []Passage) {
	sort.SliceStable(passages, func(i, j int) bool {
		if passages[i].Score != passages[j].Score {
			return passages[i].Score > passages[j].Score
		}
		return passages[i].SourceID < passages[j].SourceID
	})
}

// DedupePassages drops duplicate source ids, keeping the highest-scoring
// passage per source, and returns the result in stable order.
func DedupePassages(passages []Passage) []Passage {
	best := make(map[string]Passage, len(passages))
	for _, p := range passages {
		if cur, ok := best[p.SourceID]; !ok || p.Score > cur.Score {
			best[p.SourceID] = p
		}
	}
	out := make([]Passage, 0, len(best))
	for _, p := range best {
		out = append(out, p)
	}
	SortPassages(out)
	return out
}

type ReasonCode string

const (
	ReasonOK                ReasonCode = "ok"
	ReasonInjectionDetected ReasonCode = "injection_detected"
	ReasonOffTopic          ReasonCode = "off_topic"
	ReasonDisallowed        ReasonCode = "disallowed_content"
)

// Verdict is the outcome of one guardrail check. It lives only for the
// duration of the request.
type Verdict struct {
	Allowed       bool       `json:"allowed"`
	ReasonCode    ReasonCode `json:"reason_code"`
	SanitizedText string     `json:"sanitized_text,omitempty"`
}

// ToolTraceEntry is the externally visible summary of one invocation.
type ToolTraceEntry struct {
	ToolID  string           `json:"tool_id"`
	Status  InvocationStatus `json:"status"`
	Error   string           `json:"error,omitempty"`
	Latency time.Duration    `json:"latency"`
}

// Response is the terminal artifact of one query. Immutable once returned.
type Response struct {
	Answer      string           `json:"answer"`
	Sources     []string         `json:"sources,omitempty"`
	ToolTrace   []ToolTraceEntry `json:"tool_trace"`
	Disclaimers []string         `json:"disclaimers,omitempty"`
	Blocked     bool             `json:"blocked"`
	Failed      bool             `json:"failed"`
	Reason      string           `json:"reason,omitempty"`
}

// PolicyMessage is the fixed answer text carried by every blocked Response.
const PolicyMessage = "This request cannot be processed because it conflicts with the assistant's usage policy."
