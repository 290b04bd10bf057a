// Package tool holds the closed set of financial tools behind one uniform
// invocation contract. Adding a tool means adding an implementation and
// registering it; tools share no mutable state with each other.
package tool

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/finsightai/finsight/agent/contract"
)

const (
	ToolCalculator = "calculator"
	ToolMarketData = "market_data"
	ToolSentiment  = "sentiment"
	ToolWebSearch  = "web_search"
)

// Tool is the uniform capability contract. Invoke either returns a result or
// fails with a *contract.ToolError; it must never panic or retry internally.
type Tool interface {
	ID() string
	Info() *schema.ToolInfo
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Registry is the read-only lookup of registered tools, shared across
// concurrent queries.
type Registry struct {
	tools map[string]Tool
	ids   []string
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t == nil {
			return nil, fmt.Errorf("nil tool")
		}
		id := strings.TrimSpace(t.ID())
		if id == "" {
			return nil, fmt.Errorf("tool with empty id")
		}
		if _, exists := r.tools[id]; exists {
			return nil, fmt.Errorf("duplicate tool id=%s", id)
		}
		r.tools[id] = t
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)
	return r, nil
}

func MustNewRegistry(tools ...Tool) *Registry {
	r, err := NewRegistry(tools...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Get(id string) (Tool, bool) {
	t, ok := r.tools[id]
	return t, ok
}

// IDs returns registered tool ids in ascending order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.ids))
	for _, id := range r.ids {
		infos = append(infos, r.tools[id].Info())
	}
	return infos
}

func floatArg(args map[string]any, key string) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return 0, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%s is required", key)
	}

	var v float64
	switch t := raw.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int64:
		v = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%s must be numeric: %v", key, err)
		}
		v = parsed
	default:
		return 0, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%s must be numeric, got %T", key, raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%s must be finite", key)
	}
	return v, nil
}

func stringArg(args map[string]any, key string) string {
	raw, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func dateArg(args map[string]any, key string) (time.Time, error) {
	s := stringArg(args, key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%s must be YYYY-MM-DD: %v", key, err)
	}
	return t, nil
}
