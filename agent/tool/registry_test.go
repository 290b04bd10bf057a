package tool

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
)

type stubTool struct {
	id string
}

func (s *stubTool) ID() string { return s.id }

func (s *stubTool) Info() *schema.ToolInfo {
	return &schema.ToolInfo{Name: s.id}
}

func (s *stubTool) Invoke(ctx context.Context, args map[string]any) (any, error) {
	return nil, nil
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(&stubTool{id: "beta"}, &stubTool{id: "alpha"})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "alpha" || ids[1] != "beta" {
		t.Fatalf("IDs() = %v, want sorted [alpha beta]", ids)
	}

	if _, ok := r.Get("alpha"); !ok {
		t.Fatal("Get(alpha) not found")
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("Get(missing) unexpectedly found")
	}

	infos := r.Infos()
	if len(infos) != 2 || infos[0].Name != "alpha" {
		t.Fatalf("unexpected infos: %+v", infos)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(&stubTool{id: "alpha"}, &stubTool{id: "alpha"}); err == nil {
		t.Fatal("expected error for duplicate ids")
	}
}

func TestNewRegistryRejectsNilAndEmpty(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(nil); err == nil {
		t.Fatal("expected error for nil tool")
	}
	if _, err := NewRegistry(&stubTool{id: "  "}); err == nil {
		t.Fatal("expected error for empty tool id")
	}
}

func TestRegistryIDsReturnsCopy(t *testing.T) {
	t.Parallel()

	r := MustNewRegistry(&stubTool{id: "alpha"})
	ids := r.IDs()
	ids[0] = "mutated"

	if got := r.IDs(); got[0] != "alpha" {
		t.Fatalf("IDs() = %v, internal slice mutated", got)
	}
}
