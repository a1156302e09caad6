package widget

import (
	"encoding/json"
	"testing"
)

type stubRenderer struct {
	out string
}

func (s stubRenderer) Render(_ json.RawMessage, _ int) string { return s.out }

func TestResolveReturnsRegisteredRenderer(t *testing.T) {
	r := NewRegistry()
	r.Register("chart", func() Renderer { return stubRenderer{out: "chart body"} })
	r.Register("table", func() Renderer { return stubRenderer{out: "table body"} })

	ren, ok := r.Resolve("chart")
	if !ok {
		t.Fatal("chart should resolve")
	}
	if got := ren.Render(nil, 80); got != "chart body" {
		t.Fatalf("rendered = %q, want chart body", got)
	}
	if _, ok := r.Resolve("table"); !ok {
		t.Fatal("table should resolve")
	}
}

func TestResolveUnknownTagIsNotFoundNotError(t *testing.T) {
	r := NewRegistry()
	r.Register("chart", func() Renderer { return stubRenderer{} })

	ren, ok := r.Resolve("sparkline")
	if ok {
		t.Fatal("sparkline should not resolve")
	}
	if ren != nil {
		t.Fatalf("renderer = %v, want nil", ren)
	}
}

func TestResolveConstructsLazilyAndOnce(t *testing.T) {
	r := NewRegistry()
	built := 0
	r.Register("chart", func() Renderer {
		built++
		return stubRenderer{out: "chart"}
	})
	r.Register("table", func() Renderer {
		built++
		return stubRenderer{out: "table"}
	})

	if r.Loaded("chart") {
		t.Fatal("chart should not be constructed before first Resolve")
	}
	if built != 0 {
		t.Fatalf("built = %d before any Resolve, want 0", built)
	}

	r.Resolve("chart")
	r.Resolve("chart")
	r.Resolve("chart")
	if built != 1 {
		t.Fatalf("built = %d after resolving chart three times, want 1", built)
	}
	if !r.Loaded("chart") {
		t.Fatal("chart should be constructed after Resolve")
	}
	if r.Loaded("table") {
		t.Fatal("table was never resolved and should stay unconstructed")
	}
}

func TestRegisterCanonicalizesTags(t *testing.T) {
	r := NewRegistry()
	r.Register("  Chart ", func() Renderer { return stubRenderer{out: "c"} })

	if _, ok := r.Resolve("chart"); !ok {
		t.Fatal("canonicalized tag should resolve")
	}
	if _, ok := r.Resolve("CHART"); !ok {
		t.Fatal("lookup should be case-insensitive")
	}

	tags := r.Tags()
	if len(tags) != 1 || tags[0] != "chart" {
		t.Fatalf("tags = %v, want [chart]", tags)
	}
}

func TestRegisterReplacementDropsConstructedRenderer(t *testing.T) {
	r := NewRegistry()
	r.Register("note", func() Renderer { return stubRenderer{out: "old"} })
	r.Resolve("note")

	r.Register("note", func() Renderer { return stubRenderer{out: "new"} })
	if r.Loaded("note") {
		t.Fatal("replacement should drop the constructed renderer")
	}
	ren, _ := r.Resolve("note")
	if got := ren.Render(nil, 80); got != "new" {
		t.Fatalf("rendered = %q, want new", got)
	}
}
