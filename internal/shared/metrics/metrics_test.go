package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected 3 observations, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts %v", snap.counts)
	}
}

func TestRenderIncludesTierCounters(t *testing.T) {
	before := TierCount("static")
	IncTier("static")
	if got := TierCount("static"); got != before+1 {
		t.Fatalf("expected static counter %d, got %d", before+1, got)
	}

	out := Render()
	for _, want := range []string{
		"# TYPE generation_tier_total counter",
		`generation_tier_total{tier="static"}`,
		"generation_duration_ms_bucket{le=\"+Inf\"}",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected render output to contain %q:\n%s", want, out)
		}
	}
}
