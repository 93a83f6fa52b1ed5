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

	var b strings.Builder
	snap := h.Snapshot()
	var cumulative uint64
	for i := range snap.buckets {
		cumulative += snap.counts[i]
		b.WriteString(formatFloat(snap.buckets[i]))
		b.WriteString("=")
		b.WriteString(formatFloat(float64(cumulative)))
		b.WriteString(";")
	}
	if got := b.String(); got != "10=1;100=2;" {
		t.Fatalf("cumulative buckets = %q", got)
	}
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("count=%d sum=%v", snap.count, snap.sum)
	}
}

func TestRenderIncludesCounters(t *testing.T) {
	IncJobsSubmitted()
	ObservePollDurationMs(1200)

	out := Render()
	for _, want := range []string{
		"# TYPE bda_jobs_submitted_total counter",
		"bda_poll_duration_ms_bucket{le=\"+Inf\"}",
		"bda_tracking_dropped_total",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}
