package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	eventsReceivedTotal    atomic.Uint64
	jobsSubmittedTotal     atomic.Uint64
	submissionFailedTotal  atomic.Uint64
	projectNotFoundTotal   atomic.Uint64
	jobsSucceededTotal     atomic.Uint64
	jobsFailedTotal        atomic.Uint64
	jobsTimedOutTotal      atomic.Uint64
	tablesPersistedTotal   atomic.Uint64
	trackingReceivedTotal  atomic.Uint64
	trackingDroppedTotal   atomic.Uint64
	requestsThrottledTotal atomic.Uint64

	pollDuration = newHistogram([]float64{1000, 5000, 10000, 30000, 60000, 120000, 300000, 900000})
)

// IncEventsReceived counts storage notification records handed to the orchestrator.
func IncEventsReceived() { eventsReceivedTotal.Add(1) }

// IncJobsSubmitted counts accepted job submissions.
func IncJobsSubmitted() { jobsSubmittedTotal.Add(1) }

// IncSubmissionFailed counts submissions that did not yield a job handle.
func IncSubmissionFailed() { submissionFailedTotal.Add(1) }

// IncProjectNotFound counts events that found no project to submit against.
func IncProjectNotFound() { projectNotFoundTotal.Add(1) }

// IncJobsSucceeded counts jobs observed reaching success.
func IncJobsSucceeded() { jobsSucceededTotal.Add(1) }

// IncJobsFailed counts jobs observed reaching a failed state.
func IncJobsFailed() { jobsFailedTotal.Add(1) }

// IncJobsTimedOut counts poll runs that exhausted their bound.
func IncJobsTimedOut() { jobsTimedOutTotal.Add(1) }

// AddTablesPersisted counts extracted tables written to the result sink.
func AddTablesPersisted(n int) {
	if n > 0 {
		tablesPersistedTotal.Add(uint64(n))
	}
}

// IncTrackingReceived counts tracking messages picked up by a tracker.
func IncTrackingReceived() { trackingReceivedTotal.Add(1) }

// IncTrackingDropped counts tracking messages discarded as unrecoverable.
func IncTrackingDropped() { trackingDroppedTotal.Add(1) }

// IncRequestsThrottled counts API requests rejected by the rate limiter.
func IncRequestsThrottled() { requestsThrottledTotal.Add(1) }

// ObservePollDurationMs records how long a poll run lasted in milliseconds.
func ObservePollDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	pollDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "bda_events_received_total", "Storage notification records received", eventsReceivedTotal.Load())
	writeCounter(&buf, "bda_jobs_submitted_total", "Extraction jobs submitted", jobsSubmittedTotal.Load())
	writeCounter(&buf, "bda_submission_failed_total", "Extraction job submissions that failed", submissionFailedTotal.Load())
	writeCounter(&buf, "bda_project_not_found_total", "Events without a resolvable project", projectNotFoundTotal.Load())
	writeCounter(&buf, "bda_jobs_succeeded_total", "Extraction jobs observed succeeding", jobsSucceededTotal.Load())
	writeCounter(&buf, "bda_jobs_failed_total", "Extraction jobs observed failing", jobsFailedTotal.Load())
	writeCounter(&buf, "bda_jobs_timed_out_total", "Poll runs that hit their bound", jobsTimedOutTotal.Load())
	writeCounter(&buf, "bda_tables_persisted_total", "Extracted tables persisted", tablesPersistedTotal.Load())
	writeCounter(&buf, "bda_tracking_received_total", "Tracking messages received", trackingReceivedTotal.Load())
	writeCounter(&buf, "bda_tracking_dropped_total", "Tracking messages dropped as unrecoverable", trackingDroppedTotal.Load())
	writeCounter(&buf, "bda_http_requests_throttled_total", "API requests rejected by the rate limiter", requestsThrottledTotal.Load())
	writeHistogram(&buf, "bda_poll_duration_ms", "Poll run duration in milliseconds", pollDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket whose bound holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
