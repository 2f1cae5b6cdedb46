package metrics_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/metrics"
)

type syncedWriter struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (w *syncedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncedWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestReporter_WritesPeriodicSnapshots(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordMetric("HTTP Request", 10, true, "example.com")

	sink := &syncedWriter{}
	r := metrics.NewReporter(c, sink, 5*time.Millisecond)
	r.Start()
	defer r.Stop()

	deadline := time.After(time.Second)
	for {
		if strings.Contains(sink.String(), "HTTP Request") {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("reporter did not write a snapshot in time, got: %s", sink.String())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestReporter_StartTwice_IsNoop(t *testing.T) {
	c := metrics.NewCollector()
	r := metrics.NewReporter(c, &syncedWriter{}, time.Second)
	r.Start()
	r.Start()
	r.Stop()
}

func TestReporter_StopWithoutStart_IsNoop(t *testing.T) {
	c := metrics.NewCollector()
	r := metrics.NewReporter(c, &syncedWriter{}, time.Second)
	r.Stop()
}
