package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/docs-crawler/pkg/hashutil"
	"github.com/rohmanhakim/docs-crawler/pkg/urlutil"
)

/*
Responsibilities
- Time named operations and accumulate per-operation, per-domain statistics
- Track process-wide activity counters
- Render a tabular performance report

Collector is engine-owned: one value is constructed at startup and passed
by reference to whatever components need it, rather than reached for as a
package-level singleton.
*/

const httpRequestOperation = "HTTP Request"

// Collector accumulates timing and counter metrics under one mutex;
// the four activity counters are atomic so readers never block writers.
type Collector struct {
	mu         sync.Mutex
	metrics    map[string]*OperationMetrics
	timers     map[string]time.Time
	activeURLs map[string]string
	startTime  time.Time

	activeThreads        atomic.Int64
	queueSize            atomic.Int64
	visitedCount         atomic.Int64
	totalBytesDownloaded atomic.Int64
}

// NewCollector returns a Collector with its clock started.
func NewCollector() *Collector {
	return &Collector{
		metrics:    make(map[string]*OperationMetrics),
		timers:     make(map[string]time.Time),
		activeURLs: make(map[string]string),
		startTime:  time.Now(),
	}
}

// StartTimer begins timing operation, optionally associating a URL so
// StopTimer can attribute the duration to that URL's domain.
func (c *Collector) StartTimer(operation string, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers[operation] = time.Now()
	if url != "" {
		c.activeURLs[operation] = url
	}
}

// StopTimer ends the timing window started by StartTimer and records the
// elapsed duration against operation.
func (c *Collector) StopTimer(operation string, success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	started, ok := c.timers[operation]
	if !ok {
		return
	}
	delete(c.timers, operation)

	durationMs := float64(time.Since(started).Microseconds()) / 1000.0

	domain := ""
	if url, ok := c.activeURLs[operation]; ok {
		domain = urlutil.ExtractDomain(url)
		delete(c.activeURLs, operation)
	}

	c.recordLocked(operation, durationMs, success, domain)
}

// RecordMetric directly records a duration for operation without going
// through Start/StopTimer.
func (c *Collector) RecordMetric(operation string, durationMs float64, success bool, domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordLocked(operation, durationMs, success, domain)
}

func (c *Collector) recordLocked(operation string, durationMs float64, success bool, domain string) {
	m, ok := c.metrics[operation]
	if !ok {
		m = newOperationMetrics()
		c.metrics[operation] = m
	}
	m.record(durationMs, success, domain)
}

// Reset clears all metrics, timers, and counters, and restarts the clock.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]*OperationMetrics)
	c.timers = make(map[string]time.Time)
	c.activeURLs = make(map[string]string)
	c.startTime = time.Now()

	c.activeThreads.Store(0)
	c.queueSize.Store(0)
	c.visitedCount.Store(0)
	c.totalBytesDownloaded.Store(0)
}

func (c *Collector) IncrementActiveThreads() { c.activeThreads.Add(1) }

func (c *Collector) DecrementActiveThreads() {
	for {
		cur := c.activeThreads.Load()
		if cur <= 0 {
			return
		}
		if c.activeThreads.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

func (c *Collector) SetQueueSize(n int)    { c.queueSize.Store(int64(n)) }
func (c *Collector) SetVisitedCount(n int) { c.visitedCount.Store(int64(n)) }
func (c *Collector) AddBytesDownloaded(n int64) {
	c.totalBytesDownloaded.Add(n)
}

// URLsPerSecond returns the visited-count throughput since the last Reset.
func (c *Collector) URLsPerSecond() float64 {
	elapsed := time.Since(c.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(c.visitedCount.Load()) / elapsed
}

// BandwidthKBps returns downloaded-bytes throughput in KB/s since the last
// Reset.
func (c *Collector) BandwidthKBps() float64 {
	elapsed := time.Since(c.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return (float64(c.totalBytesDownloaded.Load()) / 1024.0) / elapsed
}

// PrintReport writes the tabular performance summary described in §6.5 to w.
func (c *Collector) PrintReport(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintln(w, "===== Web Crawler Performance Report =====")
	fmt.Fprintf(w, "Runtime: %.2f seconds\n", time.Since(c.startTime).Seconds())
	fmt.Fprintf(w, "URLs processed: %d\n", c.visitedCount.Load())
	fmt.Fprintf(w, "Active threads: %d\n", c.activeThreads.Load())
	fmt.Fprintf(w, "Queue size: %d\n", c.queueSize.Load())
	fmt.Fprintf(w, "Processing rate: %.2f URLs/second\n", c.URLsPerSecond())
	fmt.Fprintf(w, "Bandwidth: %.2f KB/s\n", c.BandwidthKBps())
	fmt.Fprintf(w, "Report fingerprint: %s\n\n", c.fingerprintLocked())

	names := make([]string, 0, len(c.metrics))
	for name := range c.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%-24s %8s %10s %10s %10s %8s %10s\n",
		"Operation", "Count", "Avg ms", "Min ms", "Max ms", "Errors", "Success %")
	for _, name := range names {
		m := c.metrics[name]
		fmt.Fprintf(w, "%-24s %8d %10.2f %10.2f %10.2f %8d %9.1f%%\n",
			name, m.Count, m.AvgMs(), m.MinTimeMs, m.MaxTimeMs, m.ErrorCount, m.SuccessPct())
	}

	if http, ok := c.metrics[httpRequestOperation]; ok {
		fmt.Fprintln(w, "\nTop 5 Slowest Domains (HTTP Request):")
		type domainAvg struct {
			domain string
			avgMs  float64
		}
		domains := make([]domainAvg, 0, len(http.domainCounts))
		for d := range http.domainCounts {
			domains = append(domains, domainAvg{domain: d, avgMs: http.domainAvg(d)})
		}
		sort.Slice(domains, func(i, j int) bool { return domains[i].avgMs > domains[j].avgMs })
		if len(domains) > 5 {
			domains = domains[:5]
		}
		for i, d := range domains {
			fmt.Fprintf(w, "  %d. %-32s %8.2f ms avg\n", i+1, d.domain, d.avgMs)
		}
	}
}

// fingerprintLocked hashes the sorted operation-name set so two reports can
// be compared for "did the same set of operations run" without diffing the
// full text. Caller must hold c.mu.
func (c *Collector) fingerprintLocked() string {
	names := make([]string, 0, len(c.metrics))
	for name := range c.metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	joined := ""
	for _, n := range names {
		joined += n + "\n"
	}
	hash, err := hashutil.HashBytes([]byte(joined), hashutil.HashAlgoBLAKE3)
	if err != nil {
		return "unavailable"
	}
	return hash[:16]
}
