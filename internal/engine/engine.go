// Package engine implements the crawl engine described in §4.G: the
// component that composes every other package into a running crawl. It
// owns the worker pool, the frontier, the visited set, and the admission
// choke-point that decides whether a discovered URL may ever reach the
// frontier.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rohmanhakim/docs-crawler/internal/config"
	"github.com/rohmanhakim/docs-crawler/internal/extractor"
	"github.com/rohmanhakim/docs-crawler/internal/fetcher"
	"github.com/rohmanhakim/docs-crawler/internal/frontier"
	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/internal/metrics"
	"github.com/rohmanhakim/docs-crawler/internal/robots"
	"github.com/rohmanhakim/docs-crawler/internal/storage"
	"github.com/rohmanhakim/docs-crawler/pkg/failure"
	"github.com/rohmanhakim/docs-crawler/pkg/retry"
	"github.com/rohmanhakim/docs-crawler/pkg/timeutil"
	"github.com/rohmanhakim/docs-crawler/pkg/urlutil"
)

const reportFilename = "performance_report.txt"

// RobotsPolicy is the subset of *robots.CachedRobot the engine needs.
// Declaring it here, rather than depending on the concrete type, lets
// tests substitute a fake policy without touching the robots package.
type RobotsPolicy interface {
	IsAllowed(ctx context.Context, agent, rawURL string) bool
	GetCrawlDelay(ctx context.Context, agent, domain string) time.Duration
}

// Extractor is the subset of *extractor.DomExtractor the engine needs.
type Extractor interface {
	Extract(sourceUrl url.URL, htmlByte []byte) (extractor.ExtractionResult, failure.ClassifiedError)
}

// Pacer is the subset of *limiter.DomainClock the engine needs.
type Pacer interface {
	Wait(domain string, delay time.Duration)
}

// Scorer is the subset of *frontier.Prioritizer the engine needs.
type Scorer interface {
	Score(rawURL string, depth int) float64
}

// Dependencies are the components the engine composes. None of them are
// constructed by the engine itself, so callers (cmd/crawler) can swap in
// fakes for testing without the engine knowing the difference.
type Dependencies struct {
	Fetcher      fetcher.Fetcher
	Extractor    Extractor
	Robot        RobotsPolicy
	Store        storage.Store
	Prioritizer  Scorer
	DomainClock  Pacer
	Collector    *metrics.Collector
	MetadataSink metadata.MetadataSink
}

// Summary is the terminal crawl result, reported to the metadata sink's
// CrawlFinalizer exactly once.
type Summary struct {
	TotalPages  int
	TotalErrors int
	Duration    time.Duration
}

// Engine is the sole control-plane authority of a crawl.
//
// Determinism and admission guarantees:
//   - Engine is the only component allowed to decide whether a URL may
//     enter the frontier.
//   - A discovered link passes admitLink's cap, scope, visited-set and
//     keyword checks before it is pushed. Robots.txt permission is checked
//     only after a URL is popped, in process. No depth limit is applied.
//   - No other component enqueues, reorders, or evicts frontier entries.
//
// Mutex discipline follows the documented order queue < task < domain <
// robots-cache: no code path acquires two of these out of order. The
// robots cache holds its mutex while it fetches robots.txt for a domain it
// has not seen yet, and the domain clock sleeps while holding its own.
type Engine struct {
	cfg config.Config
	dep Dependencies

	retryParam retry.RetryParam

	queueMu     sync.Mutex
	queue       *frontier.PriorityQueue
	visited     frontier.Set[string]
	depths      map[string]int
	seedDomains frontier.Set[string]

	taskMu      sync.Mutex
	taskCond    *sync.Cond
	activeTasks int

	tasks chan frontier.UrlItem
	wg    sync.WaitGroup

	ctx context.Context

	errMu  sync.Mutex
	errors int
}

// NewEngine wires cfg and dep into a ready-to-run Engine with an empty
// frontier. Call Load to seed it before Run.
func NewEngine(cfg config.Config, dep Dependencies) *Engine {
	e := &Engine{
		cfg:         cfg,
		dep:         dep,
		retryParam:  retryParamFromConfig(cfg),
		queue:       frontier.NewPriorityQueue(),
		visited:     frontier.NewSet[string](),
		depths:      make(map[string]int),
		seedDomains: frontier.NewSet[string](),
	}
	e.taskCond = sync.NewCond(&e.taskMu)
	return e
}

// retryParamFromConfig drives pkg/retry with a fixed delay rather than
// exponential backoff: §4.F requires fixed-delay retry, which a backoff
// multiplier of 1.0 produces without a second retry implementation.
func retryParamFromConfig(cfg config.Config) retry.RetryParam {
	return retry.NewRetryParam(
		cfg.RetryDelay(),
		0,
		0,
		cfg.MaxRetries(),
		timeutil.NewBackoffParam(cfg.RetryDelay(), 1.0, cfg.RetryDelay()),
	)
}

// Load is the Loading state of §4.G: every seed not yet visited is pushed
// as given at SeedPriority/depth 0, and recorded into the visited set and
// the seed-domain set that bounds the entire crawl's scope. Load does not
// normalize seeds; LoadSeeds does.
func (e *Engine) Load(seeds []string) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	for _, seed := range seeds {
		if e.visited.Contains(seed) {
			continue
		}
		e.visited.Add(seed)
		e.depths[seed] = 0
		if domain := urlutil.ExtractDomain(seed); domain != "" {
			e.seedDomains.Add(domain)
		}
		e.queue.Push(frontier.UrlItem{URL: seed, Depth: 0, Priority: frontier.SeedPriority})
	}
	e.dep.Collector.SetVisitedCount(e.visited.Size())
	e.dep.Collector.SetQueueSize(e.queue.Len())
}

// Run executes the Draining and Shutdown states of §4.G until the visited
// cap is reached or the frontier is exhausted, then writes the final
// report and closes the store.
func (e *Engine) Run(ctx context.Context) Summary {
	e.ctx = ctx
	start := time.Now()

	e.startWorkers(e.cfg.ThreadCount())

	reporter := metrics.NewReporter(e.dep.Collector, os.Stdout, metrics.DefaultReportInterval)
	reporter.Start()

	e.drain()

	reporter.Stop()

	close(e.tasks)
	e.wg.Wait()

	summary := Summary{
		TotalPages:  e.visited.Size(),
		TotalErrors: e.readErrors(),
		Duration:    time.Since(start),
	}

	e.dep.Collector.PrintReport(os.Stdout)
	e.writeReportFile()
	if closeErr := e.dep.Store.Close(); closeErr != nil {
		e.dep.MetadataSink.RecordError(
			time.Now(),
			"engine",
			"Engine.Run",
			metadata.CauseStorageFailure,
			closeErr.Error(),
			nil,
		)
	}

	return summary
}

// drain runs rounds of "submit everything currently poppable, then wait
// for every outstanding task to finish" until the frontier is empty or
// the visited cap is hit — both checked only once active_tasks is back
// to zero, per §4.G's termination guarantee.
func (e *Engine) drain() {
	for {
		e.queueMu.Lock()
		for e.queue.Len() > 0 && e.visited.Size() < e.cfg.MaxLinks() {
			item, ok := e.queue.Pop()
			if !ok {
				break
			}
			e.dep.Collector.SetQueueSize(e.queue.Len())
			e.beginTask()
			e.queueMu.Unlock()
			e.tasks <- item
			e.queueMu.Lock()
		}
		e.queueMu.Unlock()

		e.waitForDrain()

		e.queueMu.Lock()
		frontierEmpty := e.queue.Len() == 0
		atCap := e.visited.Size() >= e.cfg.MaxLinks()
		e.queueMu.Unlock()

		if atCap || frontierEmpty {
			return
		}
	}
}

func (e *Engine) startWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.tasks = make(chan frontier.UrlItem)
	e.wg.Add(n)
	for i := 0; i < n; i++ {
		go e.worker()
	}
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for item := range e.tasks {
		e.runTask(item)
		e.taskDone()
	}
}

// runTask guards a single process() call: a worker panic abandons the
// task but must not leak active_tasks, per §7.
func (e *Engine) runTask(item frontier.UrlItem) {
	defer func() {
		if r := recover(); r != nil {
			e.recordError()
			e.dep.MetadataSink.RecordError(
				time.Now(),
				"engine",
				"Engine.process",
				metadata.CauseInvariantViolation,
				fmt.Sprintf("worker panic: %v", r),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, item.URL)},
			)
		}
	}()
	e.process(e.ctx, item)
}

// process implements the per-item worker logic of §4.G verbatim.
func (e *Engine) process(ctx context.Context, item frontier.UrlItem) {
	e.dep.Collector.IncrementActiveThreads()
	defer e.dep.Collector.DecrementActiveThreads()

	userAgent := e.cfg.UserAgent()

	if !e.dep.Robot.IsAllowed(ctx, userAgent, item.URL) {
		e.markVisited(item.URL)
		return
	}

	domain := robots.Authority(item.URL)
	delay := e.dep.Robot.GetCrawlDelay(ctx, userAgent, domain)
	e.dep.DomainClock.Wait(domain, delay)

	fetchUrl, parseErr := url.Parse(item.URL)
	if parseErr != nil {
		e.markVisited(item.URL)
		e.recordError()
		return
	}

	// Per-attempt HTTP Request timing (including retried attempts) is
	// recorded by the fetcher itself, which is the only layer that sees
	// each individual attempt; see HtmlFetcher.SetCollector.
	result, fetchErr := e.dep.Fetcher.Fetch(ctx, item.Depth, *fetchUrl, e.retryParam)
	if fetchErr != nil {
		e.markVisited(item.URL)
		e.recordError()
		return
	}
	e.dep.Collector.AddBytesDownloaded(int64(result.SizeByte()))

	extraction, extractErr := e.dep.Extractor.Extract(result.URL(), result.Body())
	if extractErr != nil {
		// Degenerate HTML yields empty results; the engine proceeds
		// rather than treating parse failure as a crawl-ending error.
		extraction.Links = nil
		extraction.Text = ""
	}

	if extraction.Text != "" {
		if _, storeErr := e.dep.Store.Insert(item.URL, extraction.Text); storeErr != nil {
			e.recordError()
		}
	}

	for _, link := range extraction.Links {
		e.admitLink(link, item.Depth+1)
	}

	e.markVisited(item.URL)
}

// admitLink is the single choke point a discovered link passes through
// before it can ever reach the frontier; see §4.G's numbered admission
// rules and the Domain validity / Keyword filter definitions.
func (e *Engine) admitLink(rawURL string, depth int) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	maxLinks := e.cfg.MaxLinks()
	if e.visited.Size() >= maxLinks || e.queue.Len() >= maxLinks {
		return
	}
	if !e.matchesSeedDomainLocked(rawURL) {
		return
	}
	if e.visited.Contains(rawURL) {
		return
	}
	if !e.passesKeywordFilter(rawURL) {
		return
	}

	priority := e.dep.Prioritizer.Score(rawURL, depth)
	e.queue.Push(frontier.UrlItem{URL: rawURL, Depth: depth, Priority: priority})
	e.visited.Add(rawURL)
	e.depths[rawURL] = depth
	e.dep.Collector.SetQueueSize(e.queue.Len())
	e.dep.Collector.SetVisitedCount(e.visited.Size())
}

// matchesSeedDomainLocked reports whether rawURL's domain is, contains,
// or is contained by any seed domain. Callers must hold queueMu.
func (e *Engine) matchesSeedDomainLocked(rawURL string) bool {
	for domain := range e.seedDomains {
		if urlutil.IsSameDomain(rawURL, domain) {
			return true
		}
	}
	return false
}

// passesKeywordFilter applies the per-domain keyword filter of §4.G: a
// domain absent from the configured map is unrestricted, and an empty
// map disables the filter entirely.
func (e *Engine) passesKeywordFilter(rawURL string) bool {
	keywords := e.cfg.DomainKeywords()
	if len(keywords) == 0 {
		return true
	}
	domain := urlutil.ExtractDomain(rawURL)
	list, ok := keywords[domain]
	if !ok || len(list) == 0 {
		return true
	}

	path := pathComponent(rawURL)
	for _, keyword := range list {
		if keyword != "" && strings.Contains(path, keyword) {
			return true
		}
	}
	return false
}

func pathComponent(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

// DepthOf reports the crawl depth recorded for rawURL, if any — the depth
// at which it was first admitted into the frontier (0 for seeds).
func (e *Engine) DepthOf(rawURL string) (int, bool) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	depth, ok := e.depths[rawURL]
	return depth, ok
}

func (e *Engine) markVisited(rawURL string) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	e.visited.Add(rawURL)
	e.dep.Collector.SetVisitedCount(e.visited.Size())
}

func (e *Engine) recordError() {
	e.errMu.Lock()
	e.errors++
	e.errMu.Unlock()
}

func (e *Engine) readErrors() int {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.errors
}

func (e *Engine) beginTask() {
	e.taskMu.Lock()
	e.activeTasks++
	e.taskMu.Unlock()
}

func (e *Engine) taskDone() {
	e.taskMu.Lock()
	e.activeTasks--
	if e.activeTasks == 0 {
		e.taskCond.Broadcast()
	}
	e.taskMu.Unlock()
}

func (e *Engine) waitForDrain() {
	e.taskMu.Lock()
	for e.activeTasks != 0 {
		e.taskCond.Wait()
	}
	e.taskMu.Unlock()
}

func (e *Engine) writeReportFile() {
	f, err := os.Create(reportFilename)
	if err != nil {
		e.dep.MetadataSink.RecordError(
			time.Now(),
			"engine",
			"Engine.writeReportFile",
			metadata.CauseStorageFailure,
			err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrWritePath, reportFilename)},
		)
		return
	}
	defer f.Close()
	e.dep.Collector.PrintReport(f)
}
