package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rohmanhakim/docs-crawler/internal/build"
	"github.com/rohmanhakim/docs-crawler/internal/config"
	"github.com/rohmanhakim/docs-crawler/internal/engine"
	"github.com/rohmanhakim/docs-crawler/internal/extractor"
	"github.com/rohmanhakim/docs-crawler/internal/fetcher"
	"github.com/rohmanhakim/docs-crawler/internal/frontier"
	"github.com/rohmanhakim/docs-crawler/internal/metadata"
	"github.com/rohmanhakim/docs-crawler/internal/metrics"
	"github.com/rohmanhakim/docs-crawler/internal/robots"
	"github.com/rohmanhakim/docs-crawler/internal/robots/cache"
	"github.com/rohmanhakim/docs-crawler/internal/storage"
	"github.com/rohmanhakim/docs-crawler/pkg/limiter"
	"github.com/spf13/cobra"
)

const defaultLinksFile = "links.txt"

// NewCrawlerCommand builds the `crawler` entrypoint: crawler [config.json]
// [links.txt], both positional and optional, per §6.2.
func NewCrawlerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "crawler [config.json] [links.txt]",
		Short: "Crawl a set of seed URLs and persist their content.",
		Long: `crawler crawls static documentation websites starting from a seed
list and persists their extracted content into a local SQLite store,
following robots.txt, per-domain keyword scoping, and a fixed visited-URL
cap.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := ""
			if len(args) > 0 {
				configPath = args[0]
			}
			linksPath := defaultLinksFile
			if len(args) > 1 {
				linksPath = args[1]
			}
			return runCrawler(configPath, linksPath)
		},
	}
}

// NewSearcherCommand builds the `searcher` entrypoint: searcher <db> <query>.
func NewSearcherCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "searcher <db> <query>",
		Short: "Search a crawl store's persisted content for a substring.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearcher(cmd, args[0], args[1])
		},
	}
}

// Execute runs root and exits the process with status 1 if it returns an
// error. cmd/crawler and cmd/searcher each call this with their own root
// command.
func Execute(root *cobra.Command) {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCrawler(configPath, linksPath string) error {
	var cfg config.Config
	if configPath != "" {
		cfg = config.LoadFile(configPath)
	} else {
		cfg = config.WithDefault().Build()
	}

	sink, err := metadata.NewLogFileSink(cfg.LogFilename(), cfg.VerboseLogging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "crawler: could not open log file: %v\n", err)
		os.Exit(1)
	}
	defer sink.Close()

	seeds, seedErr := engine.LoadSeeds(linksPath)
	if seedErr != nil {
		fmt.Fprintf(os.Stderr, "crawler: %v\n", seedErr)
		os.Exit(1)
	}
	if len(seeds) == 0 {
		fmt.Fprintf(os.Stderr, "crawler: %v\n", &engine.EngineError{
			Message:   fmt.Sprintf("no usable seed URLs in %s", linksPath),
			Retryable: false,
			Cause:     engine.ErrCauseNoSeeds,
		})
		os.Exit(1)
	}

	store, storeErr := storage.Open(cfg.DbName(), storage.ModeCrawler, sink)
	if storeErr != nil {
		fmt.Fprintf(os.Stderr, "crawler: %v\n", &engine.EngineError{
			Message:   storeErr.Error(),
			Retryable: false,
			Cause:     engine.ErrCauseStoreOpen,
		})
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
	collector := metrics.NewCollector()

	htmlFetcher := fetcher.NewHtmlFetcher(sink)
	htmlFetcher.Init(httpClient, cfg.UserAgent())
	htmlFetcher.SetCollector(collector)

	robotsFetcher := robots.NewRobotsFetcherWithClient(cfg.UserAgent(), httpClient, cache.NewMemoryCache())
	cachedRobot := robots.NewCachedRobot(robotsFetcher)

	domExtractor := extractor.NewDomExtractor(sink)

	e := engine.NewEngine(cfg, engine.Dependencies{
		Fetcher:      &htmlFetcher,
		Extractor:    &domExtractor,
		Robot:        cachedRobot,
		Store:        store,
		Prioritizer:  frontier.NewPrioritizer(cfg.DomainKeywords(), cfg.DomainKeywordWeight(), cfg.CrossDomainKeywordWeight()),
		DomainClock:  limiter.NewDomainClock(),
		Collector:    collector,
		MetadataSink: sink,
	})
	e.Load(seeds)

	summary := e.Run(context.Background())

	sink.RecordFinalCrawlStats(summary.TotalPages, summary.TotalErrors, 0, summary.Duration)

	fmt.Printf("%s crawl finished: %d pages, %d errors, %v\n", build.FullVersion(), summary.TotalPages, summary.TotalErrors, summary.Duration)
	return nil
}

func runSearcher(cmd *cobra.Command, dbPath, query string) error {
	if query == "" {
		fmt.Fprintln(os.Stderr, "searcher: query must not be empty")
		os.Exit(1)
	}

	store, err := storage.Open(dbPath, storage.ModeSearcher, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "searcher: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	urls, searchErr := store.Search(query)
	if searchErr != nil {
		fmt.Fprintf(os.Stderr, "searcher: %v\n", searchErr)
		os.Exit(1)
	}

	for _, u := range urls {
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}
	return nil
}

