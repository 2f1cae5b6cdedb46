package config

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Config holds every tunable of a crawl or search run. Zero value is not
// meaningful; always obtain one via WithDefault()/LoadFile().
type Config struct {
	//===============
	// Politeness & scale
	//===============
	// Number of worker goroutines processing the frontier concurrently.
	threadCount int
	// Fixed sleep between successive fetch attempts of a URL after a
	// transient failure.
	retryDelay time.Duration
	// Per-request HTTP timeout.
	requestTimeout time.Duration
	// Total attempts per URL before giving up on a transient failure.
	maxRetries int

	//===============
	// Crawl scope
	//===============
	// Cap on the size of the visited set; the crawl stops admitting new
	// URLs once it is reached.
	maxLinks int

	//===============
	// Fetch
	//===============
	userAgent string

	//===============
	// Storage
	//===============
	dbName string

	//===============
	// Logging
	//===============
	logFilename    string
	verboseLogging bool

	//===============
	// Prioritization
	//===============
	// domain -> keywords that raise priority when present in a candidate URL.
	domainKeywords           map[string][]string
	domainKeywordWeight      float64
	crossDomainKeywordWeight float64
}

// configDTO mirrors the JSON config file shape documented in SPEC_FULL.md
// §6.1. Every field is optional; a missing or zero-valued field falls back
// to the matching WithDefault() value.
type configDTO struct {
	ThreadCount              int                 `json:"thread_count,omitempty"`
	DbName                   string              `json:"db_name,omitempty"`
	UserAgent                string              `json:"user_agent,omitempty"`
	RequestTimeoutSec        int                 `json:"request_timeout_sec,omitempty"`
	MaxLinks                 int                 `json:"max_links,omitempty"`
	MaxRetries               int                 `json:"max_retries,omitempty"`
	RetryDelaySec            int                 `json:"retry_delay_sec,omitempty"`
	LogFilename              string              `json:"log_filename,omitempty"`
	VerboseLogging           *bool               `json:"verbose_logging,omitempty"`
	DomainKeywords           map[string][]string `json:"domain_keywords,omitempty"`
	DomainKeywordWeight      float64             `json:"domain_keyword_weight,omitempty"`
	CrossDomainKeywordWeight float64             `json:"cross_domain_keyword_weight,omitempty"`
}

// WithDefault returns a builder seeded with every documented default.
func WithDefault() *Config {
	return &Config{
		threadCount:              10,
		dbName:                   "parser.db",
		userAgent:                "MyWebCrawler/1.0",
		requestTimeout:           30 * time.Second,
		maxLinks:                 1000,
		maxRetries:               3,
		retryDelay:               5 * time.Second,
		logFilename:              "logs.txt",
		verboseLogging:           true,
		domainKeywords:           map[string][]string{},
		domainKeywordWeight:      3.0,
		crossDomainKeywordWeight: 1.5,
	}
}

// LoadFile reads a JSON config file at path and overlays it onto the
// defaults. Unlike a strict loader, LoadFile never fails: a missing file,
// an unreadable file, or a parse error is logged and silently answered
// with WithDefault().Build() instead, matching the catch-all load
// discipline the crawler's original config loader used. Unknown JSON keys
// are ignored by encoding/json already; missing keys keep their default.
func LoadFile(path string) Config {
	def := WithDefault().Build()

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: could not read %s, using defaults: %v", path, err)
		return def
	}

	var dto configDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		log.Printf("config: could not parse %s, using defaults: %v", path, err)
		return def
	}

	return mergeDTO(def, dto)
}

func mergeDTO(cfg Config, dto configDTO) Config {
	if dto.ThreadCount != 0 {
		cfg.threadCount = dto.ThreadCount
	}
	if dto.DbName != "" {
		cfg.dbName = dto.DbName
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.RequestTimeoutSec != 0 {
		cfg.requestTimeout = time.Duration(dto.RequestTimeoutSec) * time.Second
	}
	if dto.MaxLinks != 0 {
		cfg.maxLinks = dto.MaxLinks
	}
	if dto.MaxRetries != 0 {
		cfg.maxRetries = dto.MaxRetries
	}
	if dto.RetryDelaySec != 0 {
		cfg.retryDelay = time.Duration(dto.RetryDelaySec) * time.Second
	}
	if dto.LogFilename != "" {
		cfg.logFilename = dto.LogFilename
	}
	if dto.VerboseLogging != nil {
		cfg.verboseLogging = *dto.VerboseLogging
	}
	if len(dto.DomainKeywords) > 0 {
		cfg.domainKeywords = dto.DomainKeywords
	}
	if dto.DomainKeywordWeight != 0 {
		cfg.domainKeywordWeight = dto.DomainKeywordWeight
	}
	if dto.CrossDomainKeywordWeight != 0 {
		cfg.crossDomainKeywordWeight = dto.CrossDomainKeywordWeight
	}
	return cfg
}

func (c *Config) WithThreadCount(n int) *Config {
	c.threadCount = n
	return c
}

func (c *Config) WithDbName(name string) *Config {
	c.dbName = name
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithRequestTimeout(d time.Duration) *Config {
	c.requestTimeout = d
	return c
}

func (c *Config) WithMaxLinks(n int) *Config {
	c.maxLinks = n
	return c
}

func (c *Config) WithMaxRetries(n int) *Config {
	c.maxRetries = n
	return c
}

func (c *Config) WithRetryDelay(d time.Duration) *Config {
	c.retryDelay = d
	return c
}

func (c *Config) WithLogFilename(name string) *Config {
	c.logFilename = name
	return c
}

func (c *Config) WithVerboseLogging(verbose bool) *Config {
	c.verboseLogging = verbose
	return c
}

func (c *Config) WithDomainKeywords(keywords map[string][]string) *Config {
	c.domainKeywords = keywords
	return c
}

func (c *Config) WithDomainKeywordWeight(weight float64) *Config {
	c.domainKeywordWeight = weight
	return c
}

func (c *Config) WithCrossDomainKeywordWeight(weight float64) *Config {
	c.crossDomainKeywordWeight = weight
	return c
}

// Build finalizes the builder into an immutable Config value.
func (c *Config) Build() Config {
	return *c
}

func (c Config) ThreadCount() int      { return c.threadCount }
func (c Config) DbName() string        { return c.dbName }
func (c Config) UserAgent() string     { return c.userAgent }
func (c Config) RequestTimeout() time.Duration { return c.requestTimeout }
func (c Config) MaxLinks() int         { return c.maxLinks }
func (c Config) MaxRetries() int       { return c.maxRetries }
func (c Config) RetryDelay() time.Duration { return c.retryDelay }
func (c Config) LogFilename() string   { return c.logFilename }
func (c Config) VerboseLogging() bool  { return c.verboseLogging }

func (c Config) DomainKeywordWeight() float64      { return c.domainKeywordWeight }
func (c Config) CrossDomainKeywordWeight() float64 { return c.crossDomainKeywordWeight }

// DomainKeywords returns a defensive copy of the domain -> keyword map.
func (c Config) DomainKeywords() map[string][]string {
	out := make(map[string][]string, len(c.domainKeywords))
	for domain, keywords := range c.domainKeywords {
		cp := make([]string, len(keywords))
		copy(cp, keywords)
		out[domain] = cp
	}
	return out
}
