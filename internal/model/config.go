package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date layout used in configuration, file names and CSV output
const DateLayout = "2006-01-02"

// Config holds the complete run configuration
type Config struct {
	Endpoint     EndpointConfig    `yaml:"endpoint" mapstructure:"endpoint"`
	Period       PeriodConfig      `yaml:"period" mapstructure:"period"`
	Lemmatizer   LemmatizerConfig  `yaml:"lemmatizer" mapstructure:"lemmatizer"`
	Stopwords    StopwordsConfig   `yaml:"stopwords" mapstructure:"stopwords"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Breaker      BreakerConfig     `yaml:"breaker" mapstructure:"breaker"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// EndpointConfig configures the SPARQL endpoint client
type EndpointConfig struct {
	URL           string        `yaml:"url" mapstructure:"url"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	Retries       int           `yaml:"retries" mapstructure:"retries"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// PeriodConfig bounds the analysed speeches (YYYY-MM-DD)
type PeriodConfig struct {
	Start string `yaml:"start" mapstructure:"start"`
	End   string `yaml:"end" mapstructure:"end"`
	Term  string `yaml:"term,omitempty" mapstructure:"term"` // electoral term id, derived from start/end when empty
}

// LemmatizerConfig selects the morphological analyzer
type LemmatizerConfig struct {
	Kind        string        `yaml:"kind" mapstructure:"kind"` // lexicon, remote, none
	LexiconPath string        `yaml:"lexicon_path,omitempty" mapstructure:"lexicon_path"`
	RemoteURL   string        `yaml:"remote_url,omitempty" mapstructure:"remote_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// StopwordsConfig points at the stopword list (one word per line)
type StopwordsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CacheConfig configures the query-result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig limits requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// BreakerConfig configures the endpoint circuit breaker
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures" mapstructure:"max_failures"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ConcurrencyConfig controls parallel speech processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls where CSV files are written
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig controls the zerolog logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns the configuration of the 2015-2019 electoral term run
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			URL:          "http://ldf.fi/semparl/sparql",
			Timeout:      5 * time.Minute,
			UserAgent:    "mentions/0.1 (+https://github.com/ppiankov/mentions)",
			MaxBodyBytes: 512 << 20,
			Retries:      3,
		},
		Period: PeriodConfig{
			Start: "2015-04-22",
			End:   "2019-04-16",
		},
		Lemmatizer: LemmatizerConfig{
			Kind:        "lexicon",
			LexiconPath: "lemmas.tsv",
			CacheTTL:    time.Hour,
		},
		Stopwords: StopwordsConfig{
			Path: "stopwords2.txt",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".mentions-cache",
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Breaker: BreakerConfig{
			MaxFailures: 3,
			Timeout:     30 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Period is a parsed analysis window
type Period struct {
	Start time.Time
	End   time.Time
	Term  string
}

// ParsePeriod parses start and end dates; term defaults to "e_<start>-<end>"
func ParsePeriod(start, end, term string) (Period, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Period{}, fmt.Errorf("parse start date: %w", err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Period{}, fmt.Errorf("parse end date: %w", err)
	}
	if e.Before(s) {
		return Period{}, fmt.Errorf("end date %s before start date %s", end, start)
	}
	if term == "" {
		term = fmt.Sprintf("e_%s-%s", start, end)
	}
	return Period{Start: s, End: e, Term: term}, nil
}

// Period returns the configured analysis window
func (c PeriodConfig) Period() (Period, error) {
	return ParsePeriod(c.Start, c.End, c.Term)
}

// StartString formats the period start as YYYY-MM-DD
func (p Period) StartString() string {
	return p.Start.Format(DateLayout)
}

// EndString formats the period end as YYYY-MM-DD
func (p Period) EndString() string {
	return p.End.Format(DateLayout)
}

func (p Period) String() string {
	return p.StartString() + ".." + p.EndString()
}
