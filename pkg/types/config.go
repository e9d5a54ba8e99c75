package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "uiuc-course-planner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ParserBackend identifies how the external audit parser is invoked.
type ParserBackend string

const (
	ParserPython    ParserBackend = "python"
	ParserContainer ParserBackend = "container"
	ParserHTTP      ParserBackend = "http"
)

// ParserConfig holds settings for running the external audit parser.
type ParserConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the parser runner: python, container, or http.
	Backend ParserBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Python is an explicit interpreter path tried before the built-in candidates.
	Python string `json:"python,omitempty" yaml:"python,omitempty" mapstructure:"python"`

	// ParserDir is the directory containing the audit_parser package. It is
	// used as the working directory and PYTHONPATH.
	ParserDir string `json:"parser_dir" yaml:"parser_dir" mapstructure:"parser_dir"`

	// Image is the container image that reads a PDF on stdin and writes JSON.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// BaseURL is the root of a remote parser service exposing /api/audits/parse.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxRetries bounds retries on HTTP 429 from the remote parser (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig holds settings for the audit store.
type StoreConfig struct {
	// DataDir is the directory holding planner.db.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// UserID scopes saved audits (default "demo").
	UserID string `json:"user_id" yaml:"user_id" mapstructure:"user_id"`
}

// ReportConfig holds settings for rendering progress.
type ReportConfig struct {
	// SearchBaseURL is prefixed to each need's search path when printing links.
	SearchBaseURL string `json:"search_base_url,omitempty" yaml:"search_base_url,omitempty" mapstructure:"search_base_url"`

	// Plain disables terminal styling.
	Plain bool `json:"plain" yaml:"plain" mapstructure:"plain"`
}

// BatchConfig holds settings for extracting needs from many audits at once.
type BatchConfig struct {
	// Workers bounds concurrent extractions (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`
}

// Config groups all component configurations for the planner CLI.
type Config struct {
	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Parser ParserConfig `json:"parser" yaml:"parser" mapstructure:"parser"`
	Report ReportConfig `json:"report" yaml:"report" mapstructure:"report"`
	Batch  BatchConfig  `json:"batch" yaml:"batch" mapstructure:"batch"`
}

// DefaultConfig returns the configuration used when no file or flag overrides it.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			DataDir: "data",
			UserID:  "demo",
		},
		Parser: ParserConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   2 * time.Minute,
				UserAgent: "uiuc-course-planner/0.1",
			},
			Backend:    ParserPython,
			ParserDir:  "audit-parser",
			Image:      "audit-parser:latest",
			MaxRetries: 5,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// Validate reports the first configuration value that cannot work.
func (c Config) Validate() error {
	switch c.Parser.Backend {
	case ParserPython, ParserContainer:
	case ParserHTTP:
		if c.Parser.BaseURL == "" {
			return fmt.Errorf("parser.base_url is required for the %s backend", ParserHTTP)
		}
	default:
		return fmt.Errorf("unsupported parser backend %q: use python, container, or http", c.Parser.Backend)
	}
	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir must not be empty")
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers)
	}
	return nil
}
