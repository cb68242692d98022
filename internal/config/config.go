// Package config loads pagepulse settings: .env first, then the YAML file,
// then environment overrides, then defaults, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pagepulse/internal/analysis"
	"pagepulse/pkg/log"
)

const DefaultPath = "config/pagepulse.yaml"

type Config struct {
	DataDir    string `yaml:"data_dir"`
	ResultsDir string `yaml:"results_dir"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console | json
	} `yaml:"log"`

	Browser struct {
		// Dir holds bundled browser executables, looked up by name when no
		// explicit path is set.
		Dir         string `yaml:"dir"`
		ChromePath  string `yaml:"chrome_path"`
		FirefoxPath string `yaml:"firefox_path"`
		Headless    *bool  `yaml:"headless"`
		Width       int    `yaml:"width"`
		Height      int    `yaml:"height"`
	} `yaml:"browser"`

	Scraper struct {
		SelectorsFile      string   `yaml:"selectors_file"`
		SelectorReload     string   `yaml:"selector_reload"`
		MaxScrolls         int      `yaml:"max_scrolls"`
		ExcludedCommenters []string `yaml:"excluded_commenters"`
	} `yaml:"scraper"`

	Analysis struct {
		ExclusionPolicy       string   `yaml:"exclusion_policy"`
		OperatorNames         []string `yaml:"operator_names"`
		KeepRepliesOfExcluded bool     `yaml:"keep_replies_of_excluded"`
		TopComments           int      `yaml:"top_comments"`
		TopCommenters         int      `yaml:"top_commenters"`
		Topics                int      `yaml:"topics"`
		TopicWords            int      `yaml:"topic_words"`
		TopicIterations       int      `yaml:"topic_iterations"`
		TopicSeed             *int64   `yaml:"topic_seed"`
		LexicalTopK           int      `yaml:"lexical_top_k"`
	} `yaml:"analysis"`
}

// Load reads the config at path. A missing file is not an error: defaults
// and environment overrides still apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.GlobalWarn("config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	override(&c.DataDir, "PAGEPULSE_DATA_DIR")
	override(&c.ResultsDir, "PAGEPULSE_RESULTS_DIR")
	override(&c.Log.Level, "PAGEPULSE_LOG_LEVEL")
	override(&c.Log.Format, "PAGEPULSE_LOG_FORMAT")
	override(&c.Browser.ChromePath, "CHROME_PATH")
	override(&c.Browser.FirefoxPath, "FIREFOX_PATH")
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.ResultsDir == "" {
		c.ResultsDir = "results"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Browser.Dir == "" {
		c.Browser.Dir = "browsers"
	}
	if c.Browser.Headless == nil {
		headless := true
		c.Browser.Headless = &headless
	}
	if c.Browser.Width == 0 {
		c.Browser.Width = 1920
	}
	if c.Browser.Height == 0 {
		c.Browser.Height = 1080
	}

	if c.Scraper.SelectorsFile == "" {
		c.Scraper.SelectorsFile = "config/selectors.yaml"
	}
	if c.Scraper.SelectorReload == "" {
		c.Scraper.SelectorReload = "10s"
	}
	if c.Scraper.MaxScrolls == 0 {
		c.Scraper.MaxScrolls = 1000
	}

	if c.Analysis.ExclusionPolicy == "" {
		c.Analysis.ExclusionPolicy = string(analysis.PolicyPageName)
	}
	if c.Analysis.TopComments == 0 {
		c.Analysis.TopComments = 20
	}
	if c.Analysis.TopCommenters == 0 {
		c.Analysis.TopCommenters = 20
	}
	if c.Analysis.Topics == 0 {
		c.Analysis.Topics = analysis.DefaultTopics
	}
	if c.Analysis.TopicWords == 0 {
		c.Analysis.TopicWords = analysis.DefaultTopWords
	}
	if c.Analysis.TopicIterations == 0 {
		c.Analysis.TopicIterations = analysis.DefaultIterations
	}
	if c.Analysis.TopicSeed == nil {
		seed := int64(analysis.DefaultTopicSeed)
		c.Analysis.TopicSeed = &seed
	}
	if c.Analysis.LexicalTopK == 0 {
		c.Analysis.LexicalTopK = analysis.DefaultTopK
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: want console or json, got %q", c.Log.Format))
	}
	if d, err := time.ParseDuration(c.Scraper.SelectorReload); err != nil {
		errs = append(errs, fmt.Errorf("scraper.selector_reload: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("scraper.selector_reload: must be positive, got %s", d))
	}
	if _, err := analysis.ParseExclusionPolicy(c.Analysis.ExclusionPolicy); err != nil {
		errs = append(errs, fmt.Errorf("analysis.exclusion_policy: %w", err))
	}

	positive := map[string]int{
		"browser.width":             c.Browser.Width,
		"browser.height":            c.Browser.Height,
		"scraper.max_scrolls":       c.Scraper.MaxScrolls,
		"analysis.top_comments":     c.Analysis.TopComments,
		"analysis.top_commenters":   c.Analysis.TopCommenters,
		"analysis.topics":           c.Analysis.Topics,
		"analysis.topic_words":      c.Analysis.TopicWords,
		"analysis.topic_iterations": c.Analysis.TopicIterations,
		"analysis.lexical_top_k":    c.Analysis.LexicalTopK,
	}
	for _, key := range sortedKeys(positive) {
		if positive[key] < 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %d", key, positive[key]))
		}
	}

	return errors.Join(errs...)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}

// SelectorReloadInterval returns how often the selectors file is re-read.
func (c *Config) SelectorReloadInterval() time.Duration {
	d, _ := time.ParseDuration(c.Scraper.SelectorReload)
	return d
}

// Policy returns the parsed exclusion policy.
func (c *Config) Policy() analysis.ExclusionPolicy {
	p, _ := analysis.ParseExclusionPolicy(c.Analysis.ExclusionPolicy)
	return p
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
