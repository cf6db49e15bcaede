package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// BrokerRule maps hostname substrings to a broker tag and its strategy order.
type BrokerRule struct {
	Name       string   `yaml:"name"`
	Domains    []string `yaml:"domains"`
	Strategies []string `yaml:"strategies"`
}

// Markup holds the broker-specific markup fragments the strategies key off.
// These are configuration, not logic, so they can track site changes without
// touching the pipeline.
type Markup struct {
	GridRowSelector       string   `yaml:"grid_row_selector"`
	GridRowIndexAttr      string   `yaml:"grid_row_index_attr"`
	GridColIDAttr         string   `yaml:"grid_col_id_attr"`
	EncodedRowAttr        string   `yaml:"encoded_row_attr"`
	CardAttr              string   `yaml:"card_attr"`
	CardSymbolPrefix      string   `yaml:"card_symbol_prefix"`
	QuantityLabelPrefixes []string `yaml:"quantity_label_prefixes"`
	ValueLabelPrefixes    []string `yaml:"value_label_prefixes"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Source struct {
		URL            string `yaml:"url"`
		File           string `yaml:"file"`
		Hostname       string `yaml:"hostname"` // overrides detection for file sources
		WaitSelector   string `yaml:"wait_selector"`
		Headless       bool   `yaml:"headless"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"source"`
	Brokers     []BrokerRule        `yaml:"brokers"`
	Aliases     map[string][]string `yaml:"aliases"` // canonical field -> source column ids
	SkipSymbols []string            `yaml:"skip_symbols"`
	Markup      Markup              `yaml:"markup"`
	Retry       struct {
		Attempts int `yaml:"attempts"`
		DelayMS  int `yaml:"delay_ms"`
	} `yaml:"retry"`
	Backend struct {
		BaseURL         string `yaml:"base_url"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"backend"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Watch struct {
		Cron string `yaml:"cron"`
	} `yaml:"watch"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Source.Headless = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PAGE_URL"); v != "" {
		cfg.Source.URL = v
	}
	if v := os.Getenv("PAGE_FILE"); v != "" {
		cfg.Source.File = v
	}
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		cfg.Watch.Cron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.Attempts = n
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8788"
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 45
	}
	if len(cfg.Brokers) == 0 {
		cfg.Brokers = defaultBrokers()
	}
	if len(cfg.Aliases) == 0 {
		cfg.Aliases = defaultAliases()
	}
	if len(cfg.SkipSymbols) == 0 {
		cfg.SkipSymbols = defaultSkipSymbols()
	}
	applyMarkupDefaults(&cfg.Markup)
	if cfg.Retry.Attempts == 0 {
		cfg.Retry.Attempts = 5
	}
	if cfg.Retry.DelayMS == 0 {
		cfg.Retry.DelayMS = 700
	}
	if cfg.Backend.TimeoutSeconds == 0 {
		cfg.Backend.TimeoutSeconds = 30
	}
	if cfg.Backend.CacheTTLSeconds == 0 {
		cfg.Backend.CacheTTLSeconds = 300
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Source.URL == "" && c.Source.File == "" {
		return fmt.Errorf("source.url or source.file is required")
	}
	if c.Retry.Attempts <= 0 {
		return fmt.Errorf("retry.attempts must be positive")
	}
	if c.Retry.DelayMS < 0 {
		return fmt.Errorf("retry.delay_ms must not be negative")
	}
	for _, b := range c.Brokers {
		if b.Name == "" {
			return fmt.Errorf("broker rule without a name")
		}
		if len(b.Domains) == 0 {
			return fmt.Errorf("broker %q has no domains", b.Name)
		}
	}
	return nil
}

func defaultBrokers() []BrokerRule {
	return []BrokerRule{
		{
			Name:       "fidelity",
			Domains:    []string{"fidelity.com", "fidelityinvestments.com"},
			Strategies: []string{"grid", "table", "encoded", "card"},
		},
		{
			Name:       "schwab",
			Domains:    []string{"schwab.com", "schwabplan.com"},
			Strategies: []string{"encoded", "table", "grid", "card"},
		},
		{
			Name:       "vanguard",
			Domains:    []string{"vanguard.com"},
			Strategies: []string{"table", "grid", "encoded", "card"},
		},
		{
			Name:       "robinhood",
			Domains:    []string{"robinhood.com"},
			Strategies: []string{"card", "table", "grid", "encoded"},
		},
	}
}

func defaultAliases() map[string][]string {
	return map[string][]string{
		"symbol":       {"ticker", "sym", "symbolDescription"},
		"currentValue": {"marketValue", "market_value", "current_value", "curVal"},
		"pctOfAccount": {"pct_of_account", "percentOfAccount"},
		"quantity":     {"qty", "shares"},
		"costBasis":    {"cost_basis", "totalCostBasis"},
	}
}

func defaultSkipSymbols() []string {
	return []string{"pending activity", "account total", "", "-", "--"}
}

func applyMarkupDefaults(m *Markup) {
	if m.GridRowSelector == "" {
		m.GridRowSelector = ".ag-row"
	}
	if m.GridRowIndexAttr == "" {
		m.GridRowIndexAttr = "row-index"
	}
	if m.GridColIDAttr == "" {
		m.GridColIDAttr = "col-id"
	}
	if m.EncodedRowAttr == "" {
		m.EncodedRowAttr = "data-position"
	}
	if m.CardAttr == "" {
		m.CardAttr = "data-holding"
	}
	if m.CardSymbolPrefix == "" {
		m.CardSymbolPrefix = "symbol="
	}
	if len(m.QuantityLabelPrefixes) == 0 {
		m.QuantityLabelPrefixes = []string{"number of shares"}
	}
	if len(m.ValueLabelPrefixes) == 0 {
		m.ValueLabelPrefixes = []string{"total value"}
	}
}
