package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type StoreConfig struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type BigQueryConfig struct {
	Project string `mapstructure:"project"`
	Dataset string `mapstructure:"dataset"`
}

type RatesConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ProbeDays   int           `mapstructure:"probe_days"`
	Concurrency int           `mapstructure:"concurrency"`
}

type ImportConfig struct {
	QuorumCards   []string `mapstructure:"quorum_cards"`
	EUBillMarkers []string `mapstructure:"eu_bill_markers"`
}

// FuzzyRule maps a lowercase keyword to a subcategory.
type FuzzyRule struct {
	Keyword     string `mapstructure:"keyword"`
	Subcategory string `mapstructure:"subcategory"`
}

type CategorizerConfig struct {
	FuzzyRules        []FuzzyRule `mapstructure:"fuzzy_rules"`
	BootstrapMinCount int         `mapstructure:"bootstrap_min_count"`
}

type GeminiConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
	Model    string `mapstructure:"model"`
}

type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
}

type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

type APIConfig struct {
	Addr    string `mapstructure:"addr"`
	Token   string `mapstructure:"token"`
	Workers int    `mapstructure:"workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Store       StoreConfig       `mapstructure:"store"`
	BigQuery    BigQueryConfig    `mapstructure:"bigquery"`
	Rates       RatesConfig       `mapstructure:"rates"`
	Import      ImportConfig      `mapstructure:"import"`
	Categorizer CategorizerConfig `mapstructure:"categorizer"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	GCS         GCSConfig         `mapstructure:"gcs"`
	Notion      NotionConfig      `mapstructure:"notion"`
	API         APIConfig         `mapstructure:"api"`
	Log         LogConfig         `mapstructure:"log"`
}

var (
	appConfig *Config
	loadErr   error
	once      sync.Once
)

// Load reads the process-wide configuration once. An empty path searches for
// config.yaml in the usual locations; a missing file is not an error.
func Load(path string) (*Config, error) {
	once.Do(func() {
		appConfig, loadErr = New(path)
	})
	return appConfig, loadErr
}

// Get returns the configuration loaded by Load.
func Get() *Config {
	return appConfig
}

// New builds a fresh configuration without touching the process-wide copy.
func New(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.statement-ledger")
	} else {
		v.SetConfigFile(path)
	}

	// e.g. LEDGER_STORE_BACKEND=bigquery
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.New: read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config.New: unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "sqlite", "bigquery", "memory":
	default:
		return fmt.Errorf("config: unknown store.backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "bigquery" && c.BigQuery.Project == "" {
		return errors.New("config: bigquery.project is required for the bigquery backend")
	}
	if c.Rates.ProbeDays < 0 {
		return fmt.Errorf("config: rates.probe_days must be >= 0, got %d", c.Rates.ProbeDays)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.sqlite_path", "ledger.db")

	v.SetDefault("bigquery.project", "")
	v.SetDefault("bigquery.dataset", "ledger")

	v.SetDefault("rates.base_url", "https://api.frankfurter.app")
	v.SetDefault("rates.timeout", 5*time.Second)
	v.SetDefault("rates.probe_days", 3)
	v.SetDefault("rates.concurrency", 4)

	v.SetDefault("import.quorum_cards", []string{"7575", "4479"})
	v.SetDefault("import.eu_bill_markers", []string{"RENT", "O2", "D-TICKET", "RUNDFUNK"})

	v.SetDefault("categorizer.fuzzy_rules", DefaultFuzzyRules())
	v.SetDefault("categorizer.bootstrap_min_count", 2)

	v.SetDefault("gemini.project", "")
	v.SetDefault("gemini.location", "us-central1")
	v.SetDefault("gemini.model", "gemini-2.5-flash")

	v.SetDefault("gcs.bucket", "")

	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")

	v.SetDefault("api.addr", ":8080")
	v.SetDefault("api.token", "")
	v.SetDefault("api.workers", 2)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// DefaultFuzzyRules is the keyword fallback table, checked in order.
func DefaultFuzzyRules() []FuzzyRule {
	return []FuzzyRule{
		{Keyword: "rewe", Subcategory: "Supermarket"},
		{Keyword: "netto", Subcategory: "Supermarket"},
		{Keyword: "lidl", Subcategory: "Supermarket"},
		{Keyword: "edeka", Subcategory: "Supermarket"},
		{Keyword: "aldi", Subcategory: "Supermarket"},
		{Keyword: "combi", Subcategory: "Supermarket"},
		{Keyword: "mcdonalds", Subcategory: "Fast Food"},
		{Keyword: "burger", Subcategory: "Fast Food"},
		{Keyword: "pizza", Subcategory: "Fast Food"},
		{Keyword: "crobag", Subcategory: "Fast Food"},
		{Keyword: "rossmann", Subcategory: "Household expenses"},
		{Keyword: "dm-", Subcategory: "Household expenses"},
		{Keyword: "apotheke", Subcategory: "Pharmacy"},
		{Keyword: "barber", Subcategory: "Haircut"},
		{Keyword: "db vertrieb", Subcategory: "Train ticket"},
		{Keyword: "bolt", Subcategory: "Transportation"},
		{Keyword: "uber", Subcategory: "Transportation"},
	}
}
