// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"jobradar/internal/filter"
)

type SourceConfig struct {
	Enabled bool `yaml:"enabled"`
	// Keejob
	MaxPages int `yaml:"max_pages"`
	// TodayOnly is a tri-state: nil keeps the source's own default.
	TodayOnly *bool `yaml:"today_only"`
	// Tanitjobs
	Days int `yaml:"days"`
	// Aneti
	MaxOffers int `yaml:"max_offers"`
}

type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SheetID         string `yaml:"sheet_id"`
	InboxTab        string `yaml:"inbox_tab"`
	MirrorTab       string `yaml:"mirror_tab"`
	InboxURL        string `yaml:"inbox_url"`
}

type ScoringConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	Profile string `yaml:"profile"`
	Workers int    `yaml:"workers"`
}

type NotifyConfig struct {
	PushoverUserKey  string `yaml:"-"`
	PushoverAppToken string `yaml:"-"`
	NtfyServer       string `yaml:"ntfy_server"`
	NtfyTopic        string `yaml:"-"`
	NtfyToken        string `yaml:"-"`
	TelegramToken    string `yaml:"-"`
	TelegramChatID   int64  `yaml:"-"`
}

type Config struct {
	DBPath    string                  `yaml:"db_path"`
	CDPURL    string                  `yaml:"cdp_url"`
	RulesPath string                  `yaml:"rules_path"`
	Sources   map[string]SourceConfig `yaml:"sources"`
	Sheets    SheetsConfig            `yaml:"sheets"`
	Scoring   ScoringConfig           `yaml:"scoring"`
	Notify    NotifyConfig            `yaml:"notify"`

	CycleIntervalRaw string `yaml:"cycle_interval"`
	CycleTimeoutRaw  string `yaml:"cycle_timeout"`
	FetchParallel    int    `yaml:"fetch_parallel"`

	CycleInterval time.Duration `yaml:"-"`
	CycleTimeout  time.Duration `yaml:"-"`
}

// Load reads the YAML file at path (default location when empty), then
// applies .env / environment overrides and defaults. Missing notification or
// scoring credentials are not fatal; the corresponding channel just stays off.
func Load(path string) *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	if path == "" {
		path = os.Getenv("JOBRADAR_CONFIG")
	}
	if path == "" {
		path, _ = xdg.SearchConfigFile("jobradar/config.yaml")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: Could not read %s: %v", path, err)
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", path, err)
		}
	}

	//Override with env vars
	if v := os.Getenv("JOBRADAR_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JOBRADAR_CDP_URL"); v != "" {
		cfg.CDPURL = v
	}
	cfg.Scoring.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Notify.PushoverUserKey = os.Getenv("PUSHOVER_USER_KEY")
	cfg.Notify.PushoverAppToken = os.Getenv("PUSHOVER_APP_TOKEN")
	cfg.Notify.NtfyTopic = os.Getenv("NTFY_TOPIC")
	cfg.Notify.NtfyToken = os.Getenv("NTFY_TOKEN")
	cfg.Notify.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.Notify.TelegramChatID = id
	}

	//Parse duration strings
	if cfg.CycleIntervalRaw != "" {
		d, err := time.ParseDuration(cfg.CycleIntervalRaw)
		if err != nil {
			log.Fatalf("Invalid cycle_interval: %v", err)
		}
		cfg.CycleInterval = d
	}
	if cfg.CycleTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.CycleTimeoutRaw)
		if err != nil {
			log.Fatalf("Invalid cycle_timeout: %v", err)
		}
		cfg.CycleTimeout = d
	}

	//Set default values if not set
	if cfg.DBPath == "" {
		p, err := xdg.DataFile("jobradar/jobs.sqlite3")
		if err != nil {
			log.Fatalf("Resolving default db path: %v", err)
		}
		cfg.DBPath = p
	}
	if cfg.CDPURL == "" {
		cfg.CDPURL = "http://localhost:9222"
	}
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = 6 * time.Hour
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = 15 * time.Minute
	}
	if cfg.FetchParallel <= 0 {
		cfg.FetchParallel = 2
	}
	if cfg.Sources == nil {
		cfg.Sources = map[string]SourceConfig{
			"keejob":    {Enabled: true},
			"tanitjobs": {Enabled: true},
			"aneti":     {Enabled: true},
		}
	}
	if cfg.Sheets.InboxTab == "" {
		cfg.Sheets.InboxTab = "Inbox"
	}
	if cfg.Sheets.MirrorTab == "" {
		cfg.Sheets.MirrorTab = "All Jobs"
	}
	if cfg.Scoring.Workers <= 0 {
		cfg.Scoring.Workers = 2
	}

	return cfg
}

// Source returns the config block for name, zero-valued when absent.
func (c *Config) Source(name string) SourceConfig {
	return c.Sources[name]
}

// LoadRules compiles the ruleset from rules_path, falling back to the
// built-in rules when no file is configured.
func (c *Config) LoadRules() (*filter.Ruleset, error) {
	rc := filter.DefaultRules

	if c.RulesPath != "" {
		data, err := os.ReadFile(c.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("reading rules file: %w", err)
		}
		rc = filter.RulesetConfig{}
		if err := yaml.Unmarshal(data, &rc); err != nil {
			return nil, fmt.Errorf("parsing rules file: %w", err)
		}
	}

	rs, err := filter.Compile(rc)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}
	return rs, nil
}
