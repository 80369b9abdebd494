package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"notion-trade-sync/internal/grid"
	"notion-trade-sync/internal/types"
)

const (
	SourceFile = "file"
	SourceHTTP = "http"
)

type Config struct {
	Page struct {
		Source       string            `yaml:"source"`
		Path         string            `yaml:"path"`
		URL          string            `yaml:"url"`
		Headers      map[string]string `yaml:"headers"`
		PollInterval time.Duration     `yaml:"poll_interval"`
		PanelID      string            `yaml:"panel_id"`
		Selectors    grid.Selectors    `yaml:"selectors"`
	} `yaml:"page"`
	Sync struct {
		Debounce      time.Duration `yaml:"debounce"`
		RemoteTimeout time.Duration `yaml:"remote_timeout"`
		PassTimeout   time.Duration `yaml:"pass_timeout"`
		PageSize      int           `yaml:"page_size"`
		// SettingsPoll is how often watch mode rereads the toggles.
		SettingsPoll time.Duration `yaml:"settings_poll"`
		// LockPoll is how often a pass retries an account lease held by another process.
		LockPoll time.Duration `yaml:"lock_poll"`
	} `yaml:"sync"`
	Notion struct {
		BaseURL   string `yaml:"base_url"`
		Version   string `yaml:"version"`
		RateLimit int    `yaml:"rate_limit"`
	} `yaml:"notion"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
	Telegram struct {
		Enabled bool  `yaml:"enabled"`
		ChatID  int64 `yaml:"chat_id"`
	} `yaml:"telegram"`
}

func (c *Config) Validate() error {
	switch c.Page.Source {
	case SourceFile:
		if c.Page.Path == "" {
			return errors.New("page.path is required when page.source is 'file'")
		}
	case SourceHTTP:
		if c.Page.URL == "" {
			return errors.New("page.url is required when page.source is 'http'")
		}
	default:
		return fmt.Errorf("invalid page.source '%s': must be 'file' or 'http'", c.Page.Source)
	}
	if c.Sync.PageSize < 1 || c.Sync.PageSize > 100 {
		return fmt.Errorf("sync.page_size must be between 1-100, got %d", c.Sync.PageSize)
	}
	if c.Notion.RateLimit <= 0 {
		return fmt.Errorf("notion.rate_limit must be positive, got %d", c.Notion.RateLimit)
	}
	if c.Telegram.Enabled && c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required when telegram is enabled")
	}
	return nil
}

// Default returns a config with every default filled in.
func Default() *Config {
	var c Config
	c.Page.Source = SourceFile
	c.Page.Path = "page.html"
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Page.Source == "" {
		c.Page.Source = SourceFile
	}
	if c.Page.PollInterval == 0 {
		c.Page.PollInterval = 2 * time.Second
	}
	if c.Sync.Debounce == 0 {
		c.Sync.Debounce = 2 * time.Second
	}
	if c.Sync.RemoteTimeout == 0 {
		c.Sync.RemoteTimeout = 15 * time.Second
	}
	if c.Sync.PassTimeout == 0 {
		c.Sync.PassTimeout = 5 * time.Minute
	}
	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = 5
	}
	if c.Sync.SettingsPoll == 0 {
		c.Sync.SettingsPoll = 5 * time.Second
	}
	if c.Sync.LockPoll == 0 {
		c.Sync.LockPoll = 200 * time.Millisecond
	}
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = "https://api.notion.com"
	}
	if c.Notion.Version == "" {
		c.Notion.Version = "2022-06-28"
	}
	if c.Notion.RateLimit == 0 {
		c.Notion.RateLimit = 3
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "tradesync.db"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "journal"
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 7
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// ValidateSettings checks credential formats before they are persisted.
func ValidateSettings(s types.Settings) error {
	var problems []string

	token := strings.TrimSpace(s.Token)
	switch {
	case token == "":
		problems = append(problems, "Notion token is required")
	case !strings.HasPrefix(token, "secret_") && !strings.HasPrefix(token, "ntn_"):
		problems = append(problems, "Notion token must start with 'secret_' or 'ntn_'")
	}

	id := strings.ReplaceAll(strings.TrimSpace(s.StoreID), "-", "")
	if id == "" {
		problems = append(problems, "Database ID is required")
	} else if _, err := hex.DecodeString(id); len(id) != 32 || err != nil {
		problems = append(problems, "Database ID must be 32 hex characters")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
