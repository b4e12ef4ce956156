package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"partrep/internal/domain"
	"partrep/internal/eventbus"
)

// FileName is the config file looked up in the user config directory
const FileName = "partrep.toml"

// EnvPrefix prefixes environment overrides, e.g. PARTREP_MEMBER_ID
const EnvPrefix = "PARTREP"

// Config represents the application configuration
type Config struct {
	Version    int           `mapstructure:"version" toml:"version"`
	Preset     string        `mapstructure:"preset" toml:"preset"`
	API        APIConfig     `mapstructure:"api" toml:"api"`
	Member     MemberConfig  `mapstructure:"member" toml:"member"`
	Filters    FilterConfig  `mapstructure:"filters" toml:"filters"`
	Search     SearchConfig  `mapstructure:"search" toml:"search"`
	UISettings UISettings    `mapstructure:"ui" toml:"ui"`
	Logging    LoggingConfig `mapstructure:"logging" toml:"logging"`
}

// APIConfig locates the report data service and the registry
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" toml:"base_url"`
	RegistryURL    string `mapstructure:"registry_url" toml:"registry_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	CacheSize      int    `mapstructure:"cache_size" toml:"cache_size"`
}

// MemberConfig identifies whose report is shown
type MemberConfig struct {
	ID   string `mapstructure:"id" toml:"id"`
	Name string `mapstructure:"name" toml:"name"`
}

// FilterConfig holds the initial filter selection
type FilterConfig struct {
	ContentType    string `mapstructure:"content_type" toml:"content_type"`
	DateRange      string `mapstructure:"date_range" toml:"date_range"`
	LoadingDelayMs int    `mapstructure:"loading_delay_ms" toml:"loading_delay_ms"`
}

// SearchConfig tunes the title search box
type SearchConfig struct {
	Keys      []string `mapstructure:"keys" toml:"keys"`
	Fuzziness int      `mapstructure:"fuzziness" toml:"fuzziness"`
	Limit     int      `mapstructure:"limit" toml:"limit"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowTooltips bool `mapstructure:"show_tooltips" toml:"show_tooltips"`
	BarWidth     int  `mapstructure:"bar_width" toml:"bar_width"`
}

// LoggingConfig controls the log file
type LoggingConfig struct {
	Level string `mapstructure:"level" toml:"level"`
	File  string `mapstructure:"file" toml:"file"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Watch(onChange func(*Config)) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
	logger   *slog.Logger
}

// NewConfigService creates a config service for the default location
func NewConfigService(logger *slog.Logger) ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return NewConfigServiceAt(filepath.Join(configDir, "partrep", FileName), logger)
}

// NewConfigServiceAt creates a config service bound to one file
func NewConfigServiceAt(path string, logger *slog.Logger) ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &configService{filePath: path, logger: logger.With("component", "config")}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus eventbus.EventBus, logger *slog.Logger) ConfigService {
	cs := NewConfigServiceAt(path, logger).(*configService)
	cs.bus = bus
	return cs
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the bound file, falling back to defaults when it is missing.
// Environment overrides apply either way.
func (cs *configService) Load() (*Config, error) {
	v := newViper()
	if _, err := os.Stat(cs.filePath); err == nil {
		v.SetConfigFile(cs.filePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save writes the configuration to the bound file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Watch calls onChange with the re-read configuration whenever the bound
// file changes on disk
func (cs *configService) Watch(onChange func(*Config)) error {
	v := newViper()
	v.SetConfigFile(cs.filePath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			cs.logger.Warn("config_reload_failed", "path", e.Name, "error", err)
			return
		}
		cs.logger.Info("config_reloaded", "path", e.Name, "op", e.Op.String())
		if cs.bus != nil {
			cs.bus.Publish(domain.ConfigChangedEvent{Path: e.Name})
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Preset:  DefaultPreset,
		API: APIConfig{
			TimeoutSeconds: 30,
			CacheSize:      256,
		},
		Filters: FilterConfig{
			ContentType:    "Journal articles",
			DateRange:      "all",
			LoadingDelayMs: 1000,
		},
		Search: SearchConfig{
			Keys:      []string{"title"},
			Fuzziness: 1,
			Limit:     10,
		},
		UISettings: UISettings{
			ShowTooltips: true,
			BarWidth:     30,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "partrep.log",
		},
	}
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	if c.Member.ID == "" {
		return errors.New("member id is required (set member.id or PARTREP_MEMBER_ID)")
	}
	if _, err := domain.ParseDateRange(c.Filters.DateRange); err != nil {
		return fmt.Errorf("invalid filters.date_range: %w", err)
	}
	if c.Search.Fuzziness < 0 || c.Search.Fuzziness > 2 {
		return fmt.Errorf("search.fuzziness must be between 0 and 2, got %d", c.Search.Fuzziness)
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is empty and no preset applies")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("preset", d.Preset)

	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.registry_url", d.API.RegistryURL)
	v.SetDefault("api.timeout_seconds", d.API.TimeoutSeconds)
	v.SetDefault("api.cache_size", d.API.CacheSize)

	v.SetDefault("member.id", d.Member.ID)
	v.SetDefault("member.name", d.Member.Name)

	v.SetDefault("filters.content_type", d.Filters.ContentType)
	v.SetDefault("filters.date_range", d.Filters.DateRange)
	v.SetDefault("filters.loading_delay_ms", d.Filters.LoadingDelayMs)

	v.SetDefault("search.keys", d.Search.Keys)
	v.SetDefault("search.fuzziness", d.Search.Fuzziness)
	v.SetDefault("search.limit", d.Search.Limit)

	v.SetDefault("ui.show_tooltips", d.UISettings.ShowTooltips)
	v.SetDefault("ui.bar_width", d.UISettings.BarWidth)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.ApplyPreset(cfg.Preset, false); err != nil {
		return nil, err
	}
	return &cfg, nil
}
