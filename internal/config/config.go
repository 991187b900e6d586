package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"dcaportfolio/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ThreeCommas ThreeCommasConfig
	Profiles    []models.Profile
	Sync        SyncConfig
	Storage     StorageConfig
	HTTP        HTTPConfig
	Runtime     RuntimeConfig
}

type ThreeCommasConfig struct {
	BaseURL string
	WSURL   string
	Timeout time.Duration
}

type SyncConfig struct {
	ActiveProfile string
	Interval      time.Duration
	BotInterval   time.Duration
	PassTimeout   time.Duration
	PageSize      int
	Stream        bool
}

type StorageConfig struct {
	Path string
}

type HTTPConfig struct {
	Enabled bool
	Addr    string
}

type RuntimeConfig struct {
	Log LogConfig
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type profileEntry struct {
	ID            string                `mapstructure:"id"`
	Name          string                `mapstructure:"name"`
	APIKey        string                `mapstructure:"api_key"`
	Secret        string                `mapstructure:"secret"`
	Mode          string                `mapstructure:"mode"`
	DealsPageSize int                   `mapstructure:"deals_page_size"`
	ReservedFunds []models.ReservedFund `mapstructure:"reserved_funds"`
}

var envPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// Load reads configs/config.yaml (or the file given by path) after pulling .env into the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("Не удалось прочитать конфиг: %w", err)
		}
	}

	cfg := &Config{}
	cfg.ThreeCommas = ThreeCommasConfig{
		BaseURL: v.GetString("threecommas.base_url"),
		WSURL:   v.GetString("threecommas.ws_url"),
		Timeout: v.GetDuration("threecommas.timeout"),
	}

	var entries []profileEntry
	if err := v.UnmarshalKey("profiles", &entries); err != nil {
		return nil, fmt.Errorf("Некорректный список профилей: %w", err)
	}
	for _, entry := range entries {
		cfg.Profiles = append(cfg.Profiles, models.Profile{
			ID:   entry.ID,
			Name: entry.Name,
			Credentials: models.Credentials{
				Key:    envSub(entry.APIKey),
				Secret: envSub(entry.Secret),
				Mode:   envSub(entry.Mode),
			},
			ReservedFunds: entry.ReservedFunds,
			DealsPageSize: entry.DealsPageSize,
		})
	}

	cfg.Sync = SyncConfig{
		ActiveProfile: v.GetString("sync.active_profile"),
		Interval:      v.GetDuration("sync.interval"),
		BotInterval:   v.GetDuration("sync.bot_interval"),
		PassTimeout:   v.GetDuration("sync.pass_timeout"),
		PageSize:      v.GetInt("sync.page_size"),
		Stream:        v.GetBool("sync.stream"),
	}

	cfg.Storage = StorageConfig{
		Path: v.GetString("storage.path"),
	}

	cfg.HTTP = HTTPConfig{
		Enabled: v.GetBool("http.enabled"),
		Addr:    v.GetString("http.addr"),
	}

	cfg.Runtime = RuntimeConfig{
		Log: LogConfig{
			Level:      v.GetString("runtime.log.level"),
			Format:     v.GetString("runtime.log.format"),
			File:       v.GetString("runtime.log.file"),
			MaxSize:    v.GetInt("runtime.log.max_size"),
			MaxBackups: v.GetInt("runtime.log.max_backups"),
			MaxAge:     v.GetInt("runtime.log.max_age"),
			Compress:   v.GetBool("runtime.log.compress"),
		},
	}

	return cfg, nil
}

// ActiveProfile returns the profile that drives syncing.
func (c *Config) ActiveProfile() (models.Profile, error) {
	if len(c.Profiles) == 0 {
		return models.Profile{}, fmt.Errorf("Не задано ни одного профиля.")
	}
	if c.Sync.ActiveProfile == "" {
		return c.Profiles[0], nil
	}
	for _, p := range c.Profiles {
		if p.ID == c.Sync.ActiveProfile {
			return p, nil
		}
	}
	return models.Profile{}, fmt.Errorf("Профиль не найден: %s", c.Sync.ActiveProfile)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("threecommas.base_url", "https://api.3commas.io")
	v.SetDefault("threecommas.ws_url", "wss://ws.3commas.io/websocket")
	v.SetDefault("threecommas.timeout", 15*time.Second)
	v.SetDefault("sync.interval", 15*time.Second)
	v.SetDefault("sync.bot_interval", 5*time.Minute)
	v.SetDefault("sync.pass_timeout", 2*time.Minute)
	v.SetDefault("sync.page_size", 1000)
	v.SetDefault("storage.path", "data/portfolio.db")
	v.SetDefault("http.enabled", true)
	v.SetDefault("http.addr", "127.0.0.1:9000")
	v.SetDefault("runtime.log.level", "info")
	v.SetDefault("runtime.log.format", "text")
}

func envSub(val string) string {
	if val == "" {
		return ""
	}
	return strings.TrimSpace(envPattern.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	}))
}
