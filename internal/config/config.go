package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings
type Config struct {
	// Line log input
	Data DataConfig `mapstructure:"data" yaml:"data"`

	// Scatterplot geometry and animation
	Chart ChartConfig `mapstructure:"chart" yaml:"chart"`

	// Slider/brush event handling
	Interaction InteractionConfig `mapstructure:"interaction" yaml:"interaction"`

	// HTTP server
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Line store and preference store
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Render cache
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Logger settings
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

type DataConfig struct {
	Source        string `mapstructure:"source" yaml:"source"` // path, http(s) URL, sqlite://path or postgres://dsn
	CommitURLBase string `mapstructure:"commit_url_base" yaml:"commit_url_base"`
	Strict        bool   `mapstructure:"strict" yaml:"strict"` // reject malformed rows instead of skipping them
	Watch         bool   `mapstructure:"watch" yaml:"watch"`   // reload when the source file changes
}

type MarginConfig struct {
	Top    float64 `mapstructure:"top" yaml:"top"`
	Right  float64 `mapstructure:"right" yaml:"right"`
	Bottom float64 `mapstructure:"bottom" yaml:"bottom"`
	Left   float64 `mapstructure:"left" yaml:"left"`
}

type ChartConfig struct {
	Width      float64       `mapstructure:"width" yaml:"width"`
	Height     float64       `mapstructure:"height" yaml:"height"`
	Margin     MarginConfig  `mapstructure:"margin" yaml:"margin"`
	RadiusMin  float64       `mapstructure:"radius_min" yaml:"radius_min"`
	RadiusMax  float64       `mapstructure:"radius_max" yaml:"radius_max"`
	Transition time.Duration `mapstructure:"transition" yaml:"transition"`
	Clock12    bool          `mapstructure:"clock12" yaml:"clock12"` // "2 PM" instead of "14:00"
	XTicks     int           `mapstructure:"x_ticks" yaml:"x_ticks"`
	YTicks     int           `mapstructure:"y_ticks" yaml:"y_ticks"`
}

type InteractionConfig struct {
	ThrottlePerSecond float64 `mapstructure:"throttle_per_second" yaml:"throttle_per_second"` // 0 = unthrottled
	Burst             int     `mapstructure:"burst" yaml:"burst"`
	InitialProgress   float64 `mapstructure:"initial_progress" yaml:"initial_progress"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	OpenBrowser bool   `mapstructure:"open_browser" yaml:"open_browser"`
}

type StorageConfig struct {
	Type        string `mapstructure:"type" yaml:"type"` // "sqlite", "postgres"
	LocalPath   string `mapstructure:"local_path" yaml:"local_path"`
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
	PrefsPath   string `mapstructure:"prefs_path" yaml:"prefs_path"`
}

type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Cleanup time.Duration `mapstructure:"cleanup" yaml:"cleanup"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	JSON       bool   `mapstructure:"json" yaml:"json"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int64  `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Data: DataConfig{
			Source: "loc.csv",
			Strict: true,
		},
		Chart: ChartConfig{
			Width:      1000,
			Height:     600,
			Margin:     MarginConfig{Top: 10, Right: 10, Bottom: 30, Left: 20},
			RadiusMin:  5,
			RadiusMax:  20,
			Transition: 300 * time.Millisecond,
			XTicks:     10,
			YTicks:     10,
		},
		Interaction: InteractionConfig{
			Burst:           1,
			InitialProgress: 100,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Storage: StorageConfig{
			Type:      "sqlite",
			LocalPath: filepath.Join(homeDir, ".folio", "lines.db"),
			PrefsPath: filepath.Join(homeDir, ".folio", "prefs.db"),
		},
		Cache: CacheConfig{
			TTL:     5 * time.Minute,
			Cleanup: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxBackups: 3,
		},
	}
}

// Load loads configuration from file, .env files and the environment
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".folio")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".folio"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// setDefaults registers every leaf key so FOLIO_* variables resolve through AutomaticEnv
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data.source", cfg.Data.Source)
	v.SetDefault("data.commit_url_base", cfg.Data.CommitURLBase)
	v.SetDefault("data.strict", cfg.Data.Strict)
	v.SetDefault("data.watch", cfg.Data.Watch)

	v.SetDefault("chart.width", cfg.Chart.Width)
	v.SetDefault("chart.height", cfg.Chart.Height)
	v.SetDefault("chart.margin.top", cfg.Chart.Margin.Top)
	v.SetDefault("chart.margin.right", cfg.Chart.Margin.Right)
	v.SetDefault("chart.margin.bottom", cfg.Chart.Margin.Bottom)
	v.SetDefault("chart.margin.left", cfg.Chart.Margin.Left)
	v.SetDefault("chart.radius_min", cfg.Chart.RadiusMin)
	v.SetDefault("chart.radius_max", cfg.Chart.RadiusMax)
	v.SetDefault("chart.transition", cfg.Chart.Transition)
	v.SetDefault("chart.clock12", cfg.Chart.Clock12)
	v.SetDefault("chart.x_ticks", cfg.Chart.XTicks)
	v.SetDefault("chart.y_ticks", cfg.Chart.YTicks)

	v.SetDefault("interaction.throttle_per_second", cfg.Interaction.ThrottlePerSecond)
	v.SetDefault("interaction.burst", cfg.Interaction.Burst)
	v.SetDefault("interaction.initial_progress", cfg.Interaction.InitialProgress)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.open_browser", cfg.Server.OpenBrowser)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.local_path", cfg.Storage.LocalPath)
	v.SetDefault("storage.postgres_dsn", cfg.Storage.PostgresDSN)
	v.SetDefault("storage.prefs_path", cfg.Storage.PrefsPath)

	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.cleanup", cfg.Cache.Cleanup)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.json", cfg.Log.JSON)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size", cfg.Log.MaxSize)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".folio", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		_ = godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies the short, unprefixed variables on top of the file config
func applyEnvOverrides(cfg *Config) {
	if source := os.Getenv("LOC_SOURCE"); source != "" {
		cfg.Data.Source = source
	}
	if base := os.Getenv("COMMIT_URL_BASE"); base != "" {
		cfg.Data.CommitURLBase = base
	}

	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}
	if path := os.Getenv("LOCAL_DB_PATH"); path != "" {
		cfg.Storage.LocalPath = expandPath(path)
	}
	if path := os.Getenv("PREFS_DB_PATH"); path != "" {
		cfg.Storage.PrefsPath = expandPath(path)
	}

	if rate := os.Getenv("INTERACTION_THROTTLE"); rate != "" {
		if perSecond, err := strconv.ParseFloat(rate, 64); err == nil {
			cfg.Interaction.ThrottlePerSecond = perSecond
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	cfg.Storage.LocalPath = expandPath(cfg.Storage.LocalPath)
	cfg.Storage.PrefsPath = expandPath(cfg.Storage.PrefsPath)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// YAML renders the configuration as YAML
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := c.YAML()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
