package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Output format template for the search command
	// Default: "{{.Artist}} - {{.Title}}"
	OutputFormat string

	Server  ServerConfig
	Player  PlayerConfig
	UI      UIConfig
	History HistoryConfig
	Logging LoggingConfig
}

// ServerConfig describes the beets web API
type ServerConfig struct {
	URL            string
	TimeoutSeconds int
	MaxRetries     int
}

// PlayerConfig describes the mpv transport
type PlayerConfig struct {
	MPVPath   string
	ExtraArgs []string
}

// UIConfig holds terminal UI preferences
type UIConfig struct {
	DefaultView string // "list" or "grid"
	GridColumns int
}

// HistoryConfig controls the local play history
type HistoryConfig struct {
	Enabled bool
	DB      string
}

// LoggingConfig controls log output
type LoggingConfig struct {
	File  string
	Level string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return load(getConfigDir(), ".")
}

func load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	// Read config file (optional - don't fail if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// BEETLE_SERVER_URL overrides server.url, and so on
	v.SetEnvPrefix("BEETLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		OutputFormat: v.GetString("output_format"),
		Server: ServerConfig{
			URL:            v.GetString("server.url"),
			TimeoutSeconds: v.GetInt("server.timeout_seconds"),
			MaxRetries:     v.GetInt("server.max_retries"),
		},
		Player: PlayerConfig{
			MPVPath:   v.GetString("player.mpv_path"),
			ExtraArgs: v.GetStringSlice("player.extra_args"),
		},
		UI: UIConfig{
			DefaultView: v.GetString("ui.default_view"),
			GridColumns: v.GetInt("ui.grid_columns"),
		},
		History: HistoryConfig{
			Enabled: v.GetBool("history.enabled"),
			DB:      v.GetString("history.db"),
		},
		Logging: LoggingConfig{
			File:  v.GetString("logging.file"),
			Level: v.GetString("logging.level"),
		},
	}

	if cfg.History.DB == "" {
		cfg.History.DB = filepath.Join(GetDataDir(), "history.db")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_format", "{{.Artist}} - {{.Title}}")
	v.SetDefault("server.url", "http://localhost:8337")
	v.SetDefault("server.timeout_seconds", 15)
	v.SetDefault("server.max_retries", 3)
	v.SetDefault("player.mpv_path", "mpv")
	v.SetDefault("player.extra_args", []string{})
	v.SetDefault("ui.default_view", "list")
	v.SetDefault("ui.grid_columns", 4)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db", "")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.level", "info")
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "beetle")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir returns the directory for the history database and logs
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	dataDir := filepath.Join(homeDir, ".local", "share", "beetle")
	_ = os.MkdirAll(dataDir, 0755)

	return dataDir
}

// Save writes configuration to file
func (c *Config) Save() error {
	return c.saveTo(filepath.Join(getConfigDir(), "config.yaml"))
}

func (c *Config) saveTo(configFile string) error {
	v := viper.New()

	v.Set("output_format", c.OutputFormat)
	v.Set("server.url", c.Server.URL)
	v.Set("server.timeout_seconds", c.Server.TimeoutSeconds)
	v.Set("server.max_retries", c.Server.MaxRetries)
	v.Set("player.mpv_path", c.Player.MPVPath)
	v.Set("player.extra_args", c.Player.ExtraArgs)
	v.Set("ui.default_view", c.UI.DefaultView)
	v.Set("ui.grid_columns", c.UI.GridColumns)
	v.Set("history.enabled", c.History.Enabled)
	v.Set("history.db", c.History.DB)
	v.Set("logging.file", c.Logging.File)
	v.Set("logging.level", c.Logging.Level)

	return v.WriteConfigAs(configFile)
}
