package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort                = "8080"
	defaultDataDir             = "data"
	defaultTicketFile          = "tickets.csv"
	defaultTicketRatePerMinute = 30
	defaultSessionDBPath       = ".supportdesk/sessions.db"
	defaultSessionMaxAgeHours  = 72
	defaultMaxHits             = 4
	defaultExcerptWindow       = 280
	defaultLogLevel            = "info"
)

type Config struct {
	config *viper.Viper
}

// Load reads config/config.<env>.yaml from the project root. An empty env falls back
// to the ENV variable and then to "local". Environment variables always win.
func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	setDefaults(viperConfig)
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("documents.data_dir", defaultDataDir)
	v.SetDefault("tickets.path", defaultTicketFile)
	v.SetDefault("tickets.rate_per_minute", defaultTicketRatePerMinute)
	v.SetDefault("database.session_db_path", defaultSessionDBPath)
	v.SetDefault("database.session_max_age_hours", defaultSessionMaxAgeHours)
	v.SetDefault("search.max_hits", defaultMaxHits)
	v.SetDefault("search.excerpt_window", defaultExcerptWindow)
	v.SetDefault("log.level", defaultLogLevel)
}

func (c *Config) GetPort() string {
	return c.getString("PORT", "server.port")
}

func (c *Config) GetDataDir() string {
	return c.getString("DATA_DIR", "documents.data_dir")
}

func (c *Config) GetTicketFile() string {
	return c.getString("TICKET_FILE", "tickets.path")
}

func (c *Config) GetTicketRatePerMinute() int {
	return c.getInt("TICKET_RATE_PER_MINUTE", "tickets.rate_per_minute")
}

func (c *Config) GetSessionDBPath() string {
	return c.getString("SESSION_DB_PATH", "database.session_db_path")
}

// GetSessionMaxAge is how long an idle chat session is kept before it is pruned.
func (c *Config) GetSessionMaxAge() time.Duration {
	return time.Duration(c.getInt("SESSION_MAX_AGE_HOURS", "database.session_max_age_hours")) * time.Hour
}

// GetMaxHits is the cap on search hits per query.
func (c *Config) GetMaxHits() int {
	return c.getInt("SEARCH_MAX_HITS", "search.max_hits")
}

// GetExcerptWindow is the number of characters of context shown around a match.
func (c *Config) GetExcerptWindow() int {
	return c.getInt("EXCERPT_WINDOW", "search.excerpt_window")
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level")
}

func (c *Config) getString(envKey string, fileKey string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}

	return value
}

func (c *Config) getInt(envKey string, fileKey string) int {
	value := c.config.GetInt(envKey)
	if value <= 0 {
		value = c.config.GetInt(fileKey)
	}

	return value
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
