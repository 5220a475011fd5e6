package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"obd-mqtt-logger/internal/logger"
)

// Config represents the complete process configuration.
// Keys follow the historical environment variable names; the same names
// work in the YAML config file, environment always wins.
type Config struct {
	MQTT    MQTTConfig
	TSDB    TSDBConfig
	Logging logger.LoggingConfig

	// LogFilePath is the consumer's append-log target. The producer takes
	// its logfile from the command line instead.
	LogFilePath string

	// CatalogPath optionally points at a YAML file overriding the
	// built-in deny-list and raw-override tables
	CatalogPath string
}

// MQTTConfig contains broker and client settings shared by both binaries
type MQTTConfig struct {
	URL        string
	Port       int
	CertPath   string
	ClientID   string
	Username   string
	Password   string
	Domain     string
	RetryDelay int // delay between liveness polls in milliseconds
}

// TSDBConfig contains InfluxDB settings for the consumer
type TSDBConfig struct {
	URL      string
	Port     int
	Protocol string
	Token    string
	Username string
	Password string
	Org      string
	Bucket   string
}

// ServerURL assembles the full store URL
func (t *TSDBConfig) ServerURL() string {
	return fmt.Sprintf("%s://%s:%d", t.Protocol, t.URL, t.Port)
}

// AuthToken returns the access token, falling back to username:password
// for 1.x-compatibility endpoints
func (t *TSDBConfig) AuthToken() string {
	if t.Token != "" {
		return t.Token
	}
	return t.Username + ":" + t.Password
}

// defaultPaths are tried in order when no explicit config path is given
var defaultPaths = []string{
	"/etc/mqtt-logger/mqtt_logger.yaml",
	"./mqtt_logger.yaml",
}

// Load reads configuration from the environment and, for any key the
// environment does not provide, from a YAML config file. A missing file
// is only an error when required keys stay unresolved.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("MQTT_PORT", 8883)
	v.SetDefault("MQTT_DOMAIN", "toyota")
	v.SetDefault("MQTT_RETRY_DELAY", 5000)
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("TSDB_PROTOCOL", "https")
	v.SetDefault("TSDB_PORT", 8086)

	paths := defaultPaths
	if configPath != "" {
		paths = []string{configPath}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error parsing configuration from %s: %w", path, err)
		}
		break
	}

	cfg := &Config{
		MQTT: MQTTConfig{
			URL:        v.GetString("MQTT_URL"),
			Port:       v.GetInt("MQTT_PORT"),
			CertPath:   v.GetString("CERT_PATH"),
			ClientID:   v.GetString("CLIENT_ID"),
			Username:   v.GetString("CLIENT_USERNAME"),
			Password:   v.GetString("CLIENT_PASSWORD"),
			Domain:     v.GetString("MQTT_DOMAIN"),
			RetryDelay: v.GetInt("MQTT_RETRY_DELAY"),
		},
		TSDB: TSDBConfig{
			URL:      v.GetString("TSDB_URL"),
			Port:     v.GetInt("TSDB_PORT"),
			Protocol: v.GetString("TSDB_PROTOCOL"),
			Token:    v.GetString("TSDB_TOKEN"),
			Username: v.GetString("TSDB_USERNAME"),
			Password: v.GetString("TSDB_PASSWORD"),
			Org:      v.GetString("TSDB_ORG"),
			Bucket:   v.GetString("TSDB_BUCKET"),
		},
		Logging: logger.LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("PROCESS_LOG_FILE"),
		},
		LogFilePath: v.GetString("LOG_FILE_PATH"),
		CatalogPath: v.GetString("CATALOG_PATH"),
	}

	return cfg, nil
}

// Validate checks the settings both binaries depend on
func (c *Config) Validate() error {
	if c.MQTT.URL == "" {
		return fmt.Errorf("MQTT_URL is not specified")
	}
	if c.MQTT.Port <= 0 {
		return fmt.Errorf("MQTT_PORT must be positive")
	}
	if c.MQTT.ClientID == "" {
		return fmt.Errorf("CLIENT_ID is not specified")
	}
	if c.MQTT.RetryDelay <= 0 {
		return fmt.Errorf("MQTT_RETRY_DELAY must be positive")
	}
	switch c.Logging.Level {
	case "DEBUG", "INFO", "WARNING", "ERROR", "debug", "info", "warning", "warn", "error":
	default:
		return fmt.Errorf("unexpected logging level provided: %s", c.Logging.Level)
	}
	return nil
}

// ValidateConsumer checks the additional settings the consumer needs
func (c *Config) ValidateConsumer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.LogFilePath == "" {
		return fmt.Errorf("LOG_FILE_PATH is not specified")
	}
	if c.TSDB.URL == "" {
		return fmt.Errorf("TSDB_URL is not specified")
	}
	if c.TSDB.Token == "" && c.TSDB.Username == "" {
		return fmt.Errorf("neither TSDB_TOKEN nor TSDB_USERNAME is specified")
	}
	if c.TSDB.Org == "" {
		return fmt.Errorf("TSDB_ORG is not specified")
	}
	if c.TSDB.Bucket == "" {
		return fmt.Errorf("TSDB_BUCKET is not specified")
	}
	return nil
}

// ChangeCallback is invoked with the re-read configuration after the
// config file changes on disk
type ChangeCallback func(cfg *Config) error

// Watch re-reads the config file on change and hands the result to the
// callback. Only used for settings that are safe to apply at runtime
// (currently the log level).
func Watch(configPath string, callback ChangeCallback) error {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(absPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	v.WatchConfig()

	// Debounce: editors fire several write events per save
	var lastChange time.Time
	const debounceInterval = 2 * time.Second

	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&fsnotify.Write != fsnotify.Write {
			return
		}
		now := time.Now()
		if now.Sub(lastChange) < debounceInterval {
			return
		}
		lastChange = now

		logger.LogInfo("Configuration file changed: %s", e.Name)

		newCfg, err := Load(absPath)
		if err != nil {
			logger.LogError("Failed to reload configuration: %v", err)
			return
		}
		if err := callback(newCfg); err != nil {
			logger.LogError("Failed to apply new configuration: %v", err)
		}
	})

	return nil
}
