// config.go - Tracker configuration management
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ConfigServer struct {
	Address         string `toml:"address"`
	RateLimitPerSec int    `toml:"rateLimitPerSec"`
}

type ConfigJobs struct {
	HeartbeatTimeoutSeconds int `toml:"heartbeatTimeoutSeconds"` // Push subscriber liveness timeout
	RetentionMinutes        int `toml:"retentionMinutes"`        // Terminal job retention before expiry
	ReapIntervalSeconds     int `toml:"reapIntervalSeconds"`     // Reaper tick interval
	SubscriberBuffer        int `toml:"subscriberBuffer"`        // Per-subscriber event channel depth
}

type ConfigWebhook struct {
	URL            string `toml:"url"`            // Empty disables completion webhooks
	TimeoutSeconds int    `toml:"timeoutSeconds"` // Per-attempt request timeout
	MaxRetries     int    `toml:"maxRetries"`
}

type ConfigLog struct {
	Level string `toml:"level"`
}

// Tracker configuration file structure
type TrackerConfig struct {
	Server  ConfigServer  `toml:"server"`
	Jobs    ConfigJobs    `toml:"jobs"`
	Webhook ConfigWebhook `toml:"webhook"`
	Log     ConfigLog     `toml:"log"`
}

var DefaultConfigServer = ConfigServer{
	Address:         "localhost:11390",
	RateLimitPerSec: 100,
}

var DefaultConfigJobs = ConfigJobs{
	HeartbeatTimeoutSeconds: 60,
	RetentionMinutes:        30,
	ReapIntervalSeconds:     30,
	SubscriberBuffer:        16,
}

var DefaultConfigWebhook = ConfigWebhook{
	URL:            "",
	TimeoutSeconds: 5,
	MaxRetries:     3,
}

var DefaultConfigLog = ConfigLog{
	Level: "info",
}

// DefaultTrackerConfig returns the built-in defaults
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Server:  DefaultConfigServer,
		Jobs:    DefaultConfigJobs,
		Webhook: DefaultConfigWebhook,
		Log:     DefaultConfigLog,
	}
}

// Global tracker configuration
var trackerConfig = DefaultTrackerConfig()

// Value tracker configuration
func GetTrackerConfig() TrackerConfig {
	return trackerConfig
}

// Set tracker configuration
func SetTrackerConfig(config TrackerConfig) {
	trackerConfig = config
}

// LoadTrackerConfig loads configuration from a TOML file over the defaults.
// A missing file is not an error; the defaults stay in effect.
func LoadTrackerConfig(configPath string) error {
	cfg := DefaultTrackerConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			trackerConfig = cfg
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := validateTrackerConfig(&cfg); err != nil {
		return err
	}

	trackerConfig = cfg
	return nil
}

// validateTrackerConfig rejects values the tracker cannot run with
func validateTrackerConfig(cfg *TrackerConfig) error {
	if cfg.Jobs.HeartbeatTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid jobs.heartbeatTimeoutSeconds: %d", cfg.Jobs.HeartbeatTimeoutSeconds)
	}
	if cfg.Jobs.RetentionMinutes <= 0 {
		return fmt.Errorf("invalid jobs.retentionMinutes: %d", cfg.Jobs.RetentionMinutes)
	}
	if cfg.Jobs.SubscriberBuffer <= 0 {
		cfg.Jobs.SubscriberBuffer = DefaultConfigJobs.SubscriberBuffer
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = DefaultConfigServer.RateLimitPerSec
	}
	return nil
}

// HeartbeatTimeout returns the subscriber liveness timeout as a duration
func (c ConfigJobs) HeartbeatTimeout() time.Duration {
	return time.Duration(c.HeartbeatTimeoutSeconds) * time.Second
}

// Retention returns the terminal job retention window as a duration
func (c ConfigJobs) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// ReapInterval returns the reaper tick interval as a duration
func (c ConfigJobs) ReapInterval() time.Duration {
	return time.Duration(c.ReapIntervalSeconds) * time.Second
}
