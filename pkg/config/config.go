package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the XRPC endpoint of the main Bluesky PDS
const DefaultBaseURL = "https://bsky.social/xrpc"

var hashtagPattern = regexp.MustCompile(`^#\w+$`)

// Config holds all configuration options for the bot
type Config struct {
	// Bluesky account and endpoint
	Bluesky BlueskyConfig `yaml:"bluesky" json:"bluesky"`

	// Publishing cadence and post construction
	Publish PublishConfig `yaml:"publish" json:"publish"`

	// Outbound HTTP settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BlueskyConfig holds account credentials and the service endpoint
type BlueskyConfig struct {
	Identifier string `yaml:"identifier" json:"identifier"`
	Password   string `yaml:"password" json:"password"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
}

// PublishConfig controls what gets posted and how often
type PublishConfig struct {
	PostsFile string        `yaml:"posts_file" json:"posts_file"`
	Interval  time.Duration `yaml:"interval" json:"interval"`
	Mode      string        `yaml:"mode" json:"mode"`
	Hashtag   string        `yaml:"hashtag" json:"hashtag"`
	Progress  string        `yaml:"progress" json:"progress"`
}

// HTTPConfig holds transport settings. A zero timeout leaves requests unbounded.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bluesky: BlueskyConfig{
			BaseURL: DefaultBaseURL,
		},
		Publish: PublishConfig{
			PostsFile: "posts.json",
			Interval:  time.Hour,
			Mode:      "plain",
			Hashtag:   "#bot",
			Progress:  "countdown",
		},
		HTTP: HTTPConfig{
			Timeout: 0,
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// The bare IDENTIFIER/PASSWORD pair is what existing .env files for the bot use
	if identifier := firstEnv("BSKYBOT_IDENTIFIER", "IDENTIFIER"); identifier != "" {
		c.Bluesky.Identifier = identifier
	}
	if password := firstEnv("BSKYBOT_PASSWORD", "PASSWORD"); password != "" {
		c.Bluesky.Password = password
	}
	if baseURL := os.Getenv("BSKYBOT_BASE_URL"); baseURL != "" {
		c.Bluesky.BaseURL = baseURL
	}

	if postsFile := os.Getenv("BSKYBOT_POSTS_FILE"); postsFile != "" {
		c.Publish.PostsFile = postsFile
	}
	if interval := os.Getenv("BSKYBOT_POST_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid BSKYBOT_POST_INTERVAL: %w", err)
		}
		c.Publish.Interval = d
	}
	if mode := os.Getenv("BSKYBOT_MODE"); mode != "" {
		c.Publish.Mode = mode
	}
	if hashtag := os.Getenv("BSKYBOT_HASHTAG"); hashtag != "" {
		c.Publish.Hashtag = hashtag
	}
	if progress := os.Getenv("BSKYBOT_PROGRESS"); progress != "" {
		c.Publish.Progress = progress
	}

	if timeout := os.Getenv("BSKYBOT_HTTP_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid BSKYBOT_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}

	if notifEnabled := os.Getenv("BSKYBOT_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("BSKYBOT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("BSKYBOT_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".bskybot.yaml",
		".bskybot.yml",
		filepath.Join(home, ".config", "bskybot", "config.yaml"),
		filepath.Join(home, ".config", "bskybot", "config.yml"),
		filepath.Join(home, ".bskybot.yaml"),
		filepath.Join(home, ".bskybot.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credentials are left to the
// service to judge.
func (c *Config) Validate() error {
	var errs []error

	if c.Bluesky.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}

	if c.Publish.PostsFile == "" {
		errs = append(errs, errors.New("posts file is required"))
	}
	if c.Publish.Interval <= 0 {
		errs = append(errs, errors.New("post interval must be positive"))
	}

	switch strings.ToLower(c.Publish.Mode) {
	case "plain":
	case "hashtag":
		if !hashtagPattern.MatchString(c.Publish.Hashtag) {
			errs = append(errs, fmt.Errorf("hashtag %q must be '#' followed by word characters", c.Publish.Hashtag))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid post mode %q (plain, hashtag)", c.Publish.Mode))
	}

	validProgress := map[string]bool{
		"countdown": true, "next-time": true, "none": true,
	}
	if !validProgress[strings.ToLower(c.Publish.Progress)] {
		errs = append(errs, fmt.Errorf("invalid progress style %q", c.Publish.Progress))
	}

	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("http timeout cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if identifier, ok := flags["identifier"].(string); ok && identifier != "" {
		c.Bluesky.Identifier = identifier
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Bluesky.BaseURL = baseURL
	}
	if postsFile, ok := flags["posts-file"].(string); ok && postsFile != "" {
		c.Publish.PostsFile = postsFile
	}
	if interval, ok := flags["interval"].(time.Duration); ok && interval != 0 {
		c.Publish.Interval = interval
	}
	if mode, ok := flags["mode"].(string); ok && mode != "" {
		c.Publish.Mode = mode
	}
	if hashtag, ok := flags["hashtag"].(string); ok && hashtag != "" {
		c.Publish.Hashtag = hashtag
	}
	if progress, ok := flags["progress"].(string); ok && progress != "" {
		c.Publish.Progress = progress
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.HTTP.Timeout = timeout
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bskybot.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
