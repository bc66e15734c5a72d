package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Template values written by `igfeed config init`; treated as unset
const (
	PlaceholderAccessToken = "YOUR_INSTAGRAM_ACCESS_TOKEN_HERE"
	PlaceholderUserID      = "YOUR_INSTAGRAM_USER_ID_HERE"
)

// Source names accepted in sources.order and --source
const (
	SourceAPI         = "api"
	SourceScrape      = "scrape"
	SourceManual      = "manual"
	SourcePlaceholder = "placeholder"
)

// Config holds all configuration options for a gallery refresh
type Config struct {
	// Instagram credentials and profile
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Source fallback chain
	Sources SourcesConfig `yaml:"sources" json:"sources"`

	// Static site layout
	Site SiteConfig `yaml:"site" json:"site"`

	// Run settings
	Settings SettingsConfig `yaml:"settings" json:"settings"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	AccessToken string `yaml:"access_token" json:"access_token"`
	UserID      string `yaml:"user_id" json:"user_id"`
	APIVersion  string `yaml:"api_version" json:"api_version"`
	Username    string `yaml:"username" json:"username"`
	UserAgent   string `yaml:"user_agent" json:"user_agent"`
}

// SourcesConfig controls which sources are tried and in what order
type SourcesConfig struct {
	Order          []string `yaml:"order" json:"order"`
	Preferred      string   `yaml:"preferred" json:"preferred"`
	ManualDir      string   `yaml:"manual_dir" json:"manual_dir"`
	ManualPatterns []string `yaml:"manual_patterns" json:"manual_patterns"`
}

// SiteConfig describes where the static site expects its files
type SiteConfig struct {
	Name         string `yaml:"name" json:"name"`
	Root         string `yaml:"root" json:"root"`
	ImagesDir    string `yaml:"images_dir" json:"images_dir"`
	MetadataFile string `yaml:"metadata_file" json:"metadata_file"`
	TempDir      string `yaml:"temp_dir" json:"temp_dir"`
}

// SettingsConfig holds per-run behaviour toggles
type SettingsConfig struct {
	BackupOldImages     bool          `yaml:"backup_old_images" json:"backup_old_images"`
	UpdateIntervalHours int           `yaml:"update_interval_hours" json:"update_interval_hours"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	ImageQuality        string        `yaml:"image_quality" json:"image_quality"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Instagram: InstagramConfig{
			APIVersion: "v18.0",
			Username:   "cedarandoakboutique",
			UserAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Sources: SourcesConfig{
			Order:          []string{SourceAPI, SourceScrape, SourcePlaceholder},
			Preferred:      SourceScrape,
			ManualDir:      filepath.Join(home, "Downloads"),
			ManualPatterns: []string{"*.jpg", "*.jpeg"},
		},
		Site: SiteConfig{
			Name:         "Cedar & Oak Boutique",
			Root:         ".",
			ImagesDir:    "images",
			MetadataFile: filepath.Join("data", "instagram-posts.json"),
			TempDir:      "temp",
		},
		Settings: SettingsConfig{
			BackupOldImages:     true,
			UpdateIntervalHours: 6,
			DownloadTimeout:     30 * time.Second,
			ImageQuality:        "high",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// HasAPICredentials reports whether the Graph API source can run
func (c *Config) HasAPICredentials() bool {
	token := strings.TrimSpace(c.Instagram.AccessToken)
	user := strings.TrimSpace(c.Instagram.UserID)
	return token != "" && token != PlaceholderAccessToken &&
		user != "" && user != PlaceholderUserID
}

// ImagesPath returns the absolute-or-relative slot directory
func (c *Config) ImagesPath() string {
	return c.sitePath(c.Site.ImagesDir)
}

// MetadataPath returns the sidecar JSON location
func (c *Config) MetadataPath() string {
	return c.sitePath(c.Site.MetadataFile)
}

// TempPath returns the transient download directory for the scrape source
func (c *Config) TempPath() string {
	return filepath.Join(c.sitePath(c.Site.TempDir), "downloads")
}

func (c *Config) sitePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Site.Root, p)
}

// SourceChain returns the ordered source names to attempt. preferred picks
// which of scrape and manual fills the second position of the chain.
func (c *Config) SourceChain() []string {
	preferred := strings.ToLower(strings.TrimSpace(c.Sources.Preferred))
	chain := make([]string, 0, len(c.Sources.Order))
	for _, name := range c.Sources.Order {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == SourceScrape && preferred == SourceManual {
			name = SourceManual
		}
		chain = append(chain, name)
	}
	return chain
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("IGFEED_ACCESS_TOKEN"); token != "" {
		c.Instagram.AccessToken = token
	}
	if userID := os.Getenv("IGFEED_USER_ID"); userID != "" {
		c.Instagram.UserID = userID
	}
	if username := os.Getenv("IGFEED_USERNAME"); username != "" {
		c.Instagram.Username = username
	}
	if root := os.Getenv("IGFEED_SITE_ROOT"); root != "" {
		c.Site.Root = root
	}
	if dir := os.Getenv("IGFEED_MANUAL_DIR"); dir != "" {
		c.Sources.ManualDir = dir
	}
	if preferred := os.Getenv("IGFEED_PREFERRED_SOURCE"); preferred != "" {
		c.Sources.Preferred = strings.ToLower(preferred)
	}
	if backup := os.Getenv("IGFEED_BACKUP_OLD_IMAGES"); backup != "" {
		v, err := strconv.ParseBool(backup)
		if err != nil {
			return fmt.Errorf("invalid IGFEED_BACKUP_OLD_IMAGES: %w", err)
		}
		c.Settings.BackupOldImages = v
	}
	if timeout := os.Getenv("IGFEED_DOWNLOAD_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid IGFEED_DOWNLOAD_TIMEOUT: %w", err)
		}
		c.Settings.DownloadTimeout = d
	}
	if logLevel := os.Getenv("IGFEED_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
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
		".igfeed.yaml",
		".igfeed.yml",
		filepath.Join("config", "igfeed.yaml"),
		filepath.Join(home, ".config", "igfeed", "config.yaml"),
		filepath.Join(home, ".igfeed.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Missing API credentials are
// not an error: the API source reports itself unconfigured and the chain moves on.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Sources.Order) == 0 {
		errs = append(errs, errors.New("sources.order must list at least one source"))
	}
	for _, name := range c.SourceChain() {
		if !isKnownSource(name) {
			errs = append(errs, fmt.Errorf("unknown source %q", name))
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Sources.Preferred)) {
	case "", SourceScrape, SourceManual:
	default:
		errs = append(errs, fmt.Errorf("sources.preferred must be %q or %q, got %q",
			SourceScrape, SourceManual, c.Sources.Preferred))
	}

	if c.Site.Root == "" {
		errs = append(errs, errors.New("site root is required"))
	}
	if c.Site.ImagesDir == "" {
		errs = append(errs, errors.New("images directory is required"))
	}
	if c.Site.MetadataFile == "" {
		errs = append(errs, errors.New("metadata file is required"))
	}

	if c.Settings.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func isKnownSource(name string) bool {
	switch name {
	case SourceAPI, SourceScrape, SourceManual, SourcePlaceholder:
		return true
	}
	return false
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
	if root, ok := flags["site"].(string); ok && root != "" {
		c.Site.Root = root
	}
	if source, ok := flags["source"].(string); ok && source != "" {
		c.Sources.Order = []string{strings.ToLower(source)}
		c.Sources.Preferred = ""
	}
	if noBackup, ok := flags["no-backup"].(bool); ok && noBackup {
		c.Settings.BackupOldImages = false
	}
	if manualDir, ok := flags["manual-dir"].(string); ok && manualDir != "" {
		c.Sources.ManualDir = manualDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igfeed.env"))

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
