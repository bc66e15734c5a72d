package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if !config.Settings.BackupOldImages {
		t.Error("Expected backups to be enabled by default")
	}

	if config.Settings.DownloadTimeout != 30*time.Second {
		t.Errorf("Expected default download timeout to be 30s, got %s", config.Settings.DownloadTimeout)
	}

	assert.Equal(t, []string{SourceAPI, SourceScrape, SourcePlaceholder}, config.Sources.Order)
	assert.Equal(t, filepath.Join("images"), config.ImagesPath())
	assert.Equal(t, filepath.Join("data", "instagram-posts.json"), config.MetadataPath())
	assert.Equal(t, filepath.Join("temp", "downloads"), config.TempPath())
	assert.False(t, config.HasAPICredentials())
	assert.NoError(t, config.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGFEED_ACCESS_TOKEN", "test-token")
	t.Setenv("IGFEED_USER_ID", "17841400000000000")
	t.Setenv("IGFEED_USERNAME", "someboutique")
	t.Setenv("IGFEED_SITE_ROOT", "/srv/site")
	t.Setenv("IGFEED_PREFERRED_SOURCE", "MANUAL")
	t.Setenv("IGFEED_BACKUP_OLD_IMAGES", "false")
	t.Setenv("IGFEED_DOWNLOAD_TIMEOUT", "10s")
	t.Setenv("IGFEED_LOG_LEVEL", "debug")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "test-token", config.Instagram.AccessToken)
	assert.Equal(t, "17841400000000000", config.Instagram.UserID)
	assert.Equal(t, "someboutique", config.Instagram.Username)
	assert.Equal(t, "/srv/site", config.Site.Root)
	assert.Equal(t, SourceManual, config.Sources.Preferred)
	assert.False(t, config.Settings.BackupOldImages)
	assert.Equal(t, 10*time.Second, config.Settings.DownloadTimeout)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.True(t, config.HasAPICredentials())
	assert.Equal(t, filepath.Join("/srv/site", "images"), config.ImagesPath())
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Run("backup flag", func(t *testing.T) {
		t.Setenv("IGFEED_BACKUP_OLD_IMAGES", "sometimes")
		assert.Error(t, DefaultConfig().LoadFromEnv())
	})

	t.Run("timeout", func(t *testing.T) {
		t.Setenv("IGFEED_DOWNLOAD_TIMEOUT", "soon")
		assert.Error(t, DefaultConfig().LoadFromEnv())
	})
}

func TestHasAPICredentials(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
		want  bool
	}{
		{"both set", "token", "123", true},
		{"missing token", "", "123", false},
		{"missing user", "token", "", false},
		{"template token", PlaceholderAccessToken, "123", false},
		{"template user", "token", PlaceholderUserID, false},
		{"whitespace token", "   ", "123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Instagram.AccessToken = tt.token
			config.Instagram.UserID = tt.user
			assert.Equal(t, tt.want, config.HasAPICredentials())
		})
	}
}

func TestSourceChain(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, []string{"api", "scrape", "placeholder"}, config.SourceChain())

	config.Sources.Preferred = SourceManual
	assert.Equal(t, []string{"api", "manual", "placeholder"}, config.SourceChain())

	config.Sources.Preferred = "MANUAL"
	assert.Equal(t, []string{"api", "manual", "placeholder"}, config.SourceChain())

	config.Sources.Order = []string{" API ", "Placeholder"}
	assert.Equal(t, []string{"api", "placeholder"}, config.SourceChain())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "empty source order",
			mutate:    func(c *Config) { c.Sources.Order = nil },
			wantError: true,
		},
		{
			name:      "unknown source",
			mutate:    func(c *Config) { c.Sources.Order = []string{"api", "tiktok"} },
			wantError: true,
		},
		{
			name:      "unknown preferred source",
			mutate:    func(c *Config) { c.Sources.Preferred = "carrier-pigeon" },
			wantError: true,
		},
		{
			name:      "preferred api has no effect",
			mutate:    func(c *Config) { c.Sources.Preferred = SourceAPI },
			wantError: true,
		},
		{
			name:      "preferred placeholder has no effect",
			mutate:    func(c *Config) { c.Sources.Preferred = SourcePlaceholder },
			wantError: true,
		},
		{
			name:      "preferred manual mixed case",
			mutate:    func(c *Config) { c.Sources.Preferred = " Manual " },
			wantError: false,
		},
		{
			name:      "missing images dir",
			mutate:    func(c *Config) { c.Site.ImagesDir = "" },
			wantError: true,
		},
		{
			name:      "zero timeout",
			mutate:    func(c *Config) { c.Settings.DownloadTimeout = 0 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
		{
			name:      "missing credentials are allowed",
			mutate:    func(c *Config) { c.Instagram.AccessToken = "" },
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "igfeed.yaml")

	configContent := `
instagram:
  access_token: "file-token"
  user_id: "42"
sources:
  order: ["api", "placeholder"]
site:
  root: "/var/www/boutique"
settings:
  backup_old_images: false
  download_timeout: 45s
logging:
  level: "warn"
`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(configPath))

	assert.Equal(t, "file-token", config.Instagram.AccessToken)
	assert.Equal(t, "42", config.Instagram.UserID)
	assert.Equal(t, []string{"api", "placeholder"}, config.Sources.Order)
	assert.Equal(t, "/var/www/boutique", config.Site.Root)
	assert.False(t, config.Settings.BackupOldImages)
	assert.Equal(t, 45*time.Second, config.Settings.DownloadTimeout)
	assert.Equal(t, "warn", config.Logging.Level)

	// Untouched keys keep their defaults
	assert.Equal(t, "images", config.Site.ImagesDir)
	assert.Equal(t, "Cedar & Oak Boutique", config.Site.Name)
}

func TestLoadFromFileErrors(t *testing.T) {
	config := DefaultConfig()
	assert.Error(t, config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("instagram: [unterminated"), 0644))
	assert.Error(t, config.LoadFromFile(badPath))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "igfeed.yaml")

	original := DefaultConfig()
	original.Instagram.UserID = "99"
	original.Settings.DownloadTimeout = 12 * time.Second
	require.NoError(t, original.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, original, loaded)
}

func TestLoadPrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	configPath := filepath.Join(t.TempDir(), "igfeed.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
site:
  root: "/from/file"
logging:
  level: "warn"
`), 0644))

	t.Setenv("IGFEED_SITE_ROOT", "/from/env")

	flags := map[string]interface{}{
		"source":    "manual",
		"no-backup": true,
	}

	config, err := Load(configPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", config.Site.Root)
	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, []string{"manual"}, config.SourceChain())
	assert.False(t, config.Settings.BackupOldImages)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load("", map[string]interface{}{"source": "fax"})
	assert.Error(t, err)
}
