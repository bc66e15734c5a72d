package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igfeed/pkg/auth"
	"igfeed/pkg/config"
	"igfeed/pkg/logger"
	"igfeed/pkg/source"
	"igfeed/pkg/ui"
)

// defaultConfigPath is where `config init` writes when --config is not given
const defaultConfigPath = ".igfeed.yaml"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igfeed configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGFEED_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.igfeed.yaml' in the current directory unless a
different path is given with --config. An existing file is never overwritten.`,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.
The access token is masked.`,
	RunE: runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the configuration and report which sources are usable.

This command checks:
  - YAML syntax
  - Source names and order
  - Site paths
  - API credentials and the manual directory`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const configTemplate = `# igfeed configuration
#
# Environment variables prefixed with IGFEED_ override these values,
# e.g. IGFEED_ACCESS_TOKEN, IGFEED_USER_ID, IGFEED_SITE_ROOT.

instagram:
  # Long-lived Graph API token and numeric user id.
  # Leave the template values in place to skip the API source.
  # 'igfeed auth login' stores the token outside this file.
  access_token: "%s"
  user_id: "%s"
  api_version: "v18.0"

  # Public profile used by the scrape source
  username: "cedarandoakboutique"
  user_agent: ""

sources:
  # Fallback chain, first source with posts wins
  order: [api, scrape, placeholder]

  # scrape or manual: which one runs after the api source
  preferred: scrape

  # Folder scanned by the manual source
  manual_dir: "~/Downloads"
  manual_patterns: ["*.jpg", "*.jpeg"]

site:
  name: "Cedar & Oak Boutique"
  root: "."
  images_dir: "images"
  metadata_file: "data/instagram-posts.json"
  temp_dir: "temp"

settings:
  # Copy the current slots to images/backups/<timestamp> before writing
  backup_old_images: true
  update_interval_hours: 6
  download_timeout: 30s
  image_quality: "high"

logging:
  # debug, info, warn, error
  level: "info"
  # Optional log file, stderr when empty
  file: ""
`

func configTemplateText() string {
	return fmt.Sprintf(configTemplate, config.PlaceholderAccessToken, config.PlaceholderUserID)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		return errRunFailed
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(configTemplateText()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.PrintSuccess("Configuration file created")
	ui.PrintInfo("Path", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the site paths and username")
	fmt.Println("  2. Store a Graph API token with 'igfeed auth login --user-id <id>'")
	fmt.Println("  3. Run 'igfeed config validate'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	masked := *cfg
	if masked.Instagram.AccessToken != "" && masked.Instagram.AccessToken != config.PlaceholderAccessToken {
		masked.Instagram.AccessToken = auth.MaskToken(masked.Instagram.AccessToken)
	}

	data, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	ui.PrintHighlight("Effective configuration")
	fmt.Println(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		ui.PrintError("Configuration is invalid", err)
		return errRunFailed
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Source chain", fmt.Sprintf("%v", cfg.SourceChain()))
	ui.PrintInfo("Images", cfg.ImagesPath())
	ui.PrintInfo("Metadata", cfg.MetadataPath())

	for _, warning := range configWarnings(cfg) {
		ui.PrintWarning(warning)
	}
	return nil
}

// configWarnings lists usable-but-degraded settings
func configWarnings(cfg *config.Config) []string {
	var warnings []string

	for _, name := range cfg.SourceChain() {
		switch name {
		case config.SourceAPI:
			userID := cfg.Instagram.UserID
			if userID == "" || userID == config.PlaceholderUserID {
				warnings = append(warnings, "api source has no user id and will be skipped")
			} else if !cfg.HasAPICredentials() && storedToken(cfg, logger.NewNopLogger()) == "" {
				warnings = append(warnings, "api source has no access token and will be skipped")
			}
		case config.SourceScrape:
			if cfg.Instagram.Username == "" {
				warnings = append(warnings, "scrape source has no username and will be skipped")
			}
		case config.SourceManual:
			if info, err := os.Stat(source.ExpandHome(cfg.Sources.ManualDir)); err != nil || !info.IsDir() {
				warnings = append(warnings, fmt.Sprintf("manual directory %q does not exist", cfg.Sources.ManualDir))
			}
		}
	}

	if info, err := os.Stat(cfg.Site.Root); err != nil || !info.IsDir() {
		warnings = append(warnings, fmt.Sprintf("site root %q does not exist", cfg.Site.Root))
	}
	return warnings
}
