package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bskybot/pkg/config"
	"bskybot/pkg/posts"
	"bskybot/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage bskybot configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (BSKYBOT_*) and .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as 'bskybot.yaml' unless a
different path is given with --config.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

The password is masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and the posts file",
	Long: `Validate the configuration and check that the posts file can be read.

This command checks:
  - YAML syntax
  - Value ranges (interval, mode, hashtag, progress, log level)
  - That the posts file parses`,
	RunE: runConfigValidate,
}

const exampleConfig = `# bskybot configuration file
#
# Environment variables override these values:
#   BSKYBOT_IDENTIFIER, BSKYBOT_PASSWORD, BSKYBOT_POSTS_FILE, BSKYBOT_POST_INTERVAL, ...
# A .env file in the working directory is read as well.

bluesky:
  # Handle or email of the account. Prefer 'bskybot auth login' to storing
  # the password here.
  identifier: ""
  password: ""

  # XRPC endpoint of the account's PDS
  base_url: "https://bsky.social/xrpc"

publish:
  # JSON (or YAML) array of {"content": "..."} objects
  posts_file: "posts.json"

  # Delay between posts
  interval: 1h

  # plain: post the content as-is
  # hashtag: append the hashtag below and link every hashtag in the post
  mode: "plain"
  hashtag: "#bot"

  # countdown, next-time or none
  progress: "countdown"

http:
  # Request timeout; 0 waits indefinitely
  timeout: 0s

notifications:
  enabled: false
  on_complete: true
  on_error: true

logging:
  # debug, info, warn, error, disabled
  level: "info"

  # Optional log file, in addition to stderr
  file: ""
`

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = "bskybot.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Store credentials with 'bskybot auth login'")
	fmt.Fprintf(out, "2. Run 'bskybot config validate --config %s'\n", configPath)
	fmt.Fprintln(out, "3. Start posting with 'bskybot post'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	display := *cfg
	if display.Bluesky.Password != "" {
		display.Bluesky.Password = "********"
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Bluesky.Identifier == "" {
		ui.PrintWarning("No identifier configured", "stored credentials will be used")
	}

	items, err := posts.Load(cfg.Publish.PostsFile)
	if err != nil {
		return err
	}

	ui.PrintSuccess("Configuration is valid")
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Posts file: %s (%d entries)\n", cfg.Publish.PostsFile, len(items))
	fmt.Fprintf(out, "  Interval: %s\n", cfg.Publish.Interval)
	fmt.Fprintf(out, "  Mode: %s\n", cfg.Publish.Mode)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
