package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"bskybot/pkg/bluesky"
	"bskybot/pkg/config"
	errs "bskybot/pkg/errors"
	"bskybot/pkg/logger"
	"bskybot/pkg/posts"
	"bskybot/pkg/publisher"
	"bskybot/pkg/richtext"
	"bskybot/pkg/schedule"
	"bskybot/pkg/ui"
)

var (
	// Post command flags
	postInterval  time.Duration
	postMode      string
	postHashtag   string
	baseURL       string
	progressStyle string
	accountName   string
	httpTimeout   time.Duration
)

// postCmd represents the post command
var postCmd = &cobra.Command{
	Use:   "post [posts-file]",
	Short: "Publish every entry of a posts file",
	Long: `Publish every entry of a posts file to Bluesky, in order, one at a time.

The posts file is a JSON array of objects with a "content" field:

  [
    {"content": "First post"},
    {"content": "Second post"}
  ]

YAML files (.yaml, .yml) with the same shape are accepted too.

Credentials are taken from, in order:
  - A stored account selected with --account
  - BSKYBOT_IDENTIFIER / BSKYBOT_PASSWORD (or IDENTIFIER / PASSWORD), also read from .env
  - The configuration file
  - The default stored account (see 'bskybot auth login')

Entries whose final text was already posted during the run are skipped. The
process exits with status 0 once every entry is handled and 1 on any error.`,
	Example: `  # Post posts.json from the current directory, one post an hour
  bskybot post

  # Append #dailyquote to every post and link it
  bskybot post quotes.json --mode hashtag --hashtag "#dailyquote"

  # Show the next post time instead of a live countdown
  bskybot post quotes.json --progress next-time

  # Use a specific stored account
  bskybot post quotes.json --account me.bsky.social`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)

	addPostFlags(postCmd.Flags())
	// Also on root so 'bskybot <file> --mode hashtag' works
	addPostFlags(rootCmd.Flags())
}

func addPostFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&postInterval, "interval", 0, "delay between posts (default 1h)")
	fs.StringVar(&postMode, "mode", "", "post mode: plain or hashtag (default plain)")
	fs.StringVar(&postHashtag, "hashtag", "", "hashtag appended in hashtag mode (default #bot)")
	fs.StringVar(&baseURL, "base-url", "", "XRPC base URL of the PDS (default "+config.DefaultBaseURL+")")
	fs.StringVar(&progressStyle, "progress", "", "wait display: countdown, next-time or none (default countdown)")
	fs.StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	fs.DurationVar(&httpTimeout, "timeout", 0, "HTTP request timeout (default none)")
}

// postFlags collects the flags given on the command line for config.Load
func postFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["posts-file"] = args[0]
	}
	if postInterval != 0 {
		flags["interval"] = postInterval
	}
	if postMode != "" {
		flags["mode"] = postMode
	}
	if postHashtag != "" {
		flags["hashtag"] = postHashtag
	}
	if baseURL != "" {
		flags["base-url"] = baseURL
	}
	if progressStyle != "" {
		flags["progress"] = progressStyle
	}
	if httpTimeout > 0 {
		flags["timeout"] = httpTimeout
	}
	if cmd.Flags().Changed("notifications") {
		flags["notifications"] = notifications
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configFile, postFlags(cmd, args))
	if err != nil {
		return errs.Wrap(errs.ErrorTypeConfig, err, "failed to load configuration")
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errs.Wrap(errs.ErrorTypeConfig, err, "failed to initialize logger")
	}
	log := logger.GetLogger().WithField("version", version)

	creds, err := resolveCredentials(cfg)
	if err != nil {
		return err
	}

	mode, err := richtext.ParseMode(cfg.Publish.Mode)
	if err != nil {
		return err
	}

	items, err := posts.Load(cfg.Publish.PostsFile)
	if err != nil {
		return err
	}

	ui.PrintInfo("Account", creds.Identifier)
	ui.PrintInfo("Posts file", fmt.Sprintf("%s (%d entries)", cfg.Publish.PostsFile, len(items)))
	ui.PrintInfo("Interval", cfg.Publish.Interval.String())

	reporter := ui.NewConsoleReporter(
		cmd.OutOrStdout(),
		ui.ProgressStyle(strings.ToLower(cfg.Publish.Progress)),
		ui.NewNotifier(cfg.Notifications.Enabled, cfg.Notifications.OnComplete, cfg.Notifications.OnError),
	)

	client := bluesky.NewClient(cfg.Bluesky.BaseURL, cfg.HTTP.Timeout, log)
	pub := publisher.New(client, publisher.Options{
		Interval: cfg.Publish.Interval,
		Composer: richtext.NewComposer(mode, cfg.Publish.Hashtag),
		Waiter:   schedule.NewDelay(time.Second, reporter.Progress()),
		Reporter: reporter,
		Logger:   log,
	})

	if _, err := pub.Run(ctx, creds, items); err != nil {
		return err
	}
	return nil
}

// resolveCredentials picks the account to post as. Missing values are passed
// through; the service decides whether they are acceptable.
func resolveCredentials(cfg *config.Config) (publisher.Credentials, error) {
	if accountName != "" {
		manager, err := newCredentialManager()
		if err != nil {
			return publisher.Credentials{}, errs.Wrap(errs.ErrorTypeConfig, err, "failed to initialize credential manager")
		}
		account, err := manager.Retrieve(accountName)
		if err != nil {
			return publisher.Credentials{}, errs.Wrap(errs.ErrorTypeConfig, err, "account not found (see 'bskybot auth status')")
		}
		return publisher.Credentials{Identifier: account.Identifier, Password: account.Password}, nil
	}

	if cfg.Bluesky.Identifier != "" {
		return publisher.Credentials{Identifier: cfg.Bluesky.Identifier, Password: cfg.Bluesky.Password}, nil
	}

	manager, err := newCredentialManager()
	if err == nil {
		if account, err := manager.RetrieveDefault(); err == nil {
			logger.WithField("account", account.Identifier).Info("Using stored credentials")
			return publisher.Credentials{Identifier: account.Identifier, Password: account.Password}, nil
		}
	}

	logger.GetLogger().Warn("No credentials configured; run 'bskybot auth login' or set BSKYBOT_IDENTIFIER and BSKYBOT_PASSWORD")
	return publisher.Credentials{Password: cfg.Bluesky.Password}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
