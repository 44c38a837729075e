package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sharebox-go/internal/config"
	"sharebox-go/internal/logger"
	"sharebox-go/internal/share"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sharebox: %v\n", err)
		os.Exit(1)
	}
}

// app carries the persistent flags and whatever they resolve to.
type app struct {
	apiURL  string
	origin  string
	timeout time.Duration

	cfg    *config.Config
	client *share.Client
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "sharebox",
		Short: "Share files and text through short-lived links",
		Long: `sharebox uploads files or a text snippet to the sharing service and prints a link
plus a 6-digit access code. Receivers redeem the code (or open the link) before it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env := os.Getenv("APP_ENV")
			if env == "" {
				env = "production"
			}
			logger.InitWriter(env, os.Stderr)
		},
	}
	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Sharing backend base URL (overrides SHAREBOX_API_URL)")
	cmd.PersistentFlags().StringVar(&a.origin, "origin", "", "Origin share links are built on (overrides SHAREBOX_ORIGIN)")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Per-request deadline, 0 keeps SHAREBOX_REQUEST_TIMEOUT")
	cmd.AddCommand(
		newSendCmd(a),
		newReceiveCmd(a),
		newOpenCmd(a),
		newDownloadsCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration once and builds the backend client.
func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.NewConfig(config.WithAPIURL(a.apiURL), config.WithOrigin(a.origin))
	if err != nil {
		return err
	}
	if a.timeout > 0 {
		cfg.RequestTimeout = a.timeout
	}
	logger.InitWriter(cfg.Env, os.Stderr)

	client, err := share.NewClient(cfg.APIURL, cfg.Origin, share.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	log.Debug().
		Str("api_url", cfg.APIURL).
		Dur("timeout", cfg.RequestTimeout).
		Msg("client ready")

	a.cfg = cfg
	a.client = client
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sharebox %s\n%s\n", version, formatVersionInfo())
		},
	}
}

func formatVersionInfo() string {
	return fmt.Sprintf(`Version: %s
Commit: %s
Built: %s`, version, commit, date)
}
