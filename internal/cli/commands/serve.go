package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/cli/config"
	"github.com/leapstack-labs/ageview/internal/state"
	"github.com/leapstack-labs/ageview/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the browser dashboard",
		Long: `Start a local web server with the browser dashboard.

The dashboard provides:
- KPI cards, the status summary and the distribution chart
- Infinite-scrolling order details with search and a detail drawer
- Excel export of the summary and of the selected status
- The data assistant chat panel

Every browser session gets its own details view and chat transcript.`,
		Example: `  # Start on the default port
  ageview serve

  # Start on a custom port without opening a browser
  ageview serve --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	port := cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := cfg.UI.AutoOpen && !opts.NoBrowser

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	db, err := state.OpenAndMigrate(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	defer func() { _ = db.Close() }()

	server := ui.NewServer(ui.Config{
		Client: client,
		Conversations: func(sessionID string) chat.Store {
			return db.Conversation(cfg.Chat.SessionKey + ":" + sessionID)
		},
		Port:          port,
		SessionSecret: sessionSecret(cfg.UI.SessionSecret),
		SessionTTL:    cfg.UI.SessionTTL,
		PageSize:      cfg.Details.PageSize,
		CachePages:    cfg.Details.CachePages,
		Logger:        logger,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Starting dashboard on %s (backend %s)\n", url, client.BaseURL())
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret returns the configured cookie secret, or a random one. A
// random secret logs every browser out when the server restarts.
func sessionSecret(configured string) []byte {
	if configured != "" {
		return []byte(configured)
	}
	return securecookie.GenerateRandomKey(32)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
