package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/cli/config"
	"github.com/leapstack-labs/ageview/internal/tui"
)

// DashboardOptions holds options for the dashboard command.
type DashboardOptions struct {
	ExportDir string
	NoChat    bool
}

// NewDashboardCommand creates the dashboard command.
func NewDashboardCommand() *cobra.Command {
	opts := &DashboardOptions{}

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"tui"},
		Short:   "Open the terminal dashboard",
		Long: `Open the interactive terminal dashboard.

The summary screen shows KPI cards, the status table and the distribution
chart. Press enter on a status to page through its orders, / to search,
enter on an order to open its details, e to export and c to chat with the
data assistant.

The terminal belongs to the dashboard while it runs, so logs go to the
rotating log file configured under log.file.`,
		Example: `  # Open the dashboard
  ageview dashboard

  # Write exports to a different directory
  ageview dashboard --export-dir ./exports`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ExportDir, "export-dir", "", "Directory for Excel exports (default: current directory)")
	cmd.Flags().BoolVar(&opts.NoChat, "no-chat", false, "Hide the chat panel")

	return cmd
}

func runDashboard(cmd *cobra.Command, opts *DashboardOptions) error {
	cfg := getConfig()
	logger, closeLog := newFileLogger(cfg.Log, cfg.Verbose)
	defer closeLog()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	cmdCtx := &CommandContext{Cfg: cfg, Logger: logger, Client: client}

	ctrl, err := cmdCtx.NewController()
	if err != nil {
		return err
	}

	var panel *chat.Panel
	if !opts.NoChat {
		store, cleanup, err := cmdCtx.OpenConversation()
		if err != nil {
			return err
		}
		defer cleanup()
		panel = chat.NewPanel(client, store, chat.Options{Logger: logger})
	}

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	ctx := cmd.Context()
	model := tui.New(ctx, tui.Options{
		Client:     client,
		Controller: ctrl,
		Chat:       panel,
		Logger:     logger,
		ExportDir:  exportDir,
	})

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	logger.Info("dashboard started", "backend", client.BaseURL())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// newFileLogger returns a logger writing to a rotating file. Without a
// configured file, logs are discarded.
func newFileLogger(cfg config.LogConfig, verbose bool) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if cfg.File == "" {
		return slog.New(slog.DiscardHandler), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
		return slog.New(slog.DiscardHandler), func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: level})), func() { _ = rotator.Close() }
}
