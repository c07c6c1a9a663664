package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/ageview/internal/api"
	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/cli/config"
	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/internal/dataset"
	"github.com/leapstack-labs/ageview/internal/state"
	"github.com/spf13/cobra"
)

// Version is reported in the backend User-Agent header. The root command sets it.
var Version = "dev"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Client   *api.Client
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a backend client and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Client:   client,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, nil
}

// NewController builds a windowed dataset controller over the backend client.
func (c *CommandContext) NewController() (*dataset.Controller, error) {
	return dataset.New(c.Client, dataset.Options{
		PageSize:   c.Cfg.Details.PageSize,
		CachePages: c.Cfg.Details.CachePages,
		Logger:     c.Logger,
	})
}

// OpenConversation opens the durable transcript for the configured session key.
// The returned cleanup closes the state database.
func (c *CommandContext) OpenConversation() (chat.Store, func(), error) {
	store, err := state.OpenAndMigrate(c.Cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state: %w", err)
	}
	return store.Conversation(c.Cfg.Chat.SessionKey), func() { _ = store.Close() }, nil
}

// rendererFor honors a command-local --format override.
func (c *CommandContext) rendererFor(cmd *cobra.Command, format string) *output.Renderer {
	switch format {
	case "json":
		return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeJSON)
	case "yaml":
		return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeYAML)
	}
	return c.Renderer
}

// getConfig returns the loaded configuration, or defaults when no
// configuration was loaded (commands constructed directly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

func newClient(cfg *config.Config, logger *slog.Logger) (*api.Client, error) {
	client, err := api.New(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: "ageview/" + Version,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return client, nil
}
