package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/pkg/core"
)

// ChatOptions holds options for the chat command.
type ChatOptions struct {
	Clear   bool
	History bool
}

// NewChatCommand creates the chat command.
func NewChatCommand() *cobra.Command {
	opts := &ChatOptions{}

	cmd := &cobra.Command{
		Use:   "chat [query]",
		Short: "Ask the data assistant a question",
		Long: `Send a question to the backend's data assistant. The transcript is kept
in the state database and sent along with every question, so follow-up
questions have context.

With no query an interactive session starts. Replies are markdown and are
rendered for the terminal when output is a TTY.`,
		Example: `  # One question
  ageview chat "which store has the most unallocated pieces?"

  # Interactive session
  ageview chat

  # Show or clear the saved transcript
  ageview chat --history
  ageview chat --clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "Clear the saved transcript")
	cmd.Flags().BoolVar(&opts.History, "history", false, "Print the saved transcript")

	return cmd
}

func runChat(cmd *cobra.Command, args []string, opts *ChatOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	store, cleanup, err := cmdCtx.OpenConversation()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	r := cmdCtx.Renderer
	panel := chat.NewPanel(cmdCtx.Client, store, chat.Options{Logger: cmdCtx.Logger})
	transcript := panel.Open(ctx)
	md := newMarkdownRenderer(r)

	switch {
	case opts.Clear:
		conv := panel.Clear(ctx)
		if done, err := r.Structured(conv); done {
			return err
		}
		r.Success("Transcript cleared")
		return nil
	case opts.History:
		if done, err := r.Structured(transcript); done {
			return err
		}
		for _, turn := range transcript {
			printTurn(r, md, turn)
		}
		return nil
	case len(args) == 0:
		return runChatREPL(cmd, cmdCtx, panel, md)
	}

	query := strings.Join(args, " ")
	reply, sendErr := panel.Submit(ctx, query)
	if errors.Is(sendErr, chat.ErrEmptyQuery) {
		return fmt.Errorf("query must not be blank")
	}

	if done, err := r.Structured(reply); done {
		if err != nil {
			return err
		}
	} else {
		printTurn(r, md, reply)
	}

	if sendErr != nil {
		return fmt.Errorf("chat turn failed: %w", sendErr)
	}
	return nil
}

// newMarkdownRenderer returns a glamour renderer for styled terminals, or
// nil when replies should be printed as raw markdown.
func newMarkdownRenderer(r *output.Renderer) *glamour.TermRenderer {
	if r.EffectiveMode() != output.ModeText || !r.IsTTY() {
		return nil
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil
	}
	return md
}

func printTurn(r *output.Renderer, md *glamour.TermRenderer, turn core.Turn) {
	styles := r.Styles()

	if turn.Role == core.RoleUser {
		r.Println(styles.Info.Render("you ›") + " " + turn.Content)
		return
	}

	r.Println(styles.Success.Render("assistant ›"))
	if md != nil {
		if rendered, err := md.Render(turn.Content); err == nil {
			r.Printf("%s", rendered)
			return
		}
	}
	r.Println(turn.Content)
	r.Println("")
}
