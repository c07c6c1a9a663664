package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/chat"
	"github.com/leapstack-labs/ageview/internal/cli/output"
)

const chatPrompt = "ageview> "

func runChatREPL(cmd *cobra.Command, cmdCtx *CommandContext, panel *chat.Panel, md *glamour.TermRenderer) error {
	ctx := cmd.Context()
	r := cmdCtx.Renderer

	historyFile := ""
	if cmdCtx.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "chat_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          chatPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newChatCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.Printf("ageview chat (backend: %s)\n", cmdCtx.Client.BaseURL())
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	for _, turn := range panel.Transcript() {
		printTurn(r, md, turn)
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), ".") {
			quit := handleChatDotCommand(cmd, r, panel, md, strings.TrimSpace(line))
			if quit {
				break
			}
			continue
		}

		// The query goes out as typed; only blank input is rejected.
		reply, sendErr := panel.Submit(ctx, line)
		if errors.Is(sendErr, chat.ErrBusy) {
			r.Warning("A question is already in progress")
			continue
		}
		printTurn(r, md, reply)
		if sendErr != nil {
			cmdCtx.Logger.Debug("chat turn failed", "error", sendErr)
		}
	}

	return nil
}

// handleChatDotCommand runs a REPL dot-command and reports whether to quit.
func handleChatDotCommand(cmd *cobra.Command, r *output.Renderer, panel *chat.Panel, md *glamour.TermRenderer, line string) bool {
	command := strings.ToLower(strings.Fields(line)[0])

	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printChatHelp(r)
	case ".history":
		for _, turn := range panel.Transcript() {
			printTurn(r, md, turn)
		}
	case ".clear":
		for _, turn := range panel.Clear(cmd.Context()) {
			printTurn(r, md, turn)
		}
	default:
		r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}
	return false
}

func printChatHelp(r *output.Renderer) {
	r.Println(`
Commands:
  .help           Show this help message
  .history        Print the transcript
  .clear          Clear the transcript
  .quit / .exit   Exit the session

Tips:
  - Anything else is sent to the assistant as a question
  - Use arrow keys to navigate history
`)
}

func newChatCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".history"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
