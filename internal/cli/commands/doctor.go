package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ageview/internal/cli/config"
	"github.com/leapstack-labs/ageview/internal/cli/output"
	"github.com/leapstack-labs/ageview/internal/state"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, backend reachability and local state",
		Long: `Run a quick health check of everything ageview depends on:

- Configuration file and effective backend URL
- Backend root endpoint and summary endpoint
- State database and its schema version

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  ageview doctor
  ageview doctor -o json`,
		RunE: runDoctor,
	}
}

// DoctorOutput is the structured output of the doctor command.
type DoctorOutput struct {
	Checks []HealthCheck `json:"checks" yaml:"checks"`
	Failed int           `json:"failed" yaml:"failed"`
}

// HealthCheck is one check result.
type HealthCheck struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"` // "success", "warning", "error"
	Detail string `json:"detail" yaml:"detail"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	var checks []HealthCheck
	add := func(name, status, detail string) {
		checks = append(checks, HealthCheck{Name: name, Status: status, Detail: detail})
	}

	if file := config.GetConfigFileUsed(); file != "" {
		add("Config", "success", file)
	} else {
		add("Config", "warning", "no ageview.yaml found, using defaults")
	}

	start := time.Now()
	health, err := cmdCtx.Client.Health(ctx)
	switch {
	case err != nil:
		add("Backend", "error", err.Error())
	case health.Status != "OK":
		add("Backend", "warning", fmt.Sprintf("%s reported status %q", cmdCtx.Client.BaseURL(), health.Status))
	default:
		add("Backend", "success", fmt.Sprintf("%s %s (%s)", health.Service, cmdCtx.Client.BaseURL(), time.Since(start).Round(time.Millisecond)))
	}

	if rows, err := cmdCtx.Client.FetchSummary(ctx); err != nil {
		add("Summary endpoint", "error", err.Error())
	} else if len(rows) == 0 {
		add("Summary endpoint", "warning", "no rows returned")
	} else {
		add("Summary endpoint", "success", fmt.Sprintf("%d statuses", len(rows)))
	}

	if store, err := state.OpenAndMigrate(cfg.StatePath); err != nil {
		add("State", "error", err.Error())
	} else {
		version, verr := store.GetMigrationVersion()
		turns, lerr := store.Conversation(cfg.Chat.SessionKey).Load(ctx)
		keys, kerr := store.SessionKeys(ctx)
		_ = store.Close()
		switch {
		case verr != nil:
			add("State", "error", verr.Error())
		case lerr != nil:
			add("State", "error", lerr.Error())
		case kerr != nil:
			add("State", "error", kerr.Error())
		default:
			add("State", "success", fmt.Sprintf("%s (schema v%d, %d chat turns, %d saved conversations)",
				cfg.StatePath, version, len(turns), len(keys)))
		}
	}

	out := DoctorOutput{Checks: checks}
	for _, c := range checks {
		if c.Status == "error" {
			out.Failed++
		}
	}

	if done, err := r.Structured(out); done {
		if err != nil {
			return err
		}
	} else if r.EffectiveMode() == output.ModeMarkdown {
		renderDoctorMarkdown(r, out)
	} else {
		renderDoctorText(r, out)
	}

	if out.Failed > 0 {
		return fmt.Errorf("%d of %d checks failed", out.Failed, len(checks))
	}
	return nil
}

func renderDoctorText(r *output.Renderer, out DoctorOutput) {
	styles := r.Styles()
	r.Println(styles.Header1.Render("ageview health report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 40)))
	for _, c := range out.Checks {
		r.StatusLine(c.Name, c.Status, c.Detail)
	}
}

func renderDoctorMarkdown(r *output.Renderer, out DoctorOutput) {
	r.Println(output.FormatHeader(1, "ageview health report"))
	r.Println("| Check | Status | Detail |")
	r.Println("| --- | --- | --- |")
	for _, c := range out.Checks {
		r.Printf("| %s | %s | %s |\n", c.Name, c.Status, strings.ReplaceAll(c.Detail, "|", `\|`))
	}
}
