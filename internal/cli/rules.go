package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/refract/internal/checks"
	"github.com/dshills/refract/internal/config"
	"github.com/dshills/refract/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and scaffold rule sets",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective rules and how each is checked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		rs, err := rules.ForPath(cfg.RulesFile).Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		rs = rules.Dedupe(rs)

		registry := checks.Default(checks.Options{MaxLineLength: cfg.LineLength})
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSEVERITY\tCHECK\tDESCRIPTION")
		for _, r := range rs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Severity, checkKind(registry, r.ID), r.Description)
		}
		return tw.Flush()
	},
}

// checkKind names the stage that reports a rule id.
func checkKind(registry checks.Registry, id string) string {
	switch {
	case registry[id] != nil:
		return "static"
	case strings.HasPrefix(id, "LLM_"):
		return "semantic"
	default:
		return "-"
	}
}

var flagRulesForce bool

var rulesInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the built-in rule set to a YAML file for editing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "refract-rules.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !flagRulesForce {
			fmt.Fprintf(os.Stderr, "Rules file already exists at %s (use --force to overwrite)\n", path)
			return nil
		}

		if err := os.WriteFile(path, rules.BuiltinYAML(), 0o644); err != nil {
			return fmt.Errorf("writing rules file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rules file created at %s\nUse it with --rules %s or `refract config set rulesFile %s`.\n", path, path, path)
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesInitCmd)
	rulesListCmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (default: built-in rules)")
	rulesListCmd.Flags().IntVar(&flagLineLength, "line-length", 0, "Maximum line length for LINE_LENGTH")
	rulesInitCmd.Flags().BoolVar(&flagRulesForce, "force", false, "Overwrite an existing file")
}
