package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/refract/internal/config"
	"github.com/dshills/refract/internal/providers"
	"github.com/dshills/refract/internal/semantic"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the providers available to the semantic stage",
}

// providerModels lists the models tried with the semantic classifier for
// one provider, and the names that select it.
type providerModels struct {
	Provider string
	Aliases  []string
	Models   []string
}

var knownModels = []providerModels{
	{Provider: "anthropic", Aliases: []string{"claude"}, Models: []string{"claude-sonnet-4-5", "claude-haiku-4-5"}},
	{Provider: "openai", Models: []string{"gpt-4.1-mini", "gpt-4.1"}},
	{Provider: "gemini", Aliases: []string{"google"}, Models: []string{"gemini-2.5-flash", "gemini-2.5-pro"}},
	{Provider: "ollama", Aliases: []string{"lmstudio", "local"}, Models: []string{"qwen2.5-coder", "llama3.1"}},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers, their aliases and suggested models",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, pm := range knownModels {
			fmt.Fprint(w, pm.Provider)
			if len(pm.Aliases) > 0 {
				fmt.Fprintf(w, " (also: %s)", strings.Join(pm.Aliases, ", "))
			}
			fmt.Fprintln(w, ":")
			def := providers.DefaultModel(pm.Provider)
			for _, m := range pm.Models {
				if m == def {
					fmt.Fprintf(w, "  - %s (default)\n", m)
					continue
				}
				fmt.Fprintf(w, "  - %s\n", m)
			}
		}
		fmt.Fprintln(w, "\nAny model the provider serves can be set with --model or `refract config set model <name>`.")
	},
}

// doctorSample has one boolean that reads poorly, so a working model
// answers with at least one "Line <n>:" entry.
var doctorSample = []string{
	"public class Door {",
	"    private boolean flag;",
	"}",
}

var errBadReply = errors.New("reply is neither \"No issues found.\" nor \"Line <n>: ...\" entries")

// checkReply verifies a model answer uses the format the semantic stage
// parses. An answer it cannot parse would silently yield no findings.
func checkReply(text string) error {
	if strings.TrimSpace(text) == semantic.NoIssuesResponse || len(semantic.ParseResponse(text)) > 0 {
		return nil
	}
	return errBadReply
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a provider accepts the key and answers in the classifier format",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		name := providers.Canonical(cfg.Provider)
		model := cfg.Model
		if model == "" {
			model = providers.DefaultModel(name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Checking %s (%s)...\n", name, model)

		gen, err := providers.New(name, model)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Semantic.TimeoutSeconds)*time.Second)
		defer cancel()

		resp, err := gen.Generate(ctx, providers.Request{
			Instruction: semantic.SystemInstruction(),
			Input:       semantic.NumberLines(doctorSample),
			MaxTokens:   cfg.Semantic.MaxTokens,
			Temperature: cfg.Semantic.Temperature,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}
		if err := checkReply(resp.Text); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %s/%s: %v\n", name, model, err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s/%s answers in the classifier format\n", name, model)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
