package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dshills/refract/internal/cache"
	"github.com/dshills/refract/internal/checks"
	"github.com/dshills/refract/internal/config"
	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/gitctx"
	"github.com/dshills/refract/internal/logging"
	"github.com/dshills/refract/internal/output"
	"github.com/dshills/refract/internal/providers"
	"github.com/dshills/refract/internal/review"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/semantic"
)

// Shared review flags
var (
	flagPaths            string
	flagExclude          string
	flagProvider         string
	flagModel            string
	flagFormat           string
	flagOut              string
	flagFailOn           string
	flagRules            string
	flagLineLength       int
	flagLLM              bool
	flagNoRedact         bool
	flagNoCache          bool
	flagChangedLinesOnly bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagPaths, "paths", "", "Include file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif, github)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, info, minor, major)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (default: built-in rules)")
	cmd.Flags().IntVar(&flagLineLength, "line-length", 0, "Maximum line length for LINE_LENGTH")
	cmd.Flags().BoolVar(&flagLLM, "llm", false, "Enable the semantic (LLM) review stage")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the semantic response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagLineLength > 0 {
		m["lineLength"] = strconv.Itoa(flagLineLength)
	}
	if flagLLM {
		m["semantic.enabled"] = "true"
	}
	return m
}

func buildFilter(cfg config.Config) gitctx.Filter {
	f := gitctx.Filter{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	}
	if flagPaths != "" {
		f.Include = splitComma(flagPaths)
	}
	if flagExclude != "" {
		f.Exclude = append(append([]string(nil), f.Exclude...), splitComma(flagExclude)...)
	}
	return f
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// newEngine builds the review engine for cfg. A semantic provider that
// cannot be built is recorded on the engine rather than failing the run.
func newEngine(cfg config.Config) *review.Engine {
	e := &review.Engine{
		Registry: checks.Default(checks.Options{MaxLineLength: cfg.LineLength}),
		Rules:    rules.ForPath(cfg.RulesFile),
		Logger:   logging.Logger,
		Version:  version,
	}
	if !cfg.Semantic.Enabled {
		return e
	}

	model := cfg.Model
	if model == "" {
		model = providers.DefaultModel(cfg.Provider)
	}
	gen, err := providers.New(cfg.Provider, model)
	if err != nil {
		e.SemanticErr = err
		return e
	}

	c, err := cache.New(cfg.Cache.Enabled && !flagNoCache, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		logging.Logger.Warnw("response cache disabled", "error", err)
		c = nil
	}

	var limiter *rate.Limiter
	if rpm := cfg.Semantic.RequestsPerMinute; rpm > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60), 1)
	}

	redactSecrets := cfg.Privacy.RedactSecrets
	if flagNoRedact {
		redactSecrets = false
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	e.Semantic = semantic.New(gen, semantic.Options{
		Model:         model,
		MaxLines:      cfg.Semantic.MaxLines,
		Timeout:       time.Duration(cfg.Semantic.TimeoutSeconds) * time.Second,
		MaxTokens:     cfg.Semantic.MaxTokens,
		Temperature:   cfg.Semantic.Temperature,
		RedactSecrets: redactSecrets,
		RedactPaths:   cfg.Privacy.RedactPaths,
		Cache:         c,
		Limiter:       limiter,
		Logger:        logging.Logger,
	})
	return e
}

// target is the set of files one review command covers.
type target struct {
	mode     string
	base     string
	inputs   []review.FileInput
	warnings []review.Warning
}

// readInputs reads paths from disk. Unreadable files become read warnings.
func readInputs(paths []string) ([]review.FileInput, []review.Warning) {
	var inputs []review.FileInput
	var warnings []review.Warning
	for _, p := range paths {
		text, err := gitctx.ReadSource(p)
		if err != nil {
			warnings = append(warnings, review.ReadWarning(p, err))
			continue
		}
		inputs = append(inputs, review.FileInput{Path: p, Text: text})
	}
	return inputs, warnings
}

// fromGit converts collected git files, keeping their changed-line sets
// only when changedOnly is set.
func fromGit(files []gitctx.File, changedOnly bool) []review.FileInput {
	inputs := make([]review.FileInput, len(files))
	for i, f := range files {
		inputs[i] = review.FileInput{Path: f.Path, Text: f.Text}
		if changedOnly {
			inputs[i].ChangedLines = f.ChangedLines
		}
	}
	return inputs
}

// executeReview runs the engine over t and fills in run metadata.
func executeReview(ctx context.Context, t target, cfg config.Config) (*review.Report, error) {
	report, err := newEngine(cfg).RunFiles(ctx, t.inputs)
	if err != nil {
		return nil, err
	}
	report.Warnings = append(t.warnings, report.Warnings...)
	report.Inputs.Mode = t.mode
	report.Inputs.Base = t.base
	filter := buildFilter(cfg)
	report.Inputs.PathsIncluded = filter.Include
	report.Inputs.PathsExcluded = filter.Exclude
	if cfg.Semantic.Enabled {
		report.Inputs.Model = cfg.Model
		if report.Inputs.Model == "" {
			report.Inputs.Model = providers.DefaultModel(cfg.Provider)
		}
	}
	if meta, err := gitctx.GetRepoMeta(); err == nil {
		report.Repo = review.RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch}
	}
	return report, nil
}

// finish writes the report and sets the exit code. Rejected provider
// credentials take precedence over the findings threshold.
func finish(report *review.Report, cfg config.Config) {
	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	exitCode = exitCodeFor(report, cfg.FailOn)
}

func exitCodeFor(report *review.Report, failOn string) int {
	for _, w := range report.Warnings {
		if providers.IsAuthError(w.Err) {
			return ExitAuthError
		}
	}
	if finding.AnyMeets(report.Findings(), failOn) {
		return ExitFindings
	}
	return ExitSuccess
}

// runReview loads config, collects the target and reviews it.
func runReview(collect func(cfg config.Config) (target, error)) error {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return err
	}

	t, err := collect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}
	if len(t.inputs) == 0 && len(t.warnings) == 0 {
		fmt.Fprintln(os.Stderr, "No matching files to review.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := executeReview(ctx, t, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}
	finish(report, cfg)
	return nil
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review source files",
	Long:  "Review source files against the rule set. Use subcommands to choose which files.",
}

var reviewFilesCmd = &cobra.Command{
	Use:   "files <path>...",
	Short: "Review files and directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(func(cfg config.Config) (target, error) {
			paths, err := gitctx.Expand(args, buildFilter(cfg))
			if err != nil {
				return target{}, err
			}
			inputs, warnings := readInputs(paths)
			return target{mode: "files", inputs: inputs, warnings: warnings}, nil
		})
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged files (index content)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(func(cfg config.Config) (target, error) {
			files, err := gitctx.Staged(buildFilter(cfg))
			if err != nil {
				return target{}, err
			}
			return target{mode: "staged", inputs: fromGit(files, flagChangedLinesOnly)}, nil
		})
	},
}

var flagBase string

var reviewChangedCmd = &cobra.Command{
	Use:   "changed",
	Short: "Review files changed against a base branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(func(cfg config.Config) (target, error) {
			files, err := gitctx.Changed(flagBase, buildFilter(cfg))
			if err != nil {
				return target{}, err
			}
			return target{mode: "changed", base: flagBase, inputs: fromGit(files, flagChangedLinesOnly)}, nil
		})
	},
}

var reviewCodebaseCmd = &cobra.Command{
	Use:   "codebase",
	Short: "Review all tracked files in the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(func(cfg config.Config) (target, error) {
			paths, err := gitctx.WalkFiles(buildFilter(cfg))
			if err != nil {
				return target{}, err
			}
			inputs, warnings := readInputs(paths)
			return target{mode: "codebase", inputs: inputs, warnings: warnings}, nil
		})
	},
}

var flagSnippetPath string

var reviewSnippetCmd = &cobra.Command{
	Use:   "snippet",
	Short: "Review source read from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(func(cfg config.Config) (target, error) {
			content, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return target{}, fmt.Errorf("reading stdin: %w", err)
			}
			path := flagSnippetPath
			if path == "" {
				path = "stdin"
			}
			return target{mode: "snippet", inputs: []review.FileInput{{Path: path, Text: string(content)}}}, nil
		})
	},
}

func init() {
	reviewCmd.AddCommand(reviewFilesCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewChangedCmd)
	reviewCmd.AddCommand(reviewCodebaseCmd)
	reviewCmd.AddCommand(reviewSnippetCmd)

	// Add shared flags to all review subcommands
	for _, cmd := range []*cobra.Command{
		reviewFilesCmd,
		reviewStagedCmd,
		reviewChangedCmd,
		reviewCodebaseCmd,
		reviewSnippetCmd,
	} {
		addReviewFlags(cmd)
	}

	for _, cmd := range []*cobra.Command{reviewStagedCmd, reviewChangedCmd} {
		cmd.Flags().BoolVar(&flagChangedLinesOnly, "changed-lines-only", false, "Only report findings on added or modified lines")
	}
	reviewChangedCmd.Flags().StringVar(&flagBase, "base", "main", "Base branch to compare against (merge base)")

	reviewSnippetCmd.Flags().StringVar(&flagSnippetPath, "path", "", "File path to report findings against")
}
