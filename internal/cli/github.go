package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/refract/internal/config"
	"github.com/dshills/refract/internal/gitctx"
	"github.com/dshills/refract/internal/github"
)

var (
	flagGHOwner  string
	flagGHRepo   string
	flagGHDryRun bool
)

var githubCmd = &cobra.Command{
	Use:   "github <pr-number>",
	Short: "Review a GitHub pull request",
	Long: "Review the files a pull request changes, reading them from the local checkout, " +
		"and post findings on lines the PR adds as review comments.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prNumber, err := strconv.Atoi(args[0])
		if err != nil || prNumber <= 0 {
			fmt.Fprintf(os.Stderr, "Error: invalid PR number %q\n", args[0])
			exitCode = ExitUsageError
			return nil
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		owner, repo := flagGHOwner, flagGHRepo
		if owner == "" || repo == "" {
			detected, detectedRepo, err := github.DetectRepo()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\nUse --owner and --repo flags to specify manually.\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			if owner == "" {
				owner = detected
			}
			if repo == "" {
				repo = detectedRepo
			}
		}

		ghClient, err := github.NewClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return nil
		}

		ctx := context.Background()

		fmt.Fprintf(os.Stderr, "Fetching PR #%d from %s/%s...\n", prNumber, owner, repo)
		diff, err := ghClient.GetPRDiff(ctx, owner, repo, prNumber)
		if err != nil {
			return githubFailure(err)
		}
		changed, err := gitctx.ChangedLines(diff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		prFiles, err := ghClient.GetPRFiles(ctx, owner, repo, prNumber)
		if err != nil {
			return githubFailure(err)
		}

		filter := buildFilter(cfg)
		var paths []string
		for _, f := range prFiles {
			if !f.Removed() && filter.Allows(f.Filename) {
				paths = append(paths, f.Filename)
			}
		}
		if len(paths) == 0 {
			fmt.Fprintln(os.Stdout, "PR changes no matching files, nothing to review.")
			return nil
		}

		inputs, warnings := readInputs(paths)
		if flagChangedLinesOnly {
			for i := range inputs {
				inputs[i].ChangedLines = changed[inputs[i].Path]
				if inputs[i].ChangedLines == nil {
					inputs[i].ChangedLines = map[int]bool{}
				}
			}
		}

		report, err := executeReview(ctx, target{
			mode:     "github-pr",
			base:     fmt.Sprintf("#%d", prNumber),
			inputs:   inputs,
			warnings: warnings,
		}, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		finish(report, cfg)
		if exitCode == ExitRuntimeError {
			return nil
		}

		ghReview := github.BuildReview(report.Findings(), changed)
		if flagGHDryRun {
			fmt.Fprintf(os.Stderr, "Dry run: %d findings (%d inline), not posting to GitHub.\n",
				len(report.Issues()), len(ghReview.Comments))
			return nil
		}

		fmt.Fprintf(os.Stderr, "Posting review (%d inline comments)...\n", len(ghReview.Comments))
		if err := ghClient.PostReview(ctx, owner, repo, prNumber, ghReview); err != nil {
			return githubFailure(err)
		}
		fmt.Fprintf(os.Stderr, "Review posted to PR #%d.\n", prNumber)
		return nil
	},
}

// githubFailure reports a GitHub API error and sets the matching exit code.
func githubFailure(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, github.ErrAuth) {
		exitCode = ExitAuthError
	} else {
		exitCode = ExitRuntimeError
	}
	return nil
}

func init() {
	addReviewFlags(githubCmd)
	githubCmd.Flags().BoolVar(&flagChangedLinesOnly, "changed-lines-only", false, "Only report findings on lines the PR adds")
	githubCmd.Flags().StringVar(&flagGHOwner, "owner", "", "GitHub repository owner (auto-detected if omitted)")
	githubCmd.Flags().StringVar(&flagGHRepo, "repo", "", "GitHub repository name (auto-detected if omitted)")
	githubCmd.Flags().BoolVar(&flagGHDryRun, "dry-run", false, "Run review but don't post to GitHub")
}
