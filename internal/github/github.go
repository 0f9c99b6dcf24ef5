package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/dshills/refract/internal/finding"
)

const defaultAPIURL = "https://api.github.com"

// ErrAuth is wrapped by every error caused by a rejected token.
var ErrAuth = errors.New("authentication failed")

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a new GitHub client. Requires GITHUB_TOKEN env var.
func NewClient() (*Client, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}

	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	apiURL = strings.TrimRight(apiURL, "/")

	return &Client{
		token:   token,
		apiURL:  apiURL,
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// do sends a request and returns the body of a 2xx response. 401 and 403
// wrap ErrAuth.
func (c *Client) do(ctx context.Context, method, url, accept string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrAuth, string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &apiError{status: resp.StatusCode, body: string(body)}
	}
	return body, nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("GitHub API error (status %d): %s", e.status, e.body)
}

func statusOf(err error) int {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.status
	}
	return 0
}

// GetPRDiff fetches the unified diff for a pull request.
func (c *Client) GetPRDiff(ctx context.Context, owner, repo string, prNumber int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, prNumber)
	body, err := c.do(ctx, http.MethodGet, url, "application/vnd.github.v3.diff", nil)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return "", fmt.Errorf("PR #%d not found in %s/%s", prNumber, owner, repo)
		}
		return "", fmt.Errorf("fetching PR diff: %w", err)
	}
	return string(body), nil
}

// PRFile represents a file changed in a pull request.
type PRFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// Removed reports whether the pull request deletes the file.
func (f PRFile) Removed() bool { return f.Status == "removed" }

// maxPRFilePages bounds pagination; GitHub caps the listing at 3000 files.
const maxPRFilePages = 30

// GetPRFiles fetches the files changed in a pull request, following pages
// of 100 until a short page is returned.
func (c *Client) GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]PRFile, error) {
	var all []PRFile
	for page := 1; page <= maxPRFilePages; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=100&page=%d", c.apiURL, owner, repo, prNumber, page)
		body, err := c.do(ctx, http.MethodGet, url, "application/vnd.github+json", nil)
		if err != nil {
			return nil, fmt.Errorf("fetching PR files: %w", err)
		}

		var files []PRFile
		if err := json.Unmarshal(body, &files); err != nil {
			return nil, fmt.Errorf("parsing response: %w", err)
		}
		all = append(all, files...)
		if len(files) < 100 {
			break
		}
	}
	return all, nil
}

// ReviewComment represents an inline comment on a PR review.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Side string `json:"side,omitempty"`
	Body string `json:"body"`
}

// ReviewRequest represents a PR review to post.
type ReviewRequest struct {
	Body     string          `json:"body"`
	Event    string          `json:"event"`
	Comments []ReviewComment `json:"comments"`
}

// PostReview posts a pull request review with inline comments.
func (c *Client) PostReview(ctx context.Context, owner, repo string, prNumber int, review ReviewRequest) error {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.apiURL, owner, repo, prNumber)

	payload, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshaling review: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPost, url, "application/vnd.github+json", payload); err != nil {
		if statusOf(err) == http.StatusUnprocessableEntity {
			return fmt.Errorf("GitHub rejected review (422): %w", err)
		}
		return fmt.Errorf("posting review: %w", err)
	}
	return nil
}

// BuildReview converts findings into a PR review. A finding becomes an
// inline comment only when its line is one the PR diff adds; everything
// else is listed in the summary body. Sentinels are ignored.
func BuildReview(findings []finding.Finding, changed map[string]map[int]bool) ReviewRequest {
	var counts finding.Counts
	var bodyComments []string
	var comments []ReviewComment

	for _, f := range findings {
		if f.IsSentinel() {
			continue
		}
		switch f.Severity {
		case finding.SeverityMajor:
			counts.Major++
		case finding.SeverityMinor:
			counts.Minor++
		case finding.SeverityInfo:
			counts.Info++
		}

		if f.Line > 0 && changed[f.FilePath][f.Line] {
			comments = append(comments, ReviewComment{
				Path: f.FilePath,
				Line: f.Line,
				Side: "RIGHT",
				Body: formatInlineComment(f),
			})
			continue
		}
		bodyComments = append(bodyComments, formatFindingBody(f))
	}

	var sb strings.Builder
	sb.WriteString("## Refract Style Review\n\n")
	sb.WriteString("| Severity | Count |\n|----------|-------|\n")
	fmt.Fprintf(&sb, "| Major | %d |\n", counts.Major)
	fmt.Fprintf(&sb, "| Minor | %d |\n", counts.Minor)
	fmt.Fprintf(&sb, "| Info | %d |\n\n", counts.Info)

	if counts.Major+counts.Minor+counts.Info == 0 {
		sb.WriteString("No violations found.\n")
	}

	if len(bodyComments) > 0 {
		sb.WriteString("### Findings outside the diff\n\n")
		for _, c := range bodyComments {
			sb.WriteString(c)
			sb.WriteString("\n")
		}
	}

	return ReviewRequest{
		Body:     sb.String(),
		Event:    "COMMENT",
		Comments: comments,
	}
}

func formatInlineComment(f finding.Finding) string {
	return fmt.Sprintf("**%s** (%s, %s)\n\n%s", f.RuleID, f.Severity, f.Source, f.Message)
}

func formatFindingBody(f finding.Finding) string {
	loc := f.FilePath
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", f.FilePath, f.Line)
	}
	return fmt.Sprintf("- `%s` **%s** (%s): %s", loc, f.RuleID, f.Severity, f.Message)
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
)

// DetectRepo parses owner/repo from GITHUB_REPOSITORY, falling back to the
// git remote origin URL.
func DetectRepo() (owner, repo string, err error) {
	if slug := os.Getenv("GITHUB_REPOSITORY"); slug != "" {
		if o, r, ok := strings.Cut(slug, "/"); ok && o != "" && r != "" {
			return o, r, nil
		}
	}
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	url := strings.TrimSpace(string(out))
	return ParseRemoteURL(url)
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}
