package gitctx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sourcegraph/go-diff/diff"
)

// maxFileBytes is the per-file size limit for review.
const maxFileBytes = 1 << 20 // 1MB

var (
	// ErrBinary is returned by ReadSource for files containing NUL bytes.
	ErrBinary = errors.New("binary file")
	// ErrTooLarge is returned by ReadSource for files over the size limit.
	ErrTooLarge = errors.New("file too large")
)

// Filter selects source files by doublestar include/exclude patterns.
// An empty Include admits every path.
type Filter struct {
	Include []string
	Exclude []string
}

// Allows reports whether path passes the include and exclude patterns.
func (f Filter) Allows(path string) bool {
	if len(f.Include) > 0 && !MatchesAny(path, f.Include) {
		return false
	}
	return !MatchesAny(path, f.Exclude)
}

// File is a source file collected for review. ChangedLines is nil when the
// whole file is in scope.
type File struct {
	Path         string
	Text         string
	ChangedLines map[int]bool
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta() (RepoMeta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// MatchesAny returns true if the path matches any of the given doublestar
// patterns. A pattern without a "/" is also tried against the base name.
func MatchesAny(path string, patterns []string) bool {
	p := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, filepath.Base(p)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// WalkFiles returns the git-tracked files under the current directory that
// match the filter, sorted. Paths are relative to the current directory.
func WalkFiles(f Filter) ([]string, error) {
	out, err := gitOutput("ls-files")
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	files := filterList(splitLines(out), f)
	sort.Strings(files)
	return files, nil
}

// Expand resolves explicit paths into a file list. Files named directly are
// always kept; directories are walked and their entries filtered.
func Expand(paths []string, f Filter) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(p), "**", doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if f.Allows(m) {
				add(filepath.Join(p, filepath.FromSlash(m)))
			}
		}
	}
	return files, nil
}

// ReadSource reads a file for review, rejecting binaries and files over
// the size limit.
func ReadSource(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > maxFileBytes {
		return "", fmt.Errorf("%w (%d bytes)", ErrTooLarge, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if isBinary(data) {
		return "", ErrBinary
	}
	return string(data), nil
}

// isBinary applies git's heuristic: a NUL byte within the first 8000 bytes.
func isBinary(data []byte) bool {
	if len(data) > 8000 {
		data = data[:8000]
	}
	return bytes.IndexByte(data, 0) >= 0
}

// Staged returns the staged content of every added, copied, modified or
// renamed file matching the filter, with the lines the index adds.
func Staged(f Filter) ([]File, error) {
	out, err := gitOutput("diff", "--cached", "--name-only", "--diff-filter=ACMR")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached: %w", err)
	}
	paths := filterList(splitLines(out), f)
	if len(paths) == 0 {
		return nil, nil
	}

	patch, err := gitOutput("diff", "--cached", "--no-color", "--no-ext-diff", "-U0")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached: %w", err)
	}
	changed, err := ChangedLines(patch)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		text, err := gitOutput("show", ":"+p)
		if err != nil {
			return nil, fmt.Errorf("git show :%s: %w", p, err)
		}
		if len(text) > maxFileBytes || isBinary([]byte(text)) {
			continue
		}
		files = append(files, File{Path: p, Text: text, ChangedLines: linesFor(changed, p)})
	}
	return files, nil
}

// ChangedFiles lists files changed between the merge base of base and HEAD,
// filtered and sorted. Paths are relative to the repository root.
func ChangedFiles(base string, f Filter) ([]string, error) {
	out, err := gitOutput("diff", "--name-only", "--diff-filter=ACMR", base+"...HEAD")
	if err != nil {
		return nil, fmt.Errorf("git diff %s...HEAD: %w", base, err)
	}
	files := filterList(splitLines(out), f)
	sort.Strings(files)
	return files, nil
}

// Changed returns the working-tree content of files changed against the
// merge base of base, with the lines added on this side of the branch.
func Changed(base string, f Filter) ([]File, error) {
	meta, err := GetRepoMeta()
	if err != nil {
		return nil, err
	}
	paths, err := ChangedFiles(base, f)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	patch, err := gitOutput("diff", "--no-color", "--no-ext-diff", "-U0", base+"...HEAD")
	if err != nil {
		return nil, fmt.Errorf("git diff %s...HEAD: %w", base, err)
	}
	changed, err := ChangedLines(patch)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		text, err := ReadSource(filepath.Join(meta.Root, filepath.FromSlash(p)))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, File{Path: p, Text: text, ChangedLines: linesFor(changed, p)})
	}
	return files, nil
}

// ChangedLines parses a unified diff and returns, per new-side path, the
// 1-based line numbers the diff adds. Deleted files are omitted.
func ChangedLines(patch string) (map[string]map[int]bool, error) {
	result := make(map[string]map[int]bool)
	if strings.TrimSpace(patch) == "" {
		return result, nil
	}
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(patch))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	for _, fd := range fileDiffs {
		if fd.NewName == "/dev/null" {
			continue
		}
		name := strings.TrimPrefix(fd.NewName, "b/")
		lines := result[name]
		if lines == nil {
			lines = make(map[int]bool)
			result[name] = lines
		}
		for _, h := range fd.Hunks {
			addHunkLines(lines, h)
		}
	}
	return result, nil
}

func addHunkLines(lines map[int]bool, h *diff.Hunk) {
	n := int(h.NewStartLine)
	for _, line := range bytes.Split(h.Body, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+':
			lines[n] = true
			n++
		case ' ':
			n++
		}
	}
}

// linesFor returns the changed lines for path, or an empty set when the
// diff has no additions for it.
func linesFor(changed map[string]map[int]bool, path string) map[int]bool {
	if lines, ok := changed[path]; ok {
		return lines
	}
	return map[int]bool{}
}

func filterList(paths []string, f Filter) []string {
	var result []string
	for _, p := range paths {
		if f.Allows(p) {
			result = append(result, p)
		}
	}
	return result
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
