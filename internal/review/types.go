package review

import (
	"encoding/json"
	"errors"

	"github.com/dshills/refract/internal/finding"
)

// Stage names a part of the pipeline that can degrade.
type Stage string

const (
	StageRules    Stage = "rules"
	StageStatic   Stage = "static"
	StageProvider Stage = "provider"
	StageSemantic Stage = "semantic"
	StageRead     Stage = "read"
)

// Warning records a stage that failed without failing the run.
type Warning struct {
	Stage Stage
	File  string
	Err   error
}

func (w Warning) Error() string {
	if w.File == "" {
		return string(w.Stage) + ": " + w.Err.Error()
	}
	return string(w.Stage) + ": " + w.File + ": " + w.Err.Error()
}

type warningJSON struct {
	Stage   Stage  `json:"stage"`
	File    string `json:"file,omitempty"`
	Message string `json:"message"`
}

// MarshalJSON renders the warning with its error as text.
func (w Warning) MarshalJSON() ([]byte, error) {
	return json.Marshal(warningJSON{w.Stage, w.File, w.Err.Error()})
}

// UnmarshalJSON restores a warning written by MarshalJSON.
func (w *Warning) UnmarshalJSON(data []byte) error {
	var v warningJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = Warning{Stage: v.Stage, File: v.File, Err: errors.New(v.Message)}
	return nil
}

// FileInput is one file to review. A non-nil ChangedLines limits line
// findings to those lines; file-level findings are always kept.
type FileInput struct {
	Path         string
	Text         string
	ChangedLines map[int]bool
}

// FileResult holds the findings for one file, in pipeline order.
type FileResult struct {
	Path     string            `json:"path"`
	Findings []finding.Finding `json:"findings"`
}

// RepoInfo contains repository metadata.
type RepoInfo struct {
	Root   string `json:"root,omitempty"`
	Head   string `json:"head,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// InputInfo describes what was reviewed.
type InputInfo struct {
	Mode          string   `json:"mode"`
	Base          string   `json:"base,omitempty"`
	PathsIncluded []string `json:"pathsIncluded,omitempty"`
	PathsExcluded []string `json:"pathsExcluded,omitempty"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
}

// Timing contains performance metrics.
type Timing struct {
	StaticMs   int64 `json:"staticMs"`
	SemanticMs int64 `json:"semanticMs"`
	TotalMs    int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool     string          `json:"tool"`
	Version  string          `json:"version"`
	RunID    string          `json:"runId"`
	Repo     RepoInfo        `json:"repo"`
	Inputs   InputInfo       `json:"inputs"`
	Summary  finding.Summary `json:"summary"`
	Files    []FileResult    `json:"files"`
	Warnings []Warning       `json:"warnings,omitempty"`
	Timing   Timing          `json:"timing"`
}

// Findings returns every finding in the report, file by file, sentinels
// included.
func (r *Report) Findings() []finding.Finding {
	var all []finding.Finding
	for _, f := range r.Files {
		all = append(all, f.Findings...)
	}
	return all
}

// Issues returns the findings that are real violations.
func (r *Report) Issues() []finding.Finding {
	var out []finding.Finding
	for _, f := range r.Findings() {
		if !f.IsSentinel() {
			out = append(out, f)
		}
	}
	return out
}
