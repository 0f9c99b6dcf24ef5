package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dshills/refract/internal/finding"
)

// Rule binds a rule id to a severity and message template.
type Rule struct {
	ID          string           `yaml:"id" json:"id" validate:"required"`
	Description string           `yaml:"description" json:"description"`
	AppliesTo   string           `yaml:"applies_to" json:"appliesTo"`
	Severity    finding.Severity `yaml:"severity" json:"severity" validate:"required,oneof=info minor major"`
	Message     string           `yaml:"message" json:"message" validate:"required"`
}

// Render substitutes {key} placeholders in the rule message.
func (r Rule) Render(vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(r.Message, "{") {
		return r.Message
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(r.Message)
}

// Source supplies the rule set for a review run.
type Source interface {
	Load() ([]Rule, error)
}

// File loads rules from a YAML file on disk.
type File struct {
	Path string
}

// Load implements Source.
func (f File) Load() ([]Rule, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return rs, nil
}

//go:embed rules.yaml
var builtinYAML []byte

// Builtin is the rule set shipped with the binary.
type Builtin struct{}

// Load implements Source.
func (Builtin) Load() ([]Rule, error) {
	return Parse(builtinYAML)
}

// BuiltinYAML returns the raw YAML of the built-in rule set.
func BuiltinYAML() []byte {
	return bytes.Clone(builtinYAML)
}

// ForPath returns the file-backed source when path is set and the
// built-in set otherwise.
func ForPath(path string) Source {
	if path == "" {
		return Builtin{}
	}
	return File{Path: path}
}

var validate = validator.New()

// ErrEmpty is returned when a rules document defines no rules.
var ErrEmpty = errors.New("rules document is empty")

// Parse decodes a YAML list of rules and validates each entry.
func Parse(data []byte) ([]Rule, error) {
	var rs []Rule
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if len(rs) == 0 {
		return nil, ErrEmpty
	}
	for i := range rs {
		if err := validate.Struct(rs[i]); err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i+1, rs[i].ID, err)
		}
	}
	return rs, nil
}

// Index maps rule ids to rules. The first definition of an id wins.
type Index map[string]Rule

// NewIndex builds an Index from an ordered rule list.
func NewIndex(rs []Rule) Index {
	idx := make(Index, len(rs))
	for _, r := range rs {
		if _, ok := idx[r.ID]; !ok {
			idx[r.ID] = r
		}
	}
	return idx
}

// Dedupe returns rs with later duplicates of an id removed, preserving order.
func Dedupe(rs []Rule) []Rule {
	seen := make(map[string]bool, len(rs))
	out := make([]Rule, 0, len(rs))
	for _, r := range rs {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
