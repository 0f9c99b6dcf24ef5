package semantic

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/refract/internal/cache"
	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/providers"
	"github.com/dshills/refract/internal/rules"
)

type fakeGenerator struct {
	text  string
	err   error
	calls atomic.Int32
	last  providers.Request
	block bool
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(ctx context.Context, req providers.Request) (providers.Response, error) {
	f.calls.Add(1)
	f.last = req
	if f.block {
		<-ctx.Done()
		return providers.Response{}, ctx.Err()
	}
	if f.err != nil {
		return providers.Response{}, f.err
	}
	return providers.Response{Text: f.text}, nil
}

func builtinIndex(t *testing.T) rules.Index {
	t.Helper()
	rs, err := rules.Builtin{}.Load()
	require.NoError(t, err)
	return rules.NewIndex(rs)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"The boolean 'done' should be named isDone", RuleBooleanSemantics},
		{"Variable name x is UNCLEAR", RuleBooleanSemantics},
		{"Method does more than one thing", RuleMethodSingleResponsibility},
		{"process() seems to do too much", RuleMethodSingleResponsibility},
		{"Handles multiple concerns", RuleMethodSingleResponsibility},
		{"Name suggests a getter but it writes", RuleMethodNameIntent},
		{"", RuleMethodNameIntent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.msg), tt.msg)
	}
}

func TestClassify_FirstCategoryWins(t *testing.T) {
	// Matches both the boolean and the single-responsibility keywords.
	assert.Equal(t, RuleBooleanSemantics, Classify("flag handling does multiple things"))
}

func TestParseResponse(t *testing.T) {
	resp := "Here is my review:\nLine 3: unclear name\n  Line 10:   does too much  \nline 4: lowercase ignored\nLine x: bad\n"
	items := ParseResponse(resp)
	assert.Equal(t, []Item{{3, "unclear name"}, {10, "does too much"}}, items)
}

func TestParseResponse_NoIssues(t *testing.T) {
	assert.Nil(t, ParseResponse("No issues found."))
	assert.Nil(t, ParseResponse("  No issues found.\n"))
	assert.Nil(t, ParseResponse("Everything looks fine"))
}

func TestNumberLines(t *testing.T) {
	assert.Equal(t, "1: class A {\n2: }", NumberLines([]string{"class A {", "}"}))
	assert.Equal(t, "", NumberLines(nil))
}

func TestSystemInstruction(t *testing.T) {
	instr := SystemInstruction()
	assert.Contains(t, instr, "Line <number>: <issue>")
	assert.Contains(t, instr, NoIssuesResponse)
}

func TestFindings(t *testing.T) {
	idx := builtinIndex(t)
	got := Findings("A.java", "Line 1: flag is unclear\nLine 2: method does more than one thing\nLine 9: out of range\nLine 0: zero", 3, idx)

	require.Len(t, got, 2)
	assert.Equal(t, finding.Finding{
		FilePath: "A.java",
		Line:     1,
		Position: finding.NoColumn,
		RuleID:   RuleBooleanSemantics,
		Message:  "flag is unclear",
		Severity: idx[RuleBooleanSemantics].Severity,
		Source:   finding.SourceLLM,
	}, got[0])
	assert.Equal(t, RuleMethodSingleResponsibility, got[1].RuleID)
	assert.Equal(t, finding.SeverityMajor, got[1].Severity)
}

func TestFindings_UnknownRuleDropped(t *testing.T) {
	idx := rules.NewIndex([]rules.Rule{{ID: RuleBooleanSemantics, Severity: finding.SeverityMinor, Message: "m"}})
	got := Findings("A.java", "Line 1: flag unclear\nLine 2: getter mutates state", 2, idx)
	require.Len(t, got, 1)
	assert.Equal(t, RuleBooleanSemantics, got[0].RuleID)
}

func TestReviewer_Review(t *testing.T) {
	gen := &fakeGenerator{text: "Line 2: method name does not match intent"}
	r := New(gen, Options{Model: "m", Temperature: 0.2})

	text := "class A {\n    void getData() { save(); }\n}\n"
	got, err := r.Review(context.Background(), "A.java", text, builtinIndex(t))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, RuleMethodNameIntent, got[0].RuleID)

	assert.Equal(t, SystemInstruction(), gen.last.Instruction)
	assert.True(t, strings.HasPrefix(gen.last.Input, "1: class A {\n2:"))
	assert.Equal(t, DefaultMaxTokens, gen.last.MaxTokens)
	assert.Equal(t, 0.2, gen.last.Temperature)
}

func TestReviewer_TooLongSkipped(t *testing.T) {
	gen := &fakeGenerator{text: "Line 1: flag unclear"}
	r := New(gen, Options{MaxLines: 3})

	text := strings.Repeat("int a;\n", 4)
	got, err := r.Review(context.Background(), "A.java", text, builtinIndex(t))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, gen.calls.Load())
}

func TestReviewer_AtLimitSent(t *testing.T) {
	gen := &fakeGenerator{text: NoIssuesResponse}
	r := New(gen, Options{MaxLines: 3})

	_, err := r.Review(context.Background(), "A.java", strings.Repeat("int a;\n", 3), builtinIndex(t))
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestReviewer_RedactedPathSkipped(t *testing.T) {
	gen := &fakeGenerator{text: "Line 1: flag unclear"}
	r := New(gen, Options{RedactPaths: []string{"**/secret/**"}})

	got, err := r.Review(context.Background(), "src/secret/Keys.java", "class Keys {}\n", builtinIndex(t))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, gen.calls.Load())
}

func TestReviewer_RedactsSecrets(t *testing.T) {
	gen := &fakeGenerator{text: NoIssuesResponse}
	r := New(gen, Options{RedactSecrets: true})

	text := "class A {\n    String password = \"hunter2-hunter2\";\n}\n"
	_, err := r.Review(context.Background(), "A.java", text, builtinIndex(t))
	require.NoError(t, err)
	assert.NotContains(t, gen.last.Input, "hunter2-hunter2")
	assert.Contains(t, gen.last.Input, "2:")
	assert.Contains(t, gen.last.Input, "3: }")
}

func TestReviewer_TransportError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	r := New(gen, Options{})

	got, err := r.Review(context.Background(), "A.java", "class A {}\n", builtinIndex(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, got)
}

func TestReviewer_Timeout(t *testing.T) {
	gen := &fakeGenerator{block: true}
	r := New(gen, Options{Timeout: 10 * time.Millisecond})

	_, err := r.Review(context.Background(), "A.java", "class A {}\n", builtinIndex(t))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReviewer_Cache(t *testing.T) {
	c, err := cache.New(true, t.TempDir(), 0)
	require.NoError(t, err)

	gen := &fakeGenerator{text: "Line 1: flag unclear"}
	r := New(gen, Options{Model: "m", Cache: c})
	idx := builtinIndex(t)

	first, err := r.Review(context.Background(), "A.java", "boolean done;\n", idx)
	require.NoError(t, err)
	second, err := r.Review(context.Background(), "A.java", "boolean done;\n", idx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, gen.calls.Load())
}
