package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dshills/refract/internal/finding"
)

func testClient(server *httptest.Server, token string) *Client {
	return &Client{
		token:   token,
		apiURL:  server.URL,
		httpCli: server.Client(),
	}
}

func TestGetPRDiff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", r.Header.Get("Authorization"), "Bearer test-token")
		}
		if r.Header.Get("Accept") != "application/vnd.github.v3.diff" {
			t.Errorf("Accept = %q, want %q", r.Header.Get("Accept"), "application/vnd.github.v3.diff")
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("Path = %q, want %q", r.URL.Path, "/repos/owner/repo/pulls/42")
		}
		w.Write([]byte("diff --git a/App.java b/App.java\n"))
	}))
	defer server.Close()

	diff, err := testClient(server, "test-token").GetPRDiff(context.Background(), "owner", "repo", 42)
	if err != nil {
		t.Fatalf("GetPRDiff error: %v", err)
	}
	if diff != "diff --git a/App.java b/App.java\n" {
		t.Errorf("diff = %q", diff)
	}
}

func TestGetPRDiff_404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	_, err := testClient(server, "test-token").GetPRDiff(context.Background(), "owner", "repo", 99)
	if err == nil {
		t.Fatal("Expected error for 404")
	}
	if got := err.Error(); got != "PR #99 not found in owner/repo" {
		t.Errorf("error = %q", got)
	}
}

func TestGetPRDiff_401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	_, err := testClient(server, "bad-token").GetPRDiff(context.Background(), "owner", "repo", 1)
	if err == nil {
		t.Fatal("Expected error for 401")
	}
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
	if !strings.Contains(err.Error(), "Bad credentials") {
		t.Errorf("error should carry the response body, got %q", err.Error())
	}
}

func TestGetPRFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/42/files" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("per_page = %q", r.URL.Query().Get("per_page"))
		}
		files := []PRFile{
			{Filename: "src/App.java", Status: "modified"},
			{Filename: "src/Old.java", Status: "removed"},
		}
		json.NewEncoder(w).Encode(files)
	}))
	defer server.Close()

	files, err := testClient(server, "test-token").GetPRFiles(context.Background(), "owner", "repo", 42)
	if err != nil {
		t.Fatalf("GetPRFiles error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files count = %d, want 2", len(files))
	}
	if files[0].Filename != "src/App.java" || files[0].Removed() {
		t.Errorf("files[0] = %+v", files[0])
	}
	if !files[1].Removed() {
		t.Errorf("files[1] should be removed: %+v", files[1])
	}
}

func TestGetPRFiles_Paginates(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		n := 100
		if page == "2" {
			n = 3
		}
		files := make([]PRFile, n)
		for i := range files {
			files[i] = PRFile{Filename: fmt.Sprintf("p%s/F%d.java", page, i), Status: "added"}
		}
		json.NewEncoder(w).Encode(files)
	}))
	defer server.Close()

	files, err := testClient(server, "test-token").GetPRFiles(context.Background(), "owner", "repo", 7)
	if err != nil {
		t.Fatalf("GetPRFiles error: %v", err)
	}
	if len(files) != 103 {
		t.Errorf("files count = %d, want 103", len(files))
	}
	if strings.Join(pages, ",") != "1,2" {
		t.Errorf("pages requested = %v", pages)
	}
}

func TestPostReview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/repos/owner/repo/pulls/42/reviews" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}

		var rev ReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&rev); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if rev.Event != "COMMENT" {
			t.Errorf("Event = %q, want COMMENT", rev.Event)
		}
		if len(rev.Comments) != 1 {
			t.Errorf("Comments count = %d, want 1", len(rev.Comments))
		}

		w.WriteHeader(200)
		w.Write([]byte(`{"id":1}`))
	}))
	defer server.Close()

	err := testClient(server, "test-token").PostReview(context.Background(), "owner", "repo", 42, ReviewRequest{
		Body:  "summary",
		Event: "COMMENT",
		Comments: []ReviewComment{
			{Path: "src/App.java", Line: 10, Side: "RIGHT", Body: "issue here"},
		},
	})
	if err != nil {
		t.Fatalf("PostReview error: %v", err)
	}
}

func TestPostReview_422(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(422)
		w.Write([]byte(`{"message":"Line could not be resolved"}`))
	}))
	defer server.Close()

	err := testClient(server, "test-token").PostReview(context.Background(), "owner", "repo", 42, ReviewRequest{Event: "COMMENT"})
	if err == nil {
		t.Fatal("Expected error for 422")
	}
	if !strings.Contains(err.Error(), "rejected review (422)") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "HTTPS",
			url:       "https://github.com/dshills/refract.git",
			wantOwner: "dshills",
			wantRepo:  "refract",
		},
		{
			name:      "HTTPS no .git",
			url:       "https://github.com/dshills/refract",
			wantOwner: "dshills",
			wantRepo:  "refract",
		},
		{
			name:      "SSH",
			url:       "git@github.com:dshills/refract.git",
			wantOwner: "dshills",
			wantRepo:  "refract",
		},
		{
			name:      "SSH no .git",
			url:       "git@github.com:dshills/refract",
			wantOwner: "dshills",
			wantRepo:  "refract",
		},
		{
			name:    "invalid",
			url:     "not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("repo = %q, want %q", repo, tt.wantRepo)
			}
		})
	}
}

func TestDetectRepo_FromEnv(t *testing.T) {
	t.Setenv("GITHUB_REPOSITORY", "octo/widgets")
	owner, repo, err := DetectRepo()
	if err != nil {
		t.Fatalf("DetectRepo error: %v", err)
	}
	if owner != "octo" || repo != "widgets" {
		t.Errorf("got %s/%s", owner, repo)
	}
}

func TestBuildReview(t *testing.T) {
	findings := []finding.Finding{
		{
			FilePath: "src/App.java",
			Line:     12,
			Position: 4,
			RuleID:   "IF_SPACING",
			Message:  "Missing space after 'if'.",
			Severity: finding.SeverityMinor,
			Source:   finding.SourceStatic,
		},
		{
			FilePath: "src/App.java",
			Line:     30,
			Position: finding.NoColumn,
			RuleID:   "LLM_METHOD_NAME_INTENT",
			Message:  "Method name does not describe its effect.",
			Severity: finding.SeverityMajor,
			Source:   finding.SourceLLM,
		},
		{
			FilePath: "src/App.java",
			Line:     0,
			Position: finding.NoColumn,
			RuleID:   "IMPORT_ORDER",
			Message:  "Imports are not ordered.",
			Severity: finding.SeverityInfo,
			Source:   finding.SourceStatic,
		},
		finding.NoIssues("src/Util.java"),
	}
	changed := map[string]map[int]bool{"src/App.java": {12: true, 13: true}}

	rev := BuildReview(findings, changed)

	if rev.Event != "COMMENT" {
		t.Errorf("Event = %q, want COMMENT", rev.Event)
	}
	if len(rev.Comments) != 1 {
		t.Fatalf("Comments count = %d, want 1", len(rev.Comments))
	}
	c := rev.Comments[0]
	if c.Path != "src/App.java" || c.Line != 12 || c.Side != "RIGHT" {
		t.Errorf("Comment = %+v", c)
	}
	if !strings.Contains(c.Body, "IF_SPACING") {
		t.Errorf("Comment body should name the rule, got %q", c.Body)
	}

	if !strings.Contains(rev.Body, "| Major | 1 |") || !strings.Contains(rev.Body, "| Minor | 1 |") || !strings.Contains(rev.Body, "| Info | 1 |") {
		t.Errorf("Summary should include counts, got: %s", rev.Body)
	}
	if !strings.Contains(rev.Body, "`src/App.java:30` **LLM_METHOD_NAME_INTENT**") {
		t.Errorf("unchanged-line finding should be in the body, got: %s", rev.Body)
	}
	if !strings.Contains(rev.Body, "`src/App.java` **IMPORT_ORDER**") {
		t.Errorf("file-level finding should be in the body, got: %s", rev.Body)
	}
	if strings.Contains(rev.Body, finding.NoIssuesID) {
		t.Error("sentinel should not be reported")
	}
}

func TestBuildReview_Clean(t *testing.T) {
	rev := BuildReview([]finding.Finding{finding.NoIssues("src/App.java")}, nil)
	if len(rev.Comments) != 0 {
		t.Errorf("expected no comments, got %d", len(rev.Comments))
	}
	if !strings.Contains(rev.Body, "No violations found.") {
		t.Errorf("clean review should say so, got: %s", rev.Body)
	}
}
