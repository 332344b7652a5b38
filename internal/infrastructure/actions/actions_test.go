package actions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"IncidentIngest/internal/issue"
)

func TestSubmissionFromEnv(t *testing.T) {
	t.Setenv(issueNumberEnv, "42")
	t.Setenv(issueTitleEnv, "[EVENT] Test")
	t.Setenv(issueBodyEnv, "### Event Title\nTest\n")
	t.Setenv(issueLabelsEnv, `[{"name":"new-event"},{"name":"update-event"}]`)

	sub, err := SubmissionFromEnv()
	if err != nil {
		t.Fatalf("SubmissionFromEnv error: %v", err)
	}
	if sub.Number != 42 {
		t.Fatalf("unexpected number: %d", sub.Number)
	}
	if sub.Title != "[EVENT] Test" {
		t.Fatalf("unexpected title: %s", sub.Title)
	}
	if len(sub.Labels) != 2 || sub.Labels[1] != "update-event" {
		t.Fatalf("unexpected labels: %v", sub.Labels)
	}
	if !sub.IsUpdate() {
		t.Fatal("update label not detected")
	}
}

func TestSubmissionFromEnvRequiresBody(t *testing.T) {
	t.Setenv(issueBodyEnv, "")

	if _, err := SubmissionFromEnv(); err == nil {
		t.Fatal("expected error without a body")
	}
}

func TestSubmissionFromEnvRejectsBadNumber(t *testing.T) {
	t.Setenv(issueBodyEnv, "body")
	t.Setenv(issueNumberEnv, "forty-two")

	if _, err := SubmissionFromEnv(); err == nil {
		t.Fatal("expected error for non-numeric issue number")
	}
}

func TestBuildOutputsValidNewEvent(t *testing.T) {
	t.Parallel()

	result := issue.Result{
		Valid:         true,
		EventType:     "new",
		Event:         &issue.EventDraft{Title: "March", Date: "03/15/2025"},
		CommitMessage: "Add new event: March",
		PRTitle:       "[EVENT] March",
		EventDate:     "03/15/2025",
		EventLocation: "Istanbul",
	}

	outputs := BuildOutputs(result)
	if outputs["valid"] != "true" {
		t.Fatalf("unexpected valid flag: %s", outputs["valid"])
	}
	if outputs["event-type"] != "new" {
		t.Fatalf("unexpected event type: %s", outputs["event-type"])
	}
	if outputs["update-type"] != "N/A" {
		t.Fatalf("new events must report update-type N/A, got %s", outputs["update-type"])
	}
	if !strings.Contains(outputs["event-data"], `"March"`) {
		t.Fatalf("event data not serialized: %s", outputs["event-data"])
	}
	if outputs["commit-message"] != "Add new event: March" {
		t.Fatalf("unexpected commit message: %s", outputs["commit-message"])
	}
}

func TestBuildOutputsInvalid(t *testing.T) {
	t.Parallel()

	outputs := BuildOutputs(issue.Result{
		Valid:  false,
		Errors: []string{"Missing required field: Date", "Sources must contain at least one valid URL"},
	})
	if outputs["valid"] != "false" {
		t.Fatalf("unexpected valid flag: %s", outputs["valid"])
	}
	want := "Missing required field: Date; Sources must contain at least one valid URL"
	if outputs["error-message"] != want {
		t.Fatalf("unexpected error message: %s", outputs["error-message"])
	}
	if _, ok := outputs["event-data"]; ok {
		t.Fatal("invalid results must not emit event data")
	}
}

func TestWriteOutputsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	t.Setenv(githubOutputEnv, path)

	if err := WriteOutputs(map[string]string{"valid": "true", "pr-title": "[EVENT] X"}); err != nil {
		t.Fatalf("WriteOutputs error: %v", err)
	}
	if err := WriteOutputs(map[string]string{"event-type": "new"}); err != nil {
		t.Fatalf("second WriteOutputs error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	got := string(raw)
	if !strings.Contains(got, "pr-title=[EVENT] X\n") || !strings.Contains(got, "valid=true\n") {
		t.Fatalf("unexpected output: %q", got)
	}
	if !strings.Contains(got, "event-type=new\n") {
		t.Fatal("outputs must append, not truncate")
	}
}

func TestWriteOutputsMultilineHeredoc(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output")
	t.Setenv(githubOutputEnv, path)

	if err := WriteOutputs(map[string]string{"error-message": "first\nsecond"}); err != nil {
		t.Fatalf("WriteOutputs error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	want := "error-message<<__EOF__\nfirst\nsecond\n__EOF__\n"
	if string(raw) != want {
		t.Fatalf("unexpected heredoc form: %q", raw)
	}
}
