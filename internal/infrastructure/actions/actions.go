// Package actions bridges the pipeline and GitHub Actions: the submission
// arrives through the workflow's environment, results leave through the
// GITHUB_OUTPUT file for later workflow steps (branch, commit, PR).
package actions

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"IncidentIngest/internal/issue"
)

const (
	issueNumberEnv  = "ISSUE_NUMBER"
	issueTitleEnv   = "ISSUE_TITLE"
	issueBodyEnv    = "ISSUE_BODY"
	issueLabelsEnv  = "ISSUE_LABELS"
	githubOutputEnv = "GITHUB_OUTPUT"
)

// SubmissionFromEnv reads the issue payload the workflow exported. Labels
// arrive as the JSON array GitHub's event payload uses.
func SubmissionFromEnv() (issue.Submission, error) {
	body := os.Getenv(issueBodyEnv)
	if body == "" {
		return issue.Submission{}, fmt.Errorf("%s is not set", issueBodyEnv)
	}

	number := 0
	if raw := os.Getenv(issueNumberEnv); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return issue.Submission{}, fmt.Errorf("parse %s: %w", issueNumberEnv, err)
		}
		number = n
	}

	var labels []string
	if raw := os.Getenv(issueLabelsEnv); raw != "" {
		var entries []struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return issue.Submission{}, fmt.Errorf("parse %s: %w", issueLabelsEnv, err)
		}
		for _, entry := range entries {
			labels = append(labels, entry.Name)
		}
	}

	return issue.Submission{
		Number: number,
		Title:  os.Getenv(issueTitleEnv),
		Body:   body,
		Labels: labels,
	}, nil
}

// BuildOutputs flattens a parse result into workflow output keys.
func BuildOutputs(result issue.Result) map[string]string {
	outputs := map[string]string{
		"valid": strconv.FormatBool(result.Valid),
	}

	if !result.Valid {
		outputs["error-message"] = strings.Join(result.Errors, "; ")
		return outputs
	}

	var draft any = result.Event
	if result.EventType == "update" {
		draft = result.Update
	}
	data, _ := json.Marshal(draft)

	outputs["event-data"] = string(data)
	outputs["event-type"] = result.EventType
	outputs["commit-message"] = result.CommitMessage
	outputs["pr-title"] = result.PRTitle
	outputs["event-date"] = result.EventDate
	outputs["event-location"] = result.EventLocation
	if result.UpdateType != "" {
		outputs["update-type"] = result.UpdateType
	} else {
		outputs["update-type"] = "N/A"
	}
	return outputs
}

// WriteOutputs appends key=value pairs to the GITHUB_OUTPUT file, using the
// heredoc form for multi-line values. Outside Actions the pairs go to stdout
// so local runs stay inspectable.
func WriteOutputs(outputs map[string]string) error {
	keys := make([]string, 0, len(outputs))
	for key := range outputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		value := outputs[key]
		if strings.Contains(value, "\n") {
			fmt.Fprintf(&sb, "%s<<__EOF__\n%s\n__EOF__\n", key, value)
		} else {
			fmt.Fprintf(&sb, "%s=%s\n", key, value)
		}
	}

	path := os.Getenv(githubOutputEnv)
	if path == "" {
		_, err := os.Stdout.WriteString(sb.String())
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", githubOutputEnv, err)
	}
	defer f.Close()

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}
	return nil
}
