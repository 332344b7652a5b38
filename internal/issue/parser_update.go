package issue

import "fmt"

// UpdateParser extracts an update submission. Updates never rewrite event
// fields; they only produce an update-note draft.
type UpdateParser struct{}

// Name identifies the pipeline inside the registry.
func (p *UpdateParser) Name() string {
	return UpdateLabel
}

// Parse extracts the four required update fields.
func (p *UpdateParser) Parse(sub Submission) Result {
	ex := NewExtractor(sub.Body)

	draft := UpdateDraft{
		EventID:           ex.Field("Event ID", true),
		CurrentTitle:      ex.Field("Current Event Title", true),
		UpdateType:        ex.Field("Type of Update", true),
		UpdateDescription: ex.Field("Description of Changes", true),
	}

	if len(ex.Errors) > 0 {
		return Result{Valid: false, Errors: ex.Errors}
	}

	return Result{
		Valid:         true,
		EventType:     "update",
		Update:        &draft,
		UpdateType:    draft.UpdateType,
		CommitMessage: fmt.Sprintf("Update event %s: %s", draft.EventID, draft.UpdateType),
		PRTitle:       fmt.Sprintf("[UPDATE] %s - %s", draft.EventID, draft.UpdateType),
		EventDate:     "N/A",
		EventLocation: "N/A",
	}
}
