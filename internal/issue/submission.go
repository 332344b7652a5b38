package issue

// Submission is one incoming GitHub issue: free-text body, title, and the
// labels that select the processing pipeline.
type Submission struct {
	Number int
	Title  string
	Body   string
	Labels []string
}

// UpdateLabel routes a submission to the update pipeline instead of the
// new-event pipeline.
const UpdateLabel = "update-event"

// IsUpdate reports whether the submission carries the update label.
func (s Submission) IsUpdate() bool {
	for _, label := range s.Labels {
		if label == UpdateLabel {
			return true
		}
	}
	return false
}

// EventDraft carries the extracted and derived fields of a new-event
// submission before the record store assigns identifiers.
type EventDraft struct {
	Title             string
	Description       string
	Date              string
	Time              string
	Location          string
	Coordinates       string
	Category          string
	ResponsibleParty  string
	Impact            string
	Sources           string
	AdditionalContext string

	// Derived during normalization.
	Latitude       string
	Longitude      string
	SourceList     []string
	AssociationKey string
}

// UpdateDraft carries the fields of an update submission. Applying it only
// appends an update note; event fields are never rewritten.
type UpdateDraft struct {
	EventID           string
	CurrentTitle      string
	UpdateType        string
	UpdateDescription string
}

// Result is the outcome of parsing one submission. On failure Errors holds
// every problem found, so a submitter can fix them all in one revision.
type Result struct {
	Valid  bool
	Errors []string

	EventType  string // "new" or "update"
	Event      *EventDraft
	Update     *UpdateDraft
	UpdateType string

	// Hand-off metadata for the change-management workflow.
	CommitMessage string
	PRTitle       string
	EventDate     string
	EventLocation string
}
