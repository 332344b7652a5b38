package issue

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"IncidentIngest/internal/domain"
)

var (
	dateExpr  = regexp.MustCompile(`^(0[1-9]|1[0-2])/(0[1-9]|[12]\d|3[01])/\d{4}$`)
	timeExpr  = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	coordExpr = regexp.MustCompile(`^-?\d+\.?\d*,\s*-?\d+\.?\d*$`)
	urlExpr   = regexp.MustCompile(`https?://\S+`)
)

// NewEventParser extracts and normalizes a new-event submission.
type NewEventParser struct{}

// Name identifies the pipeline inside the registry.
func (p *NewEventParser) Name() string {
	return "new-event"
}

// Parse runs extraction, format validation, and derivation. Errors accumulate
// across all fields instead of short-circuiting.
func (p *NewEventParser) Parse(sub Submission) Result {
	ex := NewExtractor(sub.Body)

	draft := EventDraft{
		Title:             ex.Field("Event Title", true),
		Description:       ex.MultilineField("Event Description", true),
		Date:              ex.Field("Date", true),
		Time:              ex.Field("Time", false),
		Location:          ex.Field("Location", true),
		Coordinates:       ex.Field("Coordinates", false),
		Category:          ex.Field("Primary Category", true),
		ResponsibleParty:  ex.Field("Responsible Party", false),
		Impact:            ex.MultilineField("Impact", false),
		Sources:           ex.MultilineField("Sources", true),
		AdditionalContext: ex.MultilineField("Additional Context", false),
	}

	errs := append([]string{}, ex.Errors...)
	errs = append(errs, validateDraft(draft)...)
	deriveDraft(&draft)

	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}

	return Result{
		Valid:         true,
		EventType:     "new",
		Event:         &draft,
		CommitMessage: fmt.Sprintf("Add new event: %s", draft.Title),
		PRTitle:       fmt.Sprintf("[EVENT] %s", draft.Title),
		EventDate:     draft.Date,
		EventLocation: draft.Location,
	}
}

func validateDraft(draft EventDraft) []string {
	var errs []string

	if draft.Date != "" {
		if !dateExpr.MatchString(draft.Date) {
			errs = append(errs, "Date must be in MM/DD/YYYY format")
		} else if _, err := time.Parse("01/02/2006", draft.Date); err != nil {
			errs = append(errs, fmt.Sprintf("Date %s is not a real calendar date", draft.Date))
		}
	}

	if draft.Time != "" && !timeExpr.MatchString(draft.Time) {
		errs = append(errs, "Time must be in HH:MM format (24-hour)")
	}

	if draft.Coordinates != "" && !coordExpr.MatchString(draft.Coordinates) {
		errs = append(errs, `Coordinates must be in "latitude, longitude" format`)
	}

	if draft.Category != "" && !domain.ValidCategory(draft.Category) {
		errs = append(errs, fmt.Sprintf("Invalid category. Must be one of: %s", strings.Join(domain.Categories, ", ")))
	}

	if draft.Sources != "" && !urlExpr.MatchString(draft.Sources) {
		errs = append(errs, "Sources must contain at least one valid URL")
	}

	return errs
}

func deriveDraft(draft *EventDraft) {
	if draft.Coordinates != "" {
		parts := strings.SplitN(draft.Coordinates, ",", 2)
		draft.Latitude = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			draft.Longitude = strings.TrimSpace(parts[1])
		}
	}

	if draft.Sources != "" {
		for _, line := range strings.Split(draft.Sources, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				draft.SourceList = append(draft.SourceList, line)
			}
		}
	}

	draft.AssociationKey = domain.AssociationKey(draft.Category)
}
