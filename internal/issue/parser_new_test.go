package issue

import (
	"strings"
	"testing"
)

const newEventBody = `### Event Title
Police crackdown on downtown march

### Event Description
Officers dispersed a peaceful march near the central square
and detained several organizers without charges.

### Date
03/15/2025

### Time
14:30

### Location
Istanbul, Turkey

### Coordinates
41.0863, 29.0445

### Primary Category
Suppression of Protests

### Responsible Party
Local police

### Sources
https://example.org/report-1
https://example.org/report-2

### Additional Context
Second march of the month in the same district.
`

func TestNewEventParserHappyPath(t *testing.T) {
	t.Parallel()

	parser := &NewEventParser{}
	result := parser.Parse(Submission{Number: 12, Body: newEventBody})

	if !result.Valid {
		t.Fatalf("expected valid result, got errors: %v", result.Errors)
	}
	if result.EventType != "new" {
		t.Fatalf("unexpected event type: %s", result.EventType)
	}

	draft := result.Event
	if draft == nil {
		t.Fatal("expected event draft")
	}
	if draft.Title != "Police crackdown on downtown march" {
		t.Fatalf("unexpected title: %s", draft.Title)
	}
	if !strings.Contains(draft.Description, "detained several organizers") {
		t.Fatalf("multiline description lost: %q", draft.Description)
	}
	if draft.Latitude != "41.0863" || draft.Longitude != "29.0445" {
		t.Fatalf("coordinates not split: lat=%q lng=%q", draft.Latitude, draft.Longitude)
	}
	if len(draft.SourceList) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(draft.SourceList))
	}
	if draft.AssociationKey != "PROTEST_SUPPRESSION" {
		t.Fatalf("unexpected association key: %s", draft.AssociationKey)
	}

	if result.CommitMessage != "Add new event: Police crackdown on downtown march" {
		t.Fatalf("unexpected commit message: %s", result.CommitMessage)
	}
	if result.PRTitle != "[EVENT] Police crackdown on downtown march" {
		t.Fatalf("unexpected PR title: %s", result.PRTitle)
	}
	if result.EventDate != "03/15/2025" || result.EventLocation != "Istanbul, Turkey" {
		t.Fatalf("unexpected hand-off metadata: %s %s", result.EventDate, result.EventLocation)
	}
}

func TestNewEventParserAccumulatesErrors(t *testing.T) {
	t.Parallel()

	body := `### Event Title
Something happened

### Event Description
A description long enough to pass later checks.

### Date
13/01/2025

### Location
Ankara

### Coordinates
not-a-pair

### Primary Category
Terrorism

### Sources
no links here
`

	parser := &NewEventParser{}
	result := parser.Parse(Submission{Number: 3, Body: body})

	if result.Valid {
		t.Fatal("expected invalid result")
	}

	want := []string{
		"Date must be in MM/DD/YYYY format",
		`Coordinates must be in "latitude, longitude" format`,
		"Invalid category. Must be one of:",
		"Sources must contain at least one valid URL",
	}
	for _, fragment := range want {
		found := false
		for _, msg := range result.Errors {
			if strings.Contains(msg, fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing error %q in %v", fragment, result.Errors)
		}
	}
}

func TestNewEventParserRejectsImpossibleDate(t *testing.T) {
	t.Parallel()

	body := strings.Replace(newEventBody, "03/15/2025", "02/30/2025", 1)
	result := (&NewEventParser{}).Parse(Submission{Body: body})

	if result.Valid {
		t.Fatal("expected invalid result for 02/30")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "not a real calendar date") {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestNewEventParserMissingRequiredFields(t *testing.T) {
	t.Parallel()

	result := (&NewEventParser{}).Parse(Submission{Body: "nothing useful"})
	if result.Valid {
		t.Fatal("expected invalid result")
	}

	for _, name := range []string{"Event Title", "Event Description", "Date", "Location", "Primary Category", "Sources"} {
		found := false
		for _, msg := range result.Errors {
			if msg == "Missing required field: "+name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing required-field error for %s in %v", name, result.Errors)
		}
	}
}

func TestNewEventParserCategoryIsCaseSensitive(t *testing.T) {
	t.Parallel()

	body := strings.Replace(newEventBody, "Suppression of Protests", "suppression of protests", 1)
	result := (&NewEventParser{}).Parse(Submission{Body: body})

	if result.Valid {
		t.Fatal("lowercased category must not be coerced into the enum")
	}
}

func TestUpdateParser(t *testing.T) {
	t.Parallel()

	body := `### Event ID
TR_042

### Current Event Title
Police crackdown on downtown march

### Type of Update
Legal development

### Description of Changes
Charges against two organizers were dropped.
`

	result := (&UpdateParser{}).Parse(Submission{Number: 9, Body: body})

	if !result.Valid {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.EventType != "update" {
		t.Fatalf("unexpected event type: %s", result.EventType)
	}
	if result.Update == nil || result.Update.EventID != "TR_042" {
		t.Fatalf("unexpected update draft: %+v", result.Update)
	}
	if result.CommitMessage != "Update event TR_042: Legal development" {
		t.Fatalf("unexpected commit message: %s", result.CommitMessage)
	}
	if result.PRTitle != "[UPDATE] TR_042 - Legal development" {
		t.Fatalf("unexpected PR title: %s", result.PRTitle)
	}
	if result.EventDate != "N/A" || result.EventLocation != "N/A" {
		t.Fatalf("update metadata must use N/A placeholders, got %s %s", result.EventDate, result.EventLocation)
	}
}

func TestUpdateParserMissingEventID(t *testing.T) {
	t.Parallel()

	result := (&UpdateParser{}).Parse(Submission{Body: "### Type of Update\nCorrection\n"})
	if result.Valid {
		t.Fatal("expected invalid result")
	}
}

func TestDispatcherRoutesByLabel(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&NewEventParser{})
	reg.Register(&UpdateParser{})
	dispatcher := NewDispatcher(reg, nil)

	sub := Submission{Number: 1, Body: newEventBody}
	result, err := dispatcher.Parse(sub)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if result.EventType != "new" {
		t.Fatalf("expected new-event pipeline, got %s", result.EventType)
	}

	sub.Labels = []string{"bug", UpdateLabel}
	sub.Body = "### Event ID\nTR_001\n\n### Current Event Title\nT\n\n### Type of Update\nCorrection\n\n### Description of Changes\nFixed.\n"
	result, err = dispatcher.Parse(sub)
	if err != nil {
		t.Fatalf("dispatch error: %v", err)
	}
	if result.EventType != "update" {
		t.Fatalf("expected update pipeline, got %s", result.EventType)
	}
}
