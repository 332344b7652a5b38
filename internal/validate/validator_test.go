package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IncidentIngest/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func validEvent(id string) domain.Event {
	return domain.Event{
		ID:           id,
		Description:  "A sufficiently long description.",
		Date:         "03/15/2025",
		Location:     "Istanbul",
		Latitude:     "41.0863",
		Longitude:    "29.0445",
		Graphic:      domain.GraphicFalse,
		Sources:      []string{id + "_src1"},
		Associations: []string{"tr_asc_censorship"},
	}
}

func validCollections() ([]domain.Event, map[string]domain.Source, map[string]domain.Association) {
	events := []domain.Event{validEvent("TR_001")}
	sources := map[string]domain.Source{
		"TR_001_src1": {
			ID:          "TR_001_src1",
			Paths:       []string{"https://example.org/report"},
			Title:       "TR_001",
			Description: "Source 1 for the event",
		},
	}
	associations := map[string]domain.Association{
		"tr_asc_censorship": {
			ID:          "tr_asc_censorship",
			Title:       "Censorship",
			Description: "Events related to Censorship",
			Mode:        domain.ModeDefault,
		},
	}
	return events, sources, associations
}

func TestValidateCleanCollections(t *testing.T) {
	t.Parallel()

	v := &Validator{Now: fixedNow}
	events, sources, associations := validCollections()

	report := v.Validate(events, sources, associations, nil)
	require.True(t, report.Valid(), "errors: %v", report.Errors)
	assert.Empty(t, report.Warnings)
}

func TestValidateEventsStructure(t *testing.T) {
	t.Parallel()

	event := domain.Event{
		ID:          "TR_1",
		Description: "short",
		Date:        "2025-03-15",
		Location:    "X",
		Latitude:    "north",
		Graphic:     "yes",
	}

	errs := ValidateEvents([]domain.Event{event})
	assert.Contains(t, errs, `events[0].id: "TR_1" does not match TR_NNN`)
	assert.Contains(t, errs, "events[0].description: must be at least 10 characters")
	assert.Contains(t, errs, `events[0].date: "2025-03-15" must be MM/DD/YYYY`)
	assert.Contains(t, errs, "events[0].location: must be at least 2 characters")
	assert.Contains(t, errs, `events[0].latitude: "north" is not a decimal string`)
	assert.Contains(t, errs, `events[0].graphic: "yes" must be TRUE or FALSE`)
	assert.Contains(t, errs, "events[0].sources: is required")
	assert.Contains(t, errs, "events[0].associations: is required")
}

func TestValidateEventsEmptyCoordinatesAllowed(t *testing.T) {
	t.Parallel()

	event := validEvent("TR_001")
	event.Latitude = ""
	event.Longitude = ""
	assert.Empty(t, ValidateEvents([]domain.Event{event}))
}

func TestValidateSourcesPaths(t *testing.T) {
	t.Parallel()

	sources := map[string]domain.Source{
		"TR_001_src1": {
			ID:          "TR_001_src1",
			Paths:       []string{domain.HiddenPath, "https://example.org", "not a url"},
			Title:       "TR_001",
			Description: "desc",
		},
	}

	errs := ValidateSources(sources)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "paths[2]")
}

func TestValidateSourcesKeyMismatch(t *testing.T) {
	t.Parallel()

	sources := map[string]domain.Source{
		"TR_001_src1": {
			ID:          "TR_002_src1",
			Paths:       []string{"https://example.org"},
			Title:       "t",
			Description: "d",
		},
	}

	errs := ValidateSources(sources)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "does not match its key")
}

func TestValidateAssociationsMode(t *testing.T) {
	t.Parallel()

	associations := map[string]domain.Association{
		"tr_asc_x": {ID: "tr_asc_x", Title: "X", Description: "d", Mode: "FILTER"},
	}

	errs := ValidateAssociations(associations)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "must be DEFAULT or CLUSTER")
}

func TestValidateDanglingReferencesBlock(t *testing.T) {
	t.Parallel()

	v := &Validator{Now: fixedNow}
	events, sources, associations := validCollections()
	events[0].Sources = append(events[0].Sources, "TR_001_src9")

	report := v.Validate(events, sources, associations, nil)
	require.False(t, report.Valid())
	assert.Contains(t, report.Errors, "Event TR_001 references non-existent source: TR_001_src9")
}

func TestValidateDuplicateEventIDs(t *testing.T) {
	t.Parallel()

	v := &Validator{Now: fixedNow}
	events, sources, associations := validCollections()
	events = append(events, events[0])

	report := v.Validate(events, sources, associations, nil)
	require.False(t, report.Valid())
	assert.Contains(t, report.Errors, "Duplicate event ID found: TR_001")
}

func TestValidateOrphanedSourceWarnsOnly(t *testing.T) {
	t.Parallel()

	v := &Validator{Now: fixedNow}
	events, sources, associations := validCollections()
	sources["TR_099_src1"] = domain.Source{
		ID:          "TR_099_src1",
		Paths:       []string{"https://example.org/x"},
		Title:       "TR_099",
		Description: "left behind",
	}

	report := v.Validate(events, sources, associations, nil)
	require.True(t, report.Valid())
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "Orphaned source (not referenced by any event): TR_099_src1", report.Warnings[0])
}

func TestValidateHiddenSourceNeverOrphaned(t *testing.T) {
	t.Parallel()

	v := &Validator{Now: fixedNow}
	events, sources, associations := validCollections()
	sources[domain.HiddenSourceID] = domain.Source{
		ID:          domain.HiddenSourceID,
		Paths:       []string{domain.HiddenPath},
		Title:       "Hidden",
		Description: "Placeholder for withheld sources",
	}

	report := v.Validate(events, sources, associations, nil)
	require.True(t, report.Valid())
	assert.Empty(t, report.Warnings)
}

func TestValidateDateWarnings(t *testing.T) {
	t.Parallel()

	v := &Validator{Now: fixedNow}
	events, sources, associations := validCollections()

	future := validEvent("TR_002")
	future.Date = "12/31/2030"
	future.Sources = []string{"TR_001_src1"}
	early := validEvent("TR_003")
	early.Date = "05/01/2010"
	early.Sources = []string{"TR_001_src1"}
	events = append(events, future, early)

	report := v.Validate(events, sources, associations, nil)
	require.True(t, report.Valid(), "errors: %v", report.Errors)
	assert.Contains(t, report.Warnings, "Event TR_002 has future date: 12/31/2030")
	assert.Contains(t, report.Warnings, "Event TR_003 has date before coverage period: 05/01/2010")
}

func TestValidateIntegritySkippedWhenStructureBroken(t *testing.T) {
	t.Parallel()

	v := &Validator{Now: fixedNow}
	events, sources, associations := validCollections()
	events[0].Graphic = "maybe"
	events[0].Sources = []string{"TR_001_src9"}

	report := v.Validate(events, sources, associations, nil)
	require.False(t, report.Valid())
	assert.NotContains(t, report.Errors, "Event TR_001 references non-existent source: TR_001_src9")
}

func TestValidateAggregate(t *testing.T) {
	t.Parallel()

	events, sources, associations := validCollections()
	agg := domain.Aggregate{
		Events:       events,
		Sources:      sources,
		Associations: associations,
		Metadata:     domain.NewMetadata(1, 1, 1, fixedNow()),
	}
	assert.Empty(t, ValidateAggregate(agg))

	agg.Metadata.LastUpdated = "yesterday"
	errs := ValidateAggregate(agg)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "aggregate.metadata.lastUpdated")
}

func TestValidateUpdateNoteTimestamps(t *testing.T) {
	t.Parallel()

	event := validEvent("TR_001")
	event.UpdateNotes = []domain.UpdateNote{
		{Date: "2025-03-20T10:00:00Z", Type: "Correction", Description: "ok"},
		{Date: "03/20/2025", Type: "Correction", Description: "bad stamp"},
	}

	errs := ValidateEvents([]domain.Event{event})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "update_notes[1].date")
}
