// Package validate checks the record collections in two phases: structural
// schema validation first, then cross-collection referential integrity and
// date sanity. Errors block persistence; warnings are surfaced for human
// review only.
package validate

import (
	"fmt"
	"sort"
	"time"

	"IncidentIngest/internal/domain"
)

// CoverageStart is the first date the dataset documents; earlier event dates
// draw a warning.
var CoverageStart = time.Date(2013, time.January, 1, 0, 0, 0, 0, time.UTC)

// Report is the outcome of one validation pass.
type Report struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether persistence may proceed. Warnings never block.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Validator runs both validation phases. Now is swappable for tests.
type Validator struct {
	Now func() time.Time
}

// New builds a validator against the wall clock.
func New() *Validator {
	return &Validator{Now: time.Now}
}

// Validate checks the three collections plus an optional aggregate snapshot.
// Integrity checks run only when the collections are structurally sound.
func (v *Validator) Validate(events []domain.Event, sources map[string]domain.Source, associations map[string]domain.Association, agg *domain.Aggregate) Report {
	var report Report

	report.Errors = append(report.Errors, ValidateEvents(events)...)
	report.Errors = append(report.Errors, ValidateSources(sources)...)
	report.Errors = append(report.Errors, ValidateAssociations(associations)...)
	if agg != nil {
		report.Errors = append(report.Errors, ValidateAggregate(*agg)...)
	}

	if len(report.Errors) > 0 {
		return report
	}

	errs, warns := v.checkIntegrity(events, sources, associations)
	report.Errors = append(report.Errors, errs...)
	report.Warnings = append(report.Warnings, warns...)
	return report
}

func (v *Validator) checkIntegrity(events []domain.Event, sources map[string]domain.Source, associations map[string]domain.Association) (errs, warns []string) {
	seen := map[string]bool{}
	for _, event := range events {
		if seen[event.ID] {
			errs = append(errs, fmt.Sprintf("Duplicate event ID found: %s", event.ID))
		}
		seen[event.ID] = true
	}

	referencedSources := map[string]bool{}
	referencedAssociations := map[string]bool{}
	for _, event := range events {
		for _, sourceID := range event.Sources {
			referencedSources[sourceID] = true
			if _, ok := sources[sourceID]; !ok {
				errs = append(errs, fmt.Sprintf("Event %s references non-existent source: %s", event.ID, sourceID))
			}
		}
		for _, assocID := range event.Associations {
			referencedAssociations[assocID] = true
			if _, ok := associations[assocID]; !ok {
				errs = append(errs, fmt.Sprintf("Event %s references non-existent association: %s", event.ID, assocID))
			}
		}
	}

	for _, sourceID := range sortedKeys(sources) {
		if !referencedSources[sourceID] && sourceID != domain.HiddenSourceID {
			warns = append(warns, fmt.Sprintf("Orphaned source (not referenced by any event): %s", sourceID))
		}
	}
	for _, assocID := range sortedKeys(associations) {
		if !referencedAssociations[assocID] {
			warns = append(warns, fmt.Sprintf("Orphaned association (not referenced by any event): %s", assocID))
		}
	}

	now := v.Now()
	for _, event := range events {
		eventDate, err := time.Parse("01/02/2006", event.Date)
		if err != nil {
			continue
		}
		if eventDate.After(now) {
			warns = append(warns, fmt.Sprintf("Event %s has future date: %s", event.ID, event.Date))
		}
		if eventDate.Before(CoverageStart) {
			warns = append(warns, fmt.Sprintf("Event %s has date before coverage period: %s", event.ID, event.Date))
		}
	}

	return errs, warns
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
