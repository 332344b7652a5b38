package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"IncidentIngest/internal/domain"
)

var (
	eventIDExpr = regexp.MustCompile(`^TR_\d{3}$`)
	dateExpr    = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	coordExpr   = regexp.MustCompile(`^-?\d+\.?\d*$`)
)

// ValidateEvents checks every event against the structural schema. Returned
// messages carry the offending field path.
func ValidateEvents(events []domain.Event) []string {
	var errs []string
	for i, event := range events {
		path := fmt.Sprintf("events[%d]", i)

		if !eventIDExpr.MatchString(event.ID) {
			errs = append(errs, fmt.Sprintf("%s.id: %q does not match TR_NNN", path, event.ID))
		}
		if len(event.Description) < 10 {
			errs = append(errs, fmt.Sprintf("%s.description: must be at least 10 characters", path))
		}
		if !dateExpr.MatchString(event.Date) {
			errs = append(errs, fmt.Sprintf("%s.date: %q must be MM/DD/YYYY", path, event.Date))
		}
		if len(event.Location) < 2 {
			errs = append(errs, fmt.Sprintf("%s.location: must be at least 2 characters", path))
		}
		if event.Latitude != "" && !coordExpr.MatchString(event.Latitude) {
			errs = append(errs, fmt.Sprintf("%s.latitude: %q is not a decimal string", path, event.Latitude))
		}
		if event.Longitude != "" && !coordExpr.MatchString(event.Longitude) {
			errs = append(errs, fmt.Sprintf("%s.longitude: %q is not a decimal string", path, event.Longitude))
		}
		if event.Graphic != domain.GraphicTrue && event.Graphic != domain.GraphicFalse {
			errs = append(errs, fmt.Sprintf("%s.graphic: %q must be TRUE or FALSE", path, event.Graphic))
		}
		if event.Sources == nil {
			errs = append(errs, fmt.Sprintf("%s.sources: is required", path))
		}
		if event.Associations == nil {
			errs = append(errs, fmt.Sprintf("%s.associations: is required", path))
		}
		for j, note := range event.UpdateNotes {
			if _, err := time.Parse(time.RFC3339, note.Date); err != nil {
				errs = append(errs, fmt.Sprintf("%s.update_notes[%d].date: %q is not an ISO timestamp", path, j, note.Date))
			}
		}
	}
	return errs
}

// ValidateSources checks the source collection.
func ValidateSources(sources map[string]domain.Source) []string {
	var errs []string
	for key, source := range sources {
		path := fmt.Sprintf("sources[%s]", key)

		if source.ID == "" {
			errs = append(errs, fmt.Sprintf("%s.id: is required", path))
		} else if source.ID != key {
			errs = append(errs, fmt.Sprintf("%s.id: %q does not match its key", path, source.ID))
		}
		if source.Paths == nil {
			errs = append(errs, fmt.Sprintf("%s.paths: is required", path))
		}
		for j, p := range source.Paths {
			if !validSourcePath(p) {
				errs = append(errs, fmt.Sprintf("%s.paths[%d]: %q is neither a URL nor %s", path, j, p, domain.HiddenPath))
			}
		}
		if source.Title == "" {
			errs = append(errs, fmt.Sprintf("%s.title: is required", path))
		}
		if source.Description == "" {
			errs = append(errs, fmt.Sprintf("%s.description: is required", path))
		}
	}
	return errs
}

// ValidateAssociations checks the association collection.
func ValidateAssociations(associations map[string]domain.Association) []string {
	var errs []string
	for key, assoc := range associations {
		path := fmt.Sprintf("associations[%s]", key)

		if assoc.ID == "" {
			errs = append(errs, fmt.Sprintf("%s.id: is required", path))
		} else if assoc.ID != key {
			errs = append(errs, fmt.Sprintf("%s.id: %q does not match its key", path, assoc.ID))
		}
		if assoc.Title == "" {
			errs = append(errs, fmt.Sprintf("%s.title: is required", path))
		}
		if assoc.Description == "" {
			errs = append(errs, fmt.Sprintf("%s.description: is required", path))
		}
		if assoc.Mode != "" && assoc.Mode != domain.ModeDefault && assoc.Mode != domain.ModeCluster {
			errs = append(errs, fmt.Sprintf("%s.mode: %q must be DEFAULT or CLUSTER", path, assoc.Mode))
		}
	}
	return errs
}

// ValidateAggregate checks snapshot metadata and its embedded collections.
func ValidateAggregate(agg domain.Aggregate) []string {
	var errs []string

	if _, err := time.Parse(time.RFC3339, agg.Metadata.LastUpdated); err != nil {
		errs = append(errs, fmt.Sprintf("aggregate.metadata.lastUpdated: %q is not an ISO timestamp", agg.Metadata.LastUpdated))
	}
	if agg.Metadata.TotalEvents < 0 {
		errs = append(errs, "aggregate.metadata.totalEvents: must not be negative")
	}
	if agg.Metadata.TotalSources < 0 {
		errs = append(errs, "aggregate.metadata.totalSources: must not be negative")
	}
	if agg.Metadata.TotalAssociations < 0 {
		errs = append(errs, "aggregate.metadata.totalAssociations: must not be negative")
	}

	errs = append(errs, prefix("aggregate.", ValidateEvents(agg.Events))...)
	errs = append(errs, prefix("aggregate.", ValidateSources(agg.Sources))...)
	errs = append(errs, prefix("aggregate.", ValidateAssociations(agg.Associations))...)
	return errs
}

func validSourcePath(path string) bool {
	if path == domain.HiddenPath {
		return true
	}
	u, err := url.Parse(path)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func prefix(p string, msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, p+msg)
	}
	return out
}
