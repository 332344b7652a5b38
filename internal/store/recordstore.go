package store

import (
	"fmt"
	"time"

	"IncidentIngest/internal/domain"
)

// NewEventInput is a normalized draft ready for identifier assignment.
type NewEventInput struct {
	Title            string
	Description      string
	Date             string
	Time             string
	Location         string
	Latitude         string
	Longitude        string
	ResponsibleParty string
	Impact           string
	Category         string
	AssociationKey   string
	SourceURLs       []string
}

// RecordStore owns the three collections for the duration of a pipeline run.
// It is not safe for concurrent use; the pipeline has exactly one writer.
type RecordStore struct {
	events       []domain.Event
	sources      map[string]domain.Source
	associations map[string]domain.Association
}

// New builds a store around loaded collections. Nil maps are allocated and
// legacy FILTER association modes are normalized to DEFAULT.
func New(events []domain.Event, sources map[string]domain.Source, associations map[string]domain.Association) *RecordStore {
	if sources == nil {
		sources = map[string]domain.Source{}
	}
	if associations == nil {
		associations = map[string]domain.Association{}
	}
	for id, assoc := range associations {
		if assoc.Mode == domain.ModeFilter || assoc.Mode == "" {
			assoc.Mode = domain.ModeDefault
			associations[id] = assoc
		}
	}
	return &RecordStore{events: events, sources: sources, associations: associations}
}

// FromAggregate rebuilds a store from a published snapshot.
func FromAggregate(agg domain.Aggregate) *RecordStore {
	return New(agg.Events, agg.Sources, agg.Associations)
}

// Events returns the live event sequence in insertion order.
func (s *RecordStore) Events() []domain.Event { return s.events }

// Sources returns the live source collection.
func (s *RecordStore) Sources() map[string]domain.Source { return s.sources }

// Associations returns the live association collection.
func (s *RecordStore) Associations() map[string]domain.Association { return s.associations }

// AddEvent allocates an id, creates one source record per submitted URL and
// the category's association record, then appends the event. Returns the
// assigned event id.
func (s *RecordStore) AddEvent(input NewEventInput) (string, error) {
	eventID := NextEventID(s.events)
	for _, event := range s.events {
		if event.ID == eventID {
			return "", fmt.Errorf("allocate %s: %w", eventID, domain.ErrDuplicateID)
		}
	}

	sourceIDs := make([]string, 0, len(input.SourceURLs))
	for i, url := range input.SourceURLs {
		sourceID := NextSourceID(s.sources, eventID)
		s.sources[sourceID] = domain.Source{
			ID:          sourceID,
			Paths:       []string{url},
			Title:       eventID,
			Description: fmt.Sprintf("Source %d for %s", i+1, input.Title),
		}
		sourceIDs = append(sourceIDs, sourceID)
	}

	associationID := s.UpsertAssociation(input.AssociationKey, input.Category)

	s.events = append(s.events, domain.Event{
		Sources:          sourceIDs,
		ID:               eventID,
		Description:      input.Description,
		Date:             input.Date,
		Location:         input.Location,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		Graphic:          domain.GraphicFalse,
		Associations:     []string{associationID},
		Time:             input.Time,
		ResponsibleParty: input.ResponsibleParty,
		Impact:           input.Impact,
	})

	return eventID, nil
}

// UpsertAssociation returns the association id for a category key, creating
// the record on first use. Same key, same record.
func (s *RecordStore) UpsertAssociation(key, category string) string {
	id := AssociationID(key)
	if _, ok := s.associations[id]; !ok {
		s.associations[id] = domain.Association{
			ID:          id,
			Title:       category,
			Description: fmt.Sprintf("Events related to %s", category),
			Mode:        domain.ModeDefault,
		}
	}
	return id
}

// DescribeSource replaces a source's title and description, keeping its paths.
// Used by optional enrichment; unknown ids are ignored.
func (s *RecordStore) DescribeSource(sourceID, title, description string) {
	src, ok := s.sources[sourceID]
	if !ok {
		return
	}
	if title != "" {
		src.Title = title
	}
	if description != "" {
		src.Description = description
	}
	s.sources[sourceID] = src
}

// AppendUpdateNote appends to the event's append-only change log. The store
// is left untouched when the event id does not resolve.
func (s *RecordStore) AppendUpdateNote(eventID string, note domain.UpdateNote) error {
	for i := range s.events {
		if s.events[i].ID == eventID {
			s.events[i].UpdateNotes = append(s.events[i].UpdateNotes, note)
			return nil
		}
	}
	return fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
}

// ProjectAggregate recomputes the derived snapshot from current collections.
// Call before every persist.
func (s *RecordStore) ProjectAggregate(now time.Time) domain.Aggregate {
	return domain.Aggregate{
		Events:       s.events,
		Sources:      s.sources,
		Associations: s.associations,
		Metadata:     domain.NewMetadata(len(s.events), len(s.sources), len(s.associations), now),
	}
}
