package domain

import "time"

// Graphic flag values stored on events.
const (
	GraphicTrue  = "TRUE"
	GraphicFalse = "FALSE"
)

// Association display modes. Legacy FILTER mode is rewritten to DEFAULT when
// collections are loaded.
const (
	ModeDefault = "DEFAULT"
	ModeCluster = "CLUSTER"
	ModeFilter  = "FILTER"
)

// HiddenPath is the sentinel stored in Source.Paths when the real URL is
// withheld. It must never be treated as a resolvable URL.
const HiddenPath = "HIDDEN"

// HiddenSourceID is the well-known placeholder source that is allowed to stay
// unreferenced without triggering an orphan warning.
const HiddenSourceID = "tr_srcHidden"

// Event is a single documented incident. Dates are MM/DD/YYYY strings,
// latitude/longitude are decimal strings or empty.
type Event struct {
	Sources          []string     `json:"sources"`
	ID               string       `json:"id"`
	Description      string       `json:"description"`
	Date             string       `json:"date"`
	Location         string       `json:"location"`
	Latitude         string       `json:"latitude"`
	Longitude        string       `json:"longitude"`
	Graphic          string       `json:"graphic"`
	Associations     []string     `json:"associations"`
	Time             string       `json:"time"`
	ResponsibleParty string       `json:"responsible_party"`
	Impact           string       `json:"impact"`
	Images           []string     `json:"images,omitempty"`
	UpdateNotes      []UpdateNote `json:"update_notes,omitempty"`
}

// UpdateNote is one entry of an event's append-only change log. Entries are
// never rewritten once added.
type UpdateNote struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Source is an external reference backing an event's claims.
type Source struct {
	ID          string   `json:"id"`
	Paths       []string `json:"paths"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// Association is a taxonomy entry events are tagged with. Associations are
// created lazily the first time a category is used.
type Association struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Mode        string `json:"mode"`
}

// Metadata summarizes an aggregate snapshot.
type Metadata struct {
	LastUpdated       string `json:"lastUpdated"`
	TotalEvents       int    `json:"totalEvents"`
	TotalSources      int    `json:"totalSources"`
	TotalAssociations int    `json:"totalAssociations"`
}

// Aggregate is the derived combined snapshot served to consumers. It is
// recomputed from the three source-of-truth collections before every persist
// and never hand-edited.
type Aggregate struct {
	Events       []Event                `json:"events"`
	Sources      map[string]Source      `json:"sources"`
	Associations map[string]Association `json:"associations"`
	Metadata     Metadata               `json:"metadata"`
}

// NewMetadata computes snapshot metadata for the given collection sizes.
func NewMetadata(events, sources, associations int, now time.Time) Metadata {
	return Metadata{
		LastUpdated:       now.UTC().Format(time.RFC3339),
		TotalEvents:       events,
		TotalSources:      sources,
		TotalAssociations: associations,
	}
}
