package store

import (
	"fmt"
	"strconv"
	"strings"

	"IncidentIngest/internal/domain"
)

// EventIDPrefix is the fixed prefix of all event identifiers.
const EventIDPrefix = "TR_"

// NextEventID returns the next identifier above the numeric high-water mark
// of the existing ids. Gaps are never reused.
func NextEventID(events []domain.Event) string {
	max := 0
	for _, event := range events {
		if !strings.HasPrefix(event.ID, EventIDPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(event.ID, EventIDPrefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", EventIDPrefix, max+1)
}

// NextSourceID returns the first free {eventID}_srcN slot, counting from 1
// past any ids already present. Events can gain sources across several
// passes, so existing slots must be skipped rather than assumed empty.
func NextSourceID(sources map[string]domain.Source, eventID string) string {
	counter := 1
	for {
		id := fmt.Sprintf("%s_src%d", eventID, counter)
		if _, taken := sources[id]; !taken {
			return id
		}
		counter++
	}
}

// AssociationID derives the deterministic association id for a category key.
// The same key always yields the same id, so repeated submissions of one
// category share a single association record.
func AssociationID(key string) string {
	return "tr_asc_" + strings.ToLower(key)
}
