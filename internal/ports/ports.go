package ports

import (
	"context"
	"time"

	"IncidentIngest/internal/domain"
)

// SnapshotLoader fetches the published aggregate snapshot from the remote
// store. Failures degrade to the local artifact store.
type SnapshotLoader interface {
	LoadAggregate(ctx context.Context) (domain.Aggregate, error)
}

// ArtifactStore reads and writes the four local JSON artifacts. Loading
// tolerates missing files; saving always writes all four together.
type ArtifactStore interface {
	LoadCollections(ctx context.Context) (Collections, error)
	SaveCollections(ctx context.Context, cols Collections) error
	// ReadArtifacts returns the persisted artifact bytes keyed by file name,
	// exactly as they will be uploaded.
	ReadArtifacts(ctx context.Context) (map[string][]byte, error)
}

// Collections groups the three source-of-truth collections and the derived
// aggregate.
type Collections struct {
	Events       []domain.Event
	Sources      map[string]domain.Source
	Associations map[string]domain.Association
	Aggregate    *domain.Aggregate
}

// BlobUploader pushes named artifacts to the blob store and verifies each
// blob's presence afterwards. An unverifiable upload counts as failed.
type BlobUploader interface {
	UploadBatch(ctx context.Context, files map[string][]byte) error
}

// Journal persists processed submissions for idempotent re-runs and audit.
type Journal interface {
	AlreadyProcessed(ctx context.Context, issueNumber int) (bool, error)
	RecordRun(ctx context.Context, record domain.RunRecord) error
}

// Enricher resolves a source URL to a human-readable title and description.
type Enricher interface {
	Describe(ctx context.Context, url string) (title, description string, err error)
}

// Notifier streams run reports to Telegram or other channels.
type Notifier interface {
	PublishReport(ctx context.Context, report string) error
}

// Scheduler controls when the revalidation job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
