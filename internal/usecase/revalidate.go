package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"IncidentIngest/internal/metrics"
	"IncidentIngest/internal/ports"
	"IncidentIngest/internal/store"
	"IncidentIngest/internal/validate"
)

// Revalidator periodically re-checks the published snapshot and exports the
// results as metrics. It is a pure read path and never writes.
type Revalidator struct {
	remote    ports.SnapshotLoader
	local     ports.ArtifactStore
	validator *validate.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewRevalidator wires the read path and metric sink.
func NewRevalidator(remote ports.SnapshotLoader, local ports.ArtifactStore, validator *validate.Validator, m *metrics.Metrics, log *slog.Logger) *Revalidator {
	if validator == nil {
		validator = validate.New()
	}
	return &Revalidator{remote: remote, local: local, validator: validator, metrics: m, logger: log}
}

// Run executes one revalidation pass.
func (r *Revalidator) Run(ctx context.Context, at time.Time) error {
	records, err := r.loadRecords(ctx)
	if err != nil {
		return fmt.Errorf("revalidate load: %w", err)
	}

	report := r.validator.Validate(records.Events(), records.Sources(), records.Associations(), nil)

	if r.metrics != nil {
		r.metrics.ObserveRun(
			len(report.Errors),
			len(report.Warnings),
			len(records.Events()),
			len(records.Sources()),
			len(records.Associations()),
			at,
		)
	}

	if r.logger != nil {
		r.logger.Info("revalidation finished",
			"errors", len(report.Errors),
			"warnings", len(report.Warnings),
			"events", len(records.Events()))
		for _, msg := range report.Errors {
			r.logger.Error("revalidation error", "error", msg)
		}
		for _, msg := range report.Warnings {
			r.logger.Warn("revalidation warning", "warning", msg)
		}
	}

	return nil
}

// Load returns the current record set, preferring the remote snapshot.
func (r *Revalidator) Load(ctx context.Context) (*store.RecordStore, error) {
	return r.loadRecords(ctx)
}

func (r *Revalidator) loadRecords(ctx context.Context) (*store.RecordStore, error) {
	if r.remote != nil {
		if agg, err := r.remote.LoadAggregate(ctx); err == nil {
			return store.FromAggregate(agg), nil
		} else if r.logger != nil {
			r.logger.Warn("remote load failed, falling back to local artifacts", "error", err)
		}
	}

	cols, err := r.local.LoadCollections(ctx)
	if err != nil {
		return nil, err
	}
	return store.New(cols.Events, cols.Sources, cols.Associations), nil
}
