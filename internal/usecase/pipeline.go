package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"IncidentIngest/internal/domain"
	"IncidentIngest/internal/issue"
	"IncidentIngest/internal/ports"
	"IncidentIngest/internal/store"
	"IncidentIngest/internal/validate"
	"IncidentIngest/pkg/retry"
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
// Journal, Uploader, Enricher, and Notifier are optional.
type PipelineDeps struct {
	Dispatcher *issue.Dispatcher
	Remote     ports.SnapshotLoader
	Local      ports.ArtifactStore
	Uploader   ports.BlobUploader
	Journal    ports.Journal
	Enricher   ports.Enricher
	Notifier   ports.Notifier
	Validator  *validate.Validator
	Retry      retry.Policy
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline runs one submission start to finish: parse, load, mutate,
// validate, persist, upload, report. Callers must serialize runs; the store
// has exactly one writer and no cross-run locking.
type Pipeline struct {
	dispatcher *issue.Dispatcher
	remote     ports.SnapshotLoader
	local      ports.ArtifactStore
	uploader   ports.BlobUploader
	journal    ports.Journal
	enricher   ports.Enricher
	notifier   ports.Notifier
	validator  *validate.Validator
	retry      retry.Policy
	logger     *slog.Logger
	now        func() time.Time
}

// Outcome summarizes one pipeline run.
type Outcome struct {
	RunID   string
	Skipped bool
	Result  issue.Result
	EventID string
	Report  validate.Report

	TotalEvents       int
	TotalSources      int
	TotalAssociations int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	validator := deps.Validator
	if validator == nil {
		validator = validate.New()
	}
	return &Pipeline{
		dispatcher: deps.Dispatcher,
		remote:     deps.Remote,
		local:      deps.Local,
		uploader:   deps.Uploader,
		journal:    deps.Journal,
		enricher:   deps.Enricher,
		notifier:   deps.Notifier,
		validator:  validator,
		retry:      deps.Retry,
		logger:     deps.Logger,
		now:        now,
	}
}

// Process ingests one submission. Blocking validation errors abort before
// any write; upload failures after retries are terminal.
func (p *Pipeline) Process(ctx context.Context, sub issue.Submission) (Outcome, error) {
	outcome := Outcome{RunID: uuid.New().String()}

	if p.journal != nil && sub.Number > 0 {
		done, err := p.journal.AlreadyProcessed(ctx, sub.Number)
		if err != nil {
			return outcome, fmt.Errorf("check journal: %w", err)
		}
		if done {
			p.info("submission already processed, skipping", "run", outcome.RunID, "issue", sub.Number)
			outcome.Skipped = true
			return outcome, nil
		}
	}

	result, err := p.dispatcher.Parse(sub)
	if err != nil {
		return outcome, err
	}
	outcome.Result = result

	if !result.Valid {
		p.record(ctx, outcome, sub, domain.RunRejected, strings.Join(result.Errors, "; "))
		p.report(ctx, fmt.Sprintf("❌ Submission #%d rejected:\n%s", sub.Number, strings.Join(result.Errors, "\n")))
		return outcome, fmt.Errorf("%w: %s", domain.ErrInvalidSubmission, strings.Join(result.Errors, "; "))
	}

	records, err := p.loadRecords(ctx)
	if err != nil {
		return outcome, err
	}

	switch result.EventType {
	case "update":
		err = p.applyUpdate(records, result.Update)
		outcome.EventID = result.Update.EventID
	default:
		outcome.EventID, err = p.applyNewEvent(ctx, records, result.Event)
	}
	if err != nil {
		p.record(ctx, outcome, sub, domain.RunFailed, err.Error())
		return outcome, err
	}

	agg := records.ProjectAggregate(p.now())
	report := p.validator.Validate(records.Events(), records.Sources(), records.Associations(), &agg)
	outcome.Report = report
	outcome.TotalEvents = agg.Metadata.TotalEvents
	outcome.TotalSources = agg.Metadata.TotalSources
	outcome.TotalAssociations = agg.Metadata.TotalAssociations

	for _, warning := range report.Warnings {
		p.warn("validation warning", "run", outcome.RunID, "warning", warning)
	}
	if !report.Valid() {
		p.record(ctx, outcome, sub, domain.RunFailed, strings.Join(report.Errors, "; "))
		return outcome, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(report.Errors, "; "))
	}

	cols := ports.Collections{
		Events:       records.Events(),
		Sources:      records.Sources(),
		Associations: records.Associations(),
		Aggregate:    &agg,
	}
	if err := p.local.SaveCollections(ctx, cols); err != nil {
		p.record(ctx, outcome, sub, domain.RunFailed, err.Error())
		return outcome, fmt.Errorf("save collections: %w", err)
	}

	if p.uploader != nil {
		files, err := p.local.ReadArtifacts(ctx)
		if err != nil {
			p.record(ctx, outcome, sub, domain.RunFailed, err.Error())
			return outcome, err
		}
		err = p.retry.Do(ctx, func() error {
			return p.uploader.UploadBatch(ctx, files)
		})
		if err != nil {
			p.record(ctx, outcome, sub, domain.RunFailed, err.Error())
			return outcome, fmt.Errorf("upload artifacts: %w", err)
		}
	}

	p.record(ctx, outcome, sub, domain.RunSucceeded, "")
	p.report(ctx, p.successMessage(sub, outcome))
	p.info("submission processed",
		"run", outcome.RunID,
		"issue", sub.Number,
		"event", outcome.EventID,
		"events", outcome.TotalEvents,
		"warnings", len(report.Warnings))

	return outcome, nil
}

// loadRecords prefers the remote snapshot and degrades to local artifacts,
// logging which backend served the data.
func (p *Pipeline) loadRecords(ctx context.Context) (*store.RecordStore, error) {
	if p.remote != nil {
		agg, err := p.remote.LoadAggregate(ctx)
		if err == nil {
			p.info("collections loaded", "backend", "remote", "events", len(agg.Events))
			return store.FromAggregate(agg), nil
		}
		p.warn("remote load failed, falling back to local artifacts", "error", err)
	}

	cols, err := p.local.LoadCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local collections: %w", err)
	}
	p.info("collections loaded", "backend", "local", "events", len(cols.Events))
	return store.New(cols.Events, cols.Sources, cols.Associations), nil
}

func (p *Pipeline) applyNewEvent(ctx context.Context, records *store.RecordStore, draft *issue.EventDraft) (string, error) {
	eventID, err := records.AddEvent(store.NewEventInput{
		Title:            draft.Title,
		Description:      draft.Description,
		Date:             draft.Date,
		Time:             draft.Time,
		Location:         draft.Location,
		Latitude:         draft.Latitude,
		Longitude:        draft.Longitude,
		ResponsibleParty: draft.ResponsibleParty,
		Impact:           draft.Impact,
		Category:         draft.Category,
		AssociationKey:   draft.AssociationKey,
		SourceURLs:       draft.SourceList,
	})
	if err != nil {
		return "", err
	}

	if p.enricher != nil {
		p.enrichSources(ctx, records, eventID)
	}
	return eventID, nil
}

// enrichSources is best-effort: a failed fetch keeps the default metadata.
// The HIDDEN sentinel is never fetched.
func (p *Pipeline) enrichSources(ctx context.Context, records *store.RecordStore, eventID string) {
	for _, event := range records.Events() {
		if event.ID != eventID {
			continue
		}
		for _, sourceID := range event.Sources {
			src := records.Sources()[sourceID]
			if len(src.Paths) == 0 {
				continue
			}
			target := src.Paths[0]
			if target == domain.HiddenPath || !strings.HasPrefix(target, "http") {
				continue
			}
			title, description, err := p.enricher.Describe(ctx, target)
			if err != nil {
				p.warn("source enrichment failed", "source", sourceID, "error", err)
				continue
			}
			records.DescribeSource(sourceID, title, description)
		}
		return
	}
}

func (p *Pipeline) applyUpdate(records *store.RecordStore, draft *issue.UpdateDraft) error {
	return records.AppendUpdateNote(draft.EventID, domain.UpdateNote{
		Date:        p.now().UTC().Format(time.RFC3339),
		Type:        draft.UpdateType,
		Description: draft.UpdateDescription,
	})
}

func (p *Pipeline) successMessage(sub issue.Submission, outcome Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Submission #%d processed: %s\n", sub.Number, outcome.EventID)
	fmt.Fprintf(&sb, "Events: %d, Sources: %d, Associations: %d",
		outcome.TotalEvents, outcome.TotalSources, outcome.TotalAssociations)
	for _, warning := range outcome.Report.Warnings {
		fmt.Fprintf(&sb, "\n⚠️ %s", warning)
	}
	return sb.String()
}

// record writes the run outcome to the journal; journal failures are logged,
// never fatal.
func (p *Pipeline) record(ctx context.Context, outcome Outcome, sub issue.Submission, status domain.RunStatus, detail string) {
	if p.journal == nil || sub.Number <= 0 {
		return
	}
	err := p.journal.RecordRun(ctx, domain.RunRecord{
		RunID:       outcome.RunID,
		IssueNumber: sub.Number,
		EventID:     outcome.EventID,
		EventType:   outcome.Result.EventType,
		Status:      status,
		Detail:      detail,
		CreatedAt:   p.now(),
	})
	if err != nil {
		p.warn("journal write failed", "run", outcome.RunID, "error", err)
	}
}

// report is best-effort notification; delivery failures are logged only.
func (p *Pipeline) report(ctx context.Context, message string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.PublishReport(ctx, message); err != nil {
		p.warn("notification failed", "error", err)
	}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
