package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"IncidentIngest/internal/config"
	"IncidentIngest/internal/infrastructure/blob"
	"IncidentIngest/internal/infrastructure/enrich"
	"IncidentIngest/internal/infrastructure/journal"
	"IncidentIngest/internal/infrastructure/localstore"
	"IncidentIngest/internal/infrastructure/remote"
	"IncidentIngest/internal/infrastructure/scheduler"
	"IncidentIngest/internal/infrastructure/telegram"
	"IncidentIngest/internal/issue"
	"IncidentIngest/internal/logging"
	"IncidentIngest/internal/metrics"
	"IncidentIngest/internal/ports"
	"IncidentIngest/internal/usecase"
	"IncidentIngest/internal/validate"
	"IncidentIngest/pkg/retry"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	dispatcher *issue.Dispatcher
	local      *localstore.Store
	remote     ports.SnapshotLoader
	uploader   ports.BlobUploader
	journal    ports.Journal
	enricher   ports.Enricher
	notifier   ports.Notifier
	policy     retry.Policy

	journalDB *sql.DB
}

// New builds a runnable application instance. Optional adapters (uploader,
// journal, enricher, notifier) stay nil when unconfigured.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := issue.NewRegistry()
	registry.Register(&issue.NewEventParser{})
	registry.Register(&issue.UpdateParser{})
	dispatcher := issue.NewDispatcher(registry, baseLogger.With("component", "dispatcher"))

	a := &Application{
		cfg:        cfg,
		logger:     baseLogger,
		dispatcher: dispatcher,
		local:      localstore.New(cfg.Data.Dir, baseLogger.With("component", "localstore")),
		policy: retry.Policy{
			MaxAttempts: cfg.Upload.MaxAttempts,
			BackoffBase: cfg.Upload.BackoffBase,
			Multiplier:  2.0,
			MaxBackoff:  retry.Default().MaxBackoff,
		},
	}

	if cfg.Data.RemoteBaseURL != "" {
		a.remote = remote.New(cfg.Data.RemoteBaseURL, baseLogger.With("component", "remote"))
	}

	if cfg.Blob.Account != "" && cfg.Blob.Key != "" {
		uploader, err := blob.New(cfg.Blob.Account, cfg.Blob.Key, cfg.Blob.Container, baseLogger.With("component", "blob"))
		if err != nil {
			return nil, fmt.Errorf("configure blob uploader: %w", err)
		}
		a.uploader = uploader
	}

	if cfg.Journal.DSN != "" {
		db, err := journal.Open(cfg.Journal.DSN)
		if err != nil {
			return nil, err
		}
		a.journalDB = db
		a.journal = journal.New(db)
	}

	if cfg.Enrich.Enabled {
		a.enricher = enrich.NewTitleFetcher(nil, cfg.Enrich.Timeout)
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		a.notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	return a, nil
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.journalDB != nil {
		return a.journalDB.Close()
	}
	return nil
}

// Parse runs extraction and normalization only, without touching any store.
func (a *Application) Parse(sub issue.Submission) (issue.Result, error) {
	return a.dispatcher.Parse(sub)
}

// Process ingests one submission. withUpload controls whether artifacts are
// pushed to the blob store after persisting locally.
func (a *Application) Process(ctx context.Context, sub issue.Submission, withUpload bool) (usecase.Outcome, error) {
	deps := usecase.PipelineDeps{
		Dispatcher: a.dispatcher,
		Remote:     a.remote,
		Local:      a.local,
		Journal:    a.journal,
		Enricher:   a.enricher,
		Notifier:   a.notifier,
		Retry:      a.policy,
		Logger:     a.logger.With("component", "pipeline"),
	}
	if withUpload {
		if a.uploader == nil {
			return usecase.Outcome{}, errors.New("blob storage is not configured")
		}
		deps.Uploader = a.uploader
	}

	return usecase.NewPipeline(deps).Process(ctx, sub)
}

// Validate checks the current collections (remote-first load) and returns
// the report.
func (a *Application) Validate(ctx context.Context) (validate.Report, error) {
	revalidator := usecase.NewRevalidator(a.remote, a.local, nil, nil, nil)
	records, err := revalidator.Load(ctx)
	if err != nil {
		return validate.Report{}, err
	}
	return validate.New().Validate(records.Events(), records.Sources(), records.Associations(), nil), nil
}

// Upload pushes the persisted artifacts to the blob store under the batch
// retry policy.
func (a *Application) Upload(ctx context.Context) error {
	if a.uploader == nil {
		return errors.New("blob storage is not configured")
	}
	files, err := a.local.ReadArtifacts(ctx)
	if err != nil {
		return err
	}
	return a.policy.Do(ctx, func() error {
		return a.uploader.UploadBatch(ctx, files)
	})
}

// Watch runs periodic revalidation and serves metrics until ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	m := metrics.New()
	revalidator := usecase.NewRevalidator(a.remote, a.local, nil, m, a.logger.With("component", "revalidator"))
	driver := scheduler.NewCronScheduler(a.cfg.Watch.CronExpression, a.cfg.Watch.Location())
	sched := usecase.NewScheduler(driver, revalidator)

	server := &http.Server{Addr: a.cfg.Watch.MetricsAddr, Handler: m.Handler()}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("metrics listening", "addr", a.cfg.Watch.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if err := sched.Start(ctx); err != nil {
		_ = server.Close()
		return err
	}

	select {
	case err := <-errCh:
		_ = sched.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return sched.Stop(shutdownCtx)
}
