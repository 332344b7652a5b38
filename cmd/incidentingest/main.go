package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"IncidentIngest/internal/app"
	"IncidentIngest/internal/config"
	"IncidentIngest/internal/domain"
	"IncidentIngest/internal/infrastructure/actions"
	"IncidentIngest/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	root := newRootCommand(application)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, domain.ErrInvalidSubmission) && !errors.Is(err, domain.ErrValidation) {
			logger.Error("command failed", "error", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(application *app.Application) *cobra.Command {
	root := &cobra.Command{
		Use:           "incidentingest",
		Short:         "Turns GitHub issue submissions into validated incident records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newParseCommand(application),
		newProcessCommand(application, false),
		newProcessCommand(application, true),
		newValidateCommand(application),
		newUploadCommand(application),
		newWatchCommand(application),
	)
	return root
}

// parse extracts and normalizes the submission without touching any store.
func newParseCommand(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Parse the submission from the environment and emit workflow outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := actions.SubmissionFromEnv()
			if err != nil {
				return err
			}

			result, err := application.Parse(sub)
			if err != nil {
				return err
			}
			if err := actions.WriteOutputs(actions.BuildOutputs(result)); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("%w: %d error(s)", domain.ErrInvalidSubmission, len(result.Errors))
			}
			return nil
		},
	}
}

// process ingests and persists locally; run additionally uploads.
func newProcessCommand(application *app.Application, withUpload bool) *cobra.Command {
	use, short := "process", "Ingest the submission and persist the collections locally"
	if withUpload {
		use, short = "run", "Ingest the submission, persist, and upload to the blob store"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := actions.SubmissionFromEnv()
			if err != nil {
				return err
			}

			outcome, err := application.Process(signalContext(), sub, withUpload)
			if outcome.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Submission #%d already processed\n", sub.Number)
				return err
			}

			writeErr := actions.WriteOutputs(actions.BuildOutputs(outcome.Result))
			if err != nil {
				return err
			}
			if writeErr != nil {
				return writeErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Event processing completed: %s\n", outcome.EventID)
			return nil
		},
	}
}

func newValidateCommand(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the current collections and report errors and warnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := application.Validate(signalContext())
			if err != nil {
				return err
			}

			for _, msg := range report.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", msg)
			}
			for _, msg := range report.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", msg)
			}
			if !report.Valid() {
				return fmt.Errorf("%w: %d error(s)", domain.ErrValidation, len(report.Errors))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All validations passed")
			return nil
		},
	}
}

func newUploadCommand(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload the persisted artifacts to the blob store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return application.Upload(signalContext())
		},
	}
}

func newWatchCommand(application *app.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Periodically revalidate the published snapshot and serve metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return application.Watch(signalContext())
		},
	}
}

func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
