package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"insurance-data-pipeline/internal/model"
	"insurance-data-pipeline/internal/store"
)

var (
	processFormat string
	processOut    string
	processRecord bool
)

var processCmd = &cobra.Command{
	Use:   "process [object...]",
	Short: "Process input files and write processed and rejected rows",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processFormat, "format", "", "output format: parquet, json or csv (overrides config)")
	processCmd.Flags().StringVar(&processOut, "out", "", "processed bucket or, for the local backend, output directory (overrides config)")
	processCmd.Flags().BoolVar(&processRecord, "record", false, "record the run in the job database")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if processFormat != "" {
		cfg.Output.Format = processFormat
	}
	if processOut != "" {
		cfg.Output.ProcessedBucket = processOut
		if cfg.Storage.Backend == "local" && cfg.Output.ErrorBucket == "" {
			cfg.Output.ErrorBucket = processOut
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return err
	}

	refs := make([]model.ObjectRef, 0, len(args))
	for _, arg := range args {
		ref, err := parseObjectRef(arg, cfg.Storage.Backend)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor, err := NewProcessor(cfg)
	if err != nil {
		return err
	}
	runner, err := NewRunner(ctx, cfg, processor, logger)
	if err != nil {
		logger.Error("Failed to initialize runner", "error", err)
		return err
	}

	summary, results := runner.ProcessObjects(ctx, refs)

	if processRecord && cfg.Database.Path != "" {
		if err := recordRun(ctx, cfg.Database.Path, args, summary, results); err != nil {
			logger.Error("Failed to record run", "error", err)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "OBJECT\tTOTAL\tVALID\tERRORS\tSTATUS")
	for _, res := range results {
		status := "ok"
		if res.Error != "" {
			status = res.Error
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			runner.Location(res.Source), res.TotalRecords, res.ValidRecords, res.ErrorRecords, status)
	}
	_ = w.Flush()

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d files failed", summary.FailedFiles, summary.InputFiles)
	}
	return nil
}

func recordRun(ctx context.Context, dbPath string, args []string, summary model.Summary, results []model.FileResult) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	jobID := uuid.New().String()
	status := model.JobCompleted
	if summary.FailedFiles > 0 && summary.FailedFiles == summary.InputFiles {
		status = model.JobFailed
	}
	if err := db.SaveJob(ctx, model.Job{ID: jobID, Kind: model.JobKindObjects, Source: strings.Join(args, ","), Status: status}); err != nil {
		return err
	}
	for _, res := range results {
		if res.Error != "" {
			if err := db.SaveJobError(ctx, jobID, fmt.Errorf("%s: %s", res.Source.Key, res.Error)); err != nil {
				return err
			}
		}
	}
	return db.SaveJobStats(ctx, jobID, summary)
}
