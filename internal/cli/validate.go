package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"insurance-data-pipeline/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a single JSON record, read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	processor, err := NewProcessor(cfg)
	if err != nil {
		logger.Error("Invalid processing rules", "error", err)
		return err
	}

	data, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var rec model.RawRecord
	if err := decoder.Decode(&rec); err != nil {
		return fmt.Errorf("failed to parse record: %w", err)
	}

	outcome := processor.ProcessRecord(rec)
	out, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !outcome.Valid() {
		return fmt.Errorf("record rejected: %s", outcome.Reason)
	}
	return nil
}
