package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event [file]",
	Short: "Replay an S3 notification event, read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEvent,
}

func init() {
	rootCmd.AddCommand(eventCmd)
}

func runEvent(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		return err
	}

	data, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	var evt events.S3Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("failed to parse S3 event: %w", err)
	}

	processor, err := NewProcessor(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	runner, err := NewRunner(ctx, cfg, processor, logger)
	if err != nil {
		logger.Error("Failed to initialize runner", "error", err)
		return err
	}

	resp := runner.HandleS3Event(ctx, evt)
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event handling failed with status %d", resp.StatusCode)
	}
	return nil
}

// readInput returns the named file, or stdin when no file or "-" is given.
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}
