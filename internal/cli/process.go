package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"braindump-service/internal/handler"
	"braindump-service/internal/service"

	"github.com/spf13/cobra"
)

func newProcessCmd(e *env) *cobra.Command {
	var (
		userID       string
		file         string
		showProgress bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one brain dump through the pipeline and print the result as JSON",
		Long: "Reads the brain dump from --file, or from stdin when no file is given,\n" +
			"stores it like the HTTP service does and prints the response body.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			pipeline, cleanup, err := e.newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var report service.ProgressReporter
			if showProgress {
				report = func(p service.Progress) {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%3d%%] %s\n", p.Percent, p.Message)
				}
			}

			result, err := pipeline.Process(cmd.Context(), text, userID, report)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(handler.SuccessBody(result, true))
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id the records are stored under")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the brain dump from this file instead of stdin")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "print progress milestones to stderr")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func readInput(stdin io.Reader, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
