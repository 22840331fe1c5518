package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/storygrid-backend/internal/veracity"
)

func newScanCmd() *cobra.Command {
	var tone bool
	cmd := &cobra.Command{
		Use:   "scan <file|->",
		Short: "Run the fact-check scanner over a text file and print findings as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			scanner, err := veracity.NewDefaultScanner()
			if err != nil {
				return err
			}
			findings := scanner.Scan(text, tone)
			return writeJSON(cmd, map[string]any{
				"findings": findings,
				"summary":  veracity.Summarize(findings),
			})
		},
	}
	cmd.Flags().BoolVar(&tone, "tone", false, "include tone findings")
	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(raw), nil
}
