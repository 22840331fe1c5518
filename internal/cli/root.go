package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/storygrid-backend/internal/app"
	"github.com/yungbote/storygrid-backend/internal/platform/logger"
)

// NewRootCmd builds the operator CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storygrid",
		Short:         "Story Grid Pro operator tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.LoadDotEnv()
		},
	}
	root.AddCommand(
		newMigrateCmd(),
		newScanCmd(),
		newNormalizeCmd(),
		newTokenCmd(),
	)
	return root
}

func newLogger() (*logger.Logger, error) {
	mode := os.Getenv("LOG_MODE")
	if mode == "" {
		mode = "development"
	}
	return logger.New(mode)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
