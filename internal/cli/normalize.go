package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/storygrid-backend/internal/app"
	"github.com/yungbote/storygrid-backend/internal/platform/ctxutil"
)

func newNormalizeCmd() *cobra.Command {
	var projectArg, userArg string
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Renumber a project's sequences contiguously and apply the writes",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := uuid.Parse(projectArg)
			if err != nil {
				return fmt.Errorf("invalid --project: %w", err)
			}
			userID, err := uuid.Parse(userArg)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := ctxutil.WithRequestData(cmd.Context(), &ctxutil.RequestData{UserID: userID})
			res, err := a.Services.Reorder.Normalize(ctx, projectID)
			if err != nil {
				return err
			}
			applied, err := a.Services.Worker.Drain(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{
				"plan":    res.Plan,
				"batchId": res.BatchID,
				"applied": applied,
			})
		},
	}
	cmd.Flags().StringVar(&projectArg, "project", "", "project id")
	cmd.Flags().StringVar(&userArg, "user", "", "owning user id")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
