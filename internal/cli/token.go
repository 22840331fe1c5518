package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/storygrid-backend/internal/auth"
	"github.com/yungbote/storygrid-backend/internal/platform/envutil"
)

func newTokenCmd() *cobra.Command {
	var userArg string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with AUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := uuid.New()
			if userArg != "" {
				id, err := uuid.Parse(userArg)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				userID = id
			}
			v, err := auth.NewVerifier(envutil.String("AUTH_JWT_SECRET", ""), envutil.String("AUTH_JWT_ISSUER", ""))
			if err != nil {
				return err
			}
			token, err := v.Issue(userID, uuid.New(), ttl)
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]any{"userId": userID, "token": token})
		},
	}
	cmd.Flags().StringVar(&userArg, "user", "", "user id (random when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
