package main

import (
	"fmt"
	"time"

	"github.com/farm-ledger/internal/constants"
	"github.com/farm-ledger/internal/service"

	"github.com/spf13/cobra"
)

func newTokenCommand(state *cliState) *cobra.Command {
	var (
		actorID  uint
		username string
		role     string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin API token for an operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if actorID == 0 {
				return fmt.Errorf("--actor-id is required")
			}
			token, expiresAt, err := service.NewTokenService(state.cfg.JWT).Issue(actorID, username, role)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(out, "expires_at: %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().UintVar(&actorID, "actor-id", 0, "operator id recorded on tracking events")
	cmd.Flags().StringVar(&username, "username", "", "operator name recorded on tracking events")
	cmd.Flags().StringVar(&role, "role", constants.RoleViewer, "admin or viewer")
	return cmd
}
