package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/todo-api/cmd/todoctl/ui"
	"github.com/redmonkez12/todo-api/internal/auth"
	"github.com/redmonkez12/todo-api/internal/user"
)

var errAborted = errors.New("aborted")

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	var yes bool

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user and all of their items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			userID := args[0]

			db, err := a.database()
			if err != nil {
				return err
			}
			users := user.NewRepository(db)

			target, err := users.GetByID(ctx, userID)
			if err != nil {
				return err
			}

			if !yes {
				confirmed, err := ui.Confirm(fmt.Sprintf("Delete %s (%s) and all of their items?", target.ID, target.Email))
				if err != nil {
					return err
				}
				if !confirmed {
					return errAborted
				}
			}

			client, err := a.redis(ctx)
			if err != nil {
				return fmt.Errorf("account kept, tokens cannot be revoked: %w", err)
			}
			defer client.Close()
			tokens := auth.NewRedisRepository(client)

			if err := a.revokeTokens(cmd, tokens, userID); err != nil {
				return fmt.Errorf("account kept: %w", err)
			}

			if _, err := users.Delete(ctx, userID); err != nil {
				return err
			}

			if err := a.revokeTokens(cmd, tokens, userID); err != nil {
				ui.PrintWarning("tokens issued during deletion not revoked: " + err.Error())
			}

			ui.PrintSuccess("deleted " + target.ID + " (" + target.Email + ")")
			return nil
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")

	cmd.AddCommand(del)
	return cmd
}

// revokeTokens blocks every token of userID the same way account deletion
// through the API does. The user id can be handed out again after the
// delete, so this has to succeed first.
func (a *app) revokeTokens(cmd *cobra.Command, tokens *auth.RedisRepository, userID string) error {
	ctx := cmd.Context()

	ttl := max(a.cfg.Auth.AccessTokenDuration, a.cfg.Auth.RefreshTokenDuration)
	if err := tokens.RevokeAccessTokens(ctx, userID, ttl); err != nil {
		return err
	}
	return tokens.RevokeAllUserTokens(ctx, userID)
}
