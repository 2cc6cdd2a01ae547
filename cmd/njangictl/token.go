package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/Marceldinga/TheYoungShallGrow/internal/security"
	"github.com/spf13/cobra"
)

func tokenCommand() *cobra.Command {
	var (
		memberID int32
		email    string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a member or an admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if memberID <= 0 && !admin {
				return errors.New("--member-id is required for member tokens")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			roles := []string{security.RoleMember}
			if admin {
				roles = append(roles, security.RoleAdmin)
			}
			tm := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
			token, err := tm.GenerateAccessToken(memberID, email, roles)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int32Var(&memberID, "member-id", 0, "member the token is bound to")
	cmd.Flags().StringVar(&email, "email", "", "email carried in the token")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	return cmd
}
