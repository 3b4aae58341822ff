package main

import (
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint signed tokens",
	}
	cmd.PersistentFlags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to the configured TTL)")

	service := func() (*auth.JWTService, error) {
		cfg, _, err := opts.load()
		if err != nil {
			return nil, err
		}
		if err := cfg.RequireJWT(); err != nil {
			return nil, err
		}
		sessionTTL, adminTTL := cfg.JWT.SessionTTL, cfg.JWT.AdminTTL
		if ttl > 0 {
			sessionTTL, adminTTL = ttl, ttl
		}
		return auth.NewJWTService(cfg.JWT.Secret, sessionTTL, adminTTL), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "admin SUBJECT",
		Short: "Mint an admin token for the /admin endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service()
			if err != nil {
				return err
			}
			token, expiresAt, err := svc.GenerateAdminToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "session SESSION_ID",
		Short: "Mint a shopper token for an existing session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service()
			if err != nil {
				return err
			}
			token, _, err := svc.GenerateSessionToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	})

	return cmd
}
