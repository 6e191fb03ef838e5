package main

import (
	jwtPkg "CoachingAPI/pkg/jwt"
	"fmt"
	"github.com/spf13/cobra"
	"time"
)

func tokenCommand(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, expiresAt, err := jwtPkg.Sign(a.cfg.Auth.SecretKey, subject, nil, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			a.logger.Infof("Token for %s expires at %s", subject, time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually the coach id")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
