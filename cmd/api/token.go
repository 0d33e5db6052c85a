package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xavierca1/taskflow/internal/infra/http/middleware"
)

// token gera um JWT para testes manuais e para o painel admin.
func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Gera um bearer token assinado com JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			// users.id é uuid; um subject fora disso nunca acharia o usuário
			if _, err := uuid.Parse(userID); err != nil {
				return fmt.Errorf("--user must be a uuid: %w", err)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			auth, err := middleware.NewAuthenticator(cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}

			token, err := auth.GenerateToken(userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "id do usuário (claim user_id)")
	cmd.Flags().StringVar(&role, "role", "", "role do token (ex: admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "validade do token")
	cmd.MarkFlagRequired("user")
	return cmd
}
