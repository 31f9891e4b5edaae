package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icancodefyi/sarthi-ai/internal/directory"
	"github.com/icancodefyi/sarthi-ai/internal/repository"
	"github.com/icancodefyi/sarthi-ai/internal/service"
)

func newTokenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "token <userId>",
		Short:   "Issue a bearer token for a configured user",
		Example: `  curl -H "Authorization: Bearer $(sarthi token mock-user-001)" localhost:8080/api/datasets`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cfg.JWT.SecretKey == "" {
				return fmt.Errorf("jwt.secret_key is not configured")
			}

			db, err := repository.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			users := directory.NewSQLUsers(repository.NewUserRepo(db))
			if err := users.Seed(cmd.Context(), cfg.App.Users); err != nil {
				return err
			}

			auth := service.NewAuthService(cfg.JWT, users, cfg.App.DefaultUserID)
			token, err := auth.IssueToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
			return nil
		},
	}
}
