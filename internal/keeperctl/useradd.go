package keeperctl

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/services"
	"github.com/spf13/cobra"
)

// newRepoManager is a seam for tests.
var newRepoManager = func(dsn string) (repomanager.RepositoryManager, error) {
	return repomanager.NewPostgresRepositoryManager(dsn)
}

func newUserAddCommand() *cobra.Command {
	var (
		dsn         string
		authorities []string
		fromStdin   bool
		migrate     bool
	)

	cmd := &cobra.Command{
		Use:   "useradd USERNAME",
		Short: "Create a user in the PostgreSQL credential store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return errors.New("--dsn is required")
			}

			pw, err := readSecret(cmd, fromStdin, true)
			if err != nil {
				return err
			}

			m, err := newRepoManager(dsn)
			if err != nil {
				return err
			}
			defer m.Close()

			ctx := cmd.Context()
			if migrate {
				if err := m.RunMigrations(ctx); err != nil {
					return err
				}
			}

			u, err := services.NewUserService(m).Register(ctx, args[0], pw, authorities)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %s)\n", u.Username, u.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL DSN")
	cmd.Flags().StringSliceVarP(&authorities, "authority", "a", []string{"user"}, "granted authorities (repeatable)")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations first")
	return cmd
}
