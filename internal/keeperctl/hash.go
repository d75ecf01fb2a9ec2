package keeperctl

import (
	"fmt"

	"github.com/dmitrijs2005/jwtkeeper/internal/cryptox"
	"github.com/spf13/cobra"
)

func newHashCommand() *cobra.Command {
	var (
		cost      int
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the BCrypt hash of a password",
		Long: `Print the BCrypt hash of a password, for use as password_hash in the
seed_users section of the server config file. Plaintext passwords are
never accepted by the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, fromStdin, true)
			if err != nil {
				return err
			}
			hash, err := cryptox.HashPassword(pw, cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().IntVar(&cost, "cost", cryptox.MinCost, "BCrypt cost (minimum 10)")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}
