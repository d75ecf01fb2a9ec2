package keeperctl

import (
	"fmt"

	"github.com/dmitrijs2005/jwtkeeper/internal/filex"
	"github.com/dmitrijs2005/jwtkeeper/internal/server/keys"
	"github.com/spf13/cobra"
)

func newKeygenCommand() *cobra.Command {
	var (
		bits        int
		privatePath string
		publicPath  string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate the RSA key pair used to sign tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			privatePEM, publicPEM, err := keys.Generate(bits)
			if err != nil {
				return err
			}

			// parse back so a broken pair never reaches disk
			kp, err := keys.ParsePEM(privatePEM, publicPEM)
			if err != nil {
				return err
			}

			if err := filex.WriteFile(privatePath, privatePEM, 0o600, force); err != nil {
				return err
			}
			if err := filex.WriteFile(publicPath, publicPEM, 0o644, force); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s (kid %s)\n", privatePath, publicPath, kp.KeyID())
			return err
		},
	}

	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA modulus size")
	cmd.Flags().StringVar(&privatePath, "private", "app.key", "private key output path")
	cmd.Flags().StringVar(&publicPath, "public", "app.pub", "public key output path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}
