// Package keeperctl implements the jwtkeeper admin CLI: password hashing,
// RSA key generation, user provisioning and token retrieval.
package keeperctl

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the keeperctl command tree writing to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "keeperctl",
		Short: "Administration tool for the jwtkeeper server.",
		Long: `keeperctl prepares everything the jwtkeeper server needs:

	• hash      BCrypt hash a password for seed_users in the config file
	• keygen    generate the RSA key pair used to sign tokens
	• useradd   create a user in the PostgreSQL credential store
	• token     obtain a token from a running server`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		newHashCommand(),
		newKeygenCommand(),
		newUserAddCommand(),
		newTokenCommand(),
	)

	return root
}

// Execute runs the CLI against the process arguments and returns the exit
// code.
func Execute() int {
	root := NewRootCommand(os.Stdin, os.Stdout)
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
