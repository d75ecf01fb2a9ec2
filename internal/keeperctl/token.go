package keeperctl

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/jwtkeeper/internal/netx"
	"github.com/spf13/cobra"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func newTokenCommand() *cobra.Command {
	var (
		url       string
		username  string
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain a token from a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, fromStdin, false)
			if err != nil {
				return err
			}
			tok, err := netx.RequestToken(cmd.Context(), httpClient, url, username, pw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://127.0.0.1:8080", "server base URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
