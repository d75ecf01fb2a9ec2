package keeperctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

// readSecret returns the password for a command. With fromStdin it reads
// one line from the command input; otherwise it prompts on the terminal
// without echo, asking twice when confirm is set.
func readSecret(cmd *cobra.Command, fromStdin, confirm bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", fmt.Errorf("read password: %w", err)
		}
		pw := strings.TrimRight(line, "\r\n")
		if pw == "" {
			return "", errors.New("empty password")
		}
		return pw, nil
	}

	pw, err := prompt(cmd.OutOrStdout(), "Enter password: ")
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := prompt(cmd.OutOrStdout(), "Repeat password: ")
		if err != nil {
			return "", err
		}
		if again != pw {
			return "", errPasswordMismatch
		}
	}
	if pw == "" {
		return "", errors.New("empty password")
	}
	return pw, nil
}

func prompt(w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
