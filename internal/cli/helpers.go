package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// endOfColumn asks a move for the last slot; the engine clamps it
const endOfColumn = math.MaxInt32

// shortID returns the first 8 characters of an id, enough to resolve it back
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("position must be a number, got %q", s)
	}
	return n, nil
}

// confirm asks a yes/no question on the command's input. A non-interactive
// stdin cannot answer, so the caller has to pass --yes instead.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("confirmation needed but stdin is not a terminal; pass --yes")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// mustConfirm returns true when the delete may go ahead
func (a *app) mustConfirm(cmd *cobra.Command, yes bool, prompt string) (bool, error) {
	if yes || !a.cfg.ConfirmDelete {
		return true, nil
	}
	ok, err := confirm(cmd, prompt)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
	}
	return ok, nil
}
