package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/sockscope/internal/api"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

func newKillCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "kill <pid>",
		Short: "Ask a process to terminate",
		Long: "Send a graceful termination request to a process id. Success means the\n" +
			"signal was delivered; the process may take a moment to exit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("%w: %q", api.ErrInvalidPID, args[0])
			}
			b, err := ctx.getBridge()
			if err != nil {
				return err
			}
			if err := b.Kill(cmd.Context(), pid); err != nil {
				return err
			}
			ctx.getLogger().Info("signal sent", "pid", pid)
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %v to pid %d\n", process.TermSignal, pid)
			return nil
		},
	}
}
