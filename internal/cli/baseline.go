package cli

import (
	"fmt"
	"os"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/sockscope/internal/report"
)

func newBaselineCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage the listener baseline used to flag new sockets",
	}
	cmd.AddCommand(newBaselineSaveCmd(ctx))
	cmd.AddCommand(newBaselineClearCmd(ctx))
	return cmd
}

func newBaselineSaveCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Run a scan and record its listeners as the baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.getBridge()
			if err != nil {
				return err
			}
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			output, err := b.Scan(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := report.Parse([]byte(output))
			if err != nil {
				return err
			}
			if err := report.SaveBaseline(cfg.Baseline, doc.Listeners); err != nil {
				return err
			}
			size := "unknown size"
			if info, err := os.Stat(cfg.Baseline); err == nil {
				size = units.HumanSize(float64(info.Size()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline saved to %s (%d listeners, %s)\n", cfg.Baseline, len(doc.Listeners), size)
			return nil
		},
	}
}

func newBaselineClearCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the saved baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			if err := report.ClearBaseline(cfg.Baseline); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline cleared (%s)\n", cfg.Baseline)
			return nil
		},
	}
}
