package cli

import (
	stdcontext "context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/sockscope/internal/bridge"
	sslog "github.com/Paintersrp/sockscope/internal/log"
	"github.com/Paintersrp/sockscope/internal/report"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatRaw   = "raw"
	formatJSON  = "json"
)

// minWatchInterval bounds how often --watch rescans.
const minWatchInterval = 3 * time.Second

func newScanCmd(ctx *context) *cobra.Command {
	var (
		format string
		raw    bool
		watch  time.Duration
		filter report.Filter
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the scanner and list listening sockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if raw {
				format = formatRaw
			}
			format = strings.ToLower(strings.TrimSpace(format))
			out := cmd.OutOrStdout()
			switch format {
			case formatAuto, "":
				format = formatRaw
				if isTerminal(out) {
					format = formatTable
				}
			case formatTable, formatRaw, formatJSON:
			default:
				return fmt.Errorf("unknown format %q (want table, raw or json)", format)
			}

			b, err := ctx.getBridge()
			if err != nil {
				return err
			}
			runCtx := ctx.commandContext(cmd)
			logger := sslog.FromContext(runCtx)
			view := &scanView{ctx: ctx, format: format, filter: filter}

			if watch <= 0 {
				start := time.Now()
				output, err := b.Scan(runCtx)
				if err != nil {
					return err
				}
				logger.Debug("scan complete", "resource", b.Resource(), "elapsed", units.HumanDuration(time.Since(start)))
				return view.render(out, output)
			}

			if watch < minWatchInterval {
				logger.Info("watch interval raised", "requested", watch, "interval", minWatchInterval)
				watch = minWatchInterval
			}
			ticker := time.NewTicker(watch)
			defer ticker.Stop()
			clearScreen := format == formatTable && isTerminal(out)
			return watchLoop(runCtx, b, ticker.C, func(output string) error {
				if clearScreen {
					fmt.Fprint(out, "\033[H\033[2J")
				}
				if format == formatTable {
					fmt.Fprintf(out, "Scanned at %s, every %s\n", time.Now().Format(time.TimeOnly), watch)
				}
				return view.render(out, output)
			}, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table, raw or json")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the scanner output unmodified (same as --format raw)")
	cmd.Flags().DurationVarP(&watch, "watch", "w", 0, "Rescan on this interval until interrupted (minimum 3s)")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", "", "Only show listeners whose process, exe or port contains the query")
	cmd.Flags().BoolVar(&filter.OnlyNew, "only-new", false, "Only show listeners missing from the baseline")
	cmd.Flags().BoolVar(&filter.OnlyRisky, "only-risky", false, "Only show listeners carrying a risk tag")
	return cmd
}

// watchLoop scans immediately and again on every tick until ctx ends. A tick
// that arrives while a scan is still running is dropped. Scan failures are
// written to errOut and do not stop the loop.
func watchLoop(ctx stdcontext.Context, b *bridge.Bridge, ticks <-chan time.Time, show func(output string) error, errOut io.Writer) error {
	inflight := b.ScanAsync(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-inflight:
			inflight = nil
			if res.Err != nil {
				if ctx.Err() != nil {
					return nil
				}
				fmt.Fprintln(errOut, bridge.Message(res.Err))
				continue
			}
			if err := show(res.Output); err != nil {
				return err
			}
		case <-ticks:
			if inflight != nil {
				continue
			}
			inflight = b.ScanAsync(ctx)
		}
	}
}

type scanView struct {
	ctx    *context
	format string
	filter report.Filter
}

// render writes one scan result. The baseline is reread each time so a
// baseline saved during --watch is picked up on the next pass.
func (v *scanView) render(out io.Writer, output string) error {
	if v.format == formatRaw {
		_, err := io.WriteString(out, output)
		return err
	}

	doc, err := report.Parse([]byte(output))
	if err != nil {
		return err
	}
	cfg, err := v.ctx.loadConfig()
	if err != nil {
		return err
	}
	baseline, err := report.LoadBaseline(cfg.Baseline)
	if err != nil {
		v.ctx.getLogger().Warn("ignoring unreadable baseline", "path", cfg.Baseline, "err", err)
		baseline = nil
	}
	all := report.Diff(doc.Listeners, baseline)
	rows := v.filter.Apply(all)

	if v.format == formatJSON {
		return writeRowsJSON(out, rows)
	}
	writeRowsTable(out, rows)
	writeSummary(out, all, rows)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

type rowJSON struct {
	report.Listener
	Endpoint string `json:"endpoint"`
	New      bool   `json:"new"`
}

func writeRowsJSON(w io.Writer, rows []report.Row) error {
	payload := make([]rowJSON, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, rowJSON{Listener: row.Listener, Endpoint: row.Endpoint(), New: row.New})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"listeners": payload})
}

func writeRowsTable(out io.Writer, rows []report.Row) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tPROCESS\tPID\tPORT\tEXE\tRISK")
	for _, row := range rows {
		marker := ""
		if row.New {
			marker = "NEW"
		}
		risk := "-"
		if tags := row.Risks(); len(tags) > 0 {
			risk = strings.Join(tags, ",")
		}
		exe := row.Exe
		if exe == "" {
			exe = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", marker, row.Process, row.PID, row.Endpoint(), exe, risk)
	}
	_ = w.Flush()
}

func writeSummary(out io.Writer, all, shown []report.Row) {
	fmt.Fprintf(out, "\n%d listeners • %d new", len(all), report.CountNew(all))
	if len(shown) != len(all) {
		fmt.Fprintf(out, " (%d shown)", len(shown))
	}
	fmt.Fprintln(out)

	counts := report.CountRisks(all)
	parts := make([]string, 0, len(report.KnownRisks))
	for _, tag := range report.KnownRisks {
		parts = append(parts, fmt.Sprintf("%s: %d", tag, counts[tag]))
	}
	fmt.Fprintln(out, strings.Join(parts, "  "))
}
