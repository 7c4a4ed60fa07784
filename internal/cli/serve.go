package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	apihttp "github.com/Paintersrp/sockscope/internal/api/http"
	sslog "github.com/Paintersrp/sockscope/internal/log"
)

var newAPIServer = apihttp.NewServer

func newServeCmd(ctx *context) *cobra.Command {
	var apiAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose scan and kill over the HTTP control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			b, err := ctx.getBridge()
			if err != nil {
				return err
			}
			runCtx := ctx.commandContext(cmd)
			logger := sslog.FromContext(runCtx)

			addr := cfg.API.Addr
			if cmd.Flags().Changed("addr") {
				addr = apiAddr
			}

			control := NewControlAPI(runCtx, b)
			if control == nil {
				return errors.New("control API unavailable")
			}
			server, err := newAPIServer(apihttp.Config{
				Addr:              addr,
				Controller:        control,
				BaseContext:       runCtx,
				ReadHeaderTimeout: cfg.API.ReadHeaderTimeout.Duration,
				ShutdownTimeout:   cfg.API.ShutdownTimeout.Duration,
			})
			if err != nil {
				return err
			}

			serverCtx, cancel := stdcontext.WithCancel(runCtx)
			defer cancel()
			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Run(serverCtx)
			}()

			readyTimer := time.NewTimer(200 * time.Millisecond)
			defer readyTimer.Stop()
			select {
			case err := <-errCh:
				return serveErr(err)
			case <-readyTimer.C:
			case <-runCtx.Done():
				cancel()
				return serveErr(<-errCh)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Control API listening on %s\n", server.Addr())
			logger.Info("control API started", "addr", server.Addr(), "resource", b.Resource())
			err = serveErr(<-errCh)
			logger.Info("control API stopped")
			return err
		},
	}
	cmd.Flags().StringVar(&apiAddr, "addr", "", "address for the HTTP control API (defaults to api.addr from the config)")
	return cmd
}

func serveErr(err error) error {
	if err != nil && !errors.Is(err, stdcontext.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
