package cli

import (
	stdcontext "context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/sockscope/internal/bridge"
	"github.com/Paintersrp/sockscope/internal/config"
	"github.com/Paintersrp/sockscope/internal/locator"
	sslog "github.com/Paintersrp/sockscope/internal/log"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

// EnvConfig names the configuration file when --config is not passed.
const EnvConfig = "SOCKSCOPE_CONFIG"

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	ctx := &context{}

	root := &cobra.Command{
		Use:   "sockscope",
		Short: "Locate and run the listening-socket scanner",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.configExplicit = cmd.Flags().Changed("config") || os.Getenv(EnvConfig) != ""
			return nil
		},
	}

	configFile := config.DefaultFile
	if value := strings.TrimSpace(os.Getenv(EnvConfig)); value != "" {
		configFile = value
	}
	root.PersistentFlags().
		StringVarP(&ctx.configFile, "config", "c", configFile, "Path to sockscope configuration")
	root.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&ctx.interpreter, "interpreter", "", "Interpreter used to launch the scanner")
	root.PersistentFlags().StringVar(&ctx.resource, "resource", "", "Scanner resource name relative to the resource roots")

	root.AddCommand(newScanCmd(ctx))
	root.AddCommand(newKillCmd(ctx))
	root.AddCommand(newBaselineCmd(ctx))
	root.AddCommand(newServeCmd(ctx))
	root.AddCommand(newConfigCmd())

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, bridge.Message(err))
		os.Exit(1)
	}
}

type context struct {
	configFile     string
	configExplicit bool
	logLevel       string
	interpreter    string
	resource       string

	mu     sync.Mutex
	cfg    *config.Config
	logger *slog.Logger
	bridge *bridge.Bridge
}

// loadConfig reads the configuration once, layering environment variables
// and then flags over the file.
func (c *context) loadConfig() (*config.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := c.configFile
	if path == "" {
		path = config.DefaultFile
	}
	cfg, err := config.LoadOrDefault(path, c.configExplicit)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if value := strings.TrimSpace(c.interpreter); value != "" {
		cfg.Interpreter = value
	}
	if value := strings.TrimSpace(c.resource); value != "" {
		cfg.Resource = value
	}
	if value := strings.TrimSpace(c.logLevel); value != "" {
		cfg.LogLevel = strings.ToLower(value)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *context) getLogger() *slog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger == nil {
		level := config.DefaultLogLevel
		if c.cfg != nil {
			level = c.cfg.LogLevel
		}
		c.logger = sslog.New(os.Stderr, level)
	}
	return c.logger
}

// commandContext returns cmd's context carrying the host logger.
func (c *context) commandContext(cmd *cobra.Command) stdcontext.Context {
	parent := cmd.Context()
	if parent == nil {
		parent = stdcontext.Background()
	}
	return sslog.WithLogger(parent, c.getLogger())
}

func (c *context) getBridge() (*bridge.Bridge, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := c.getLogger()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bridge != nil {
		return c.bridge, nil
	}

	var bundle locator.Bundle
	if cfg.BundleDir != "" {
		dir, err := locator.NewDirBundle(cfg.BundleDir)
		if err != nil {
			return nil, err
		}
		bundle = dir
	} else if dir, err := locator.ExecutableBundle(); err == nil {
		bundle = dir
	} else {
		logger.Debug("no executable bundle", "err", err)
	}

	var opts []locator.Option
	if cfg.DevRoot != nil {
		opts = append(opts, locator.WithDevRoot(*cfg.DevRoot))
	}
	c.bridge = bridge.New(
		locator.New(bundle, opts...),
		process.NewLauncher(cfg.Interpreter),
		bridge.WithResource(cfg.Resource),
	)
	logger.Debug("bridge ready", "interpreter", cfg.Interpreter, "resource", cfg.Resource)
	return c.bridge, nil
}
