package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kbukum/fetchkit/bootstrap"
	"github.com/kbukum/fetchkit/config"
	"github.com/kbukum/fetchkit/dispatch"
	"github.com/kbukum/fetchkit/httpclient"
	"github.com/kbukum/fetchkit/security"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	verbose    bool
	noColor    bool
	timeout    time.Duration
	insecure   bool
}

// NewRootCommand builds the fetchkit command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "fetchkit",
		Short: "Fetch HTTP resources from the command line",
		Long: `fetchkit performs HTTP requests with engine-followed redirects,
content decoding and charset detection. It can tail server-sent
events, bench an endpoint and re-run a request file on every change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if g.noColor {
				color.NoColor = true
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configFile, "config", "", "Config file (default: fetchkit.yaml in ., config/ or the user config dir)")
	flags.StringVar(&g.envFile, "env-file", "", "Env file to load before reading the environment")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Debug logging and a startup summary on stderr")
	flags.BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	flags.DurationVar(&g.timeout, "timeout", 0, "Default connect and read timeout (overrides config)")
	flags.BoolVarP(&g.insecure, "insecure", "k", false, "Skip TLS certificate verification")

	root.AddCommand(
		newRequestCommand(g),
		newEventsCommand(g),
		newBenchCommand(g),
		newWatchCommand(g),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		root.PrintErrln(color.RedString("error:"), err)
	}
	return ExitCode(err)
}

// loadConfig reads the CLI configuration and applies the global flags.
func (g *globalFlags) loadConfig() (*Config, error) {
	cfg := &Config{}
	var opts []config.LoaderOption
	if g.configFile != "" {
		opts = append(opts, config.WithConfigFile(g.configFile))
	}
	if g.envFile != "" {
		opts = append(opts, config.WithEnvFile(g.envFile))
	}
	if err := config.LoadConfig("fetchkit", cfg, opts...); err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	if g.verbose {
		cfg.Logging.Level = "debug"
	}
	if g.timeout > 0 {
		cfg.HTTP.Timeout = g.timeout
	}
	if g.insecure {
		if cfg.HTTP.TLS == nil {
			cfg.HTTP.TLS = &security.TLSConfig{}
		}
		cfg.HTTP.TLS.SkipVerify = true
	}
	return cfg, nil
}

// runtime is a started application with its client and dispatcher components.
type runtime struct {
	app     *bootstrap.App[*Config]
	clients *httpclient.Component
	pool    *dispatch.Component
}

// newRuntime builds the application. Components start when the task runs.
func (g *globalFlags) newRuntime(cmd *cobra.Command, cfg *Config) (*runtime, error) {
	opts := []bootstrap.Option{bootstrap.WithSummaryOutput(nil)}
	if g.verbose {
		opts[0] = bootstrap.WithSummaryOutput(cmd.ErrOrStderr())
	}
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	clients := httpclient.NewComponent(cfg.HTTP, httpclient.WithLogger(app.Logger))
	pool := dispatch.NewComponent(cfg.Dispatch, clients, dispatch.WithLogger(app.Logger))
	if err := app.RegisterComponent(clients); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(pool); err != nil {
		return nil, err
	}
	return &runtime{app: app, clients: clients, pool: pool}, nil
}

// run loads the config, starts the runtime and runs task.
func (g *globalFlags) run(cmd *cobra.Command, prepare func(*Config), task func(ctx context.Context, rt *runtime) error) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if prepare != nil {
		prepare(cfg)
	}
	rt, err := g.newRuntime(cmd, cfg)
	if err != nil {
		return err
	}
	return rt.app.RunTask(cmd.Context(), func(ctx context.Context) error {
		return task(ctx, rt)
	})
}
