/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	bind      string
	duCommand string
	human     bool
	length    int
	port      int
	prefix    string
	profile   bool
	refresh   time.Duration
	serve     bool
	target    string
	timeout   time.Duration
	tlsCert   string
	tlsKey    string
	verbose   bool
	version   bool

	logger *zap.SugaredLogger
}

func (c *Config) validate() error {
	if c.length <= 0 {
		return errors.Newf("invalid graph length (must be greater than 0): %d", c.length)
	}
	if c.duCommand == "" {
		return errors.New("--du-command must not be empty")
	}
	if c.timeout < 0 {
		return errors.Newf("invalid timeout (must not be negative): %s", c.timeout)
	}
	if !c.serve {
		return nil
	}
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return errors.Newf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.refresh < 0 {
		return errors.Newf("invalid refresh interval (must not be negative): %s", c.refresh)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// scanContext bounds a single scan by --timeout, if set.
func (c *Config) scanContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func newCmd(cfg *Config, sc Scanner) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DUIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "duim [target]",
		Short:         "DU Improved -- see disk usage of a directory's children as bar charts.",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.target = "."
			if len(args) > 0 {
				cfg.target = args[0]
			}

			if err := cfg.validate(); err != nil {
				return err
			}

			cfg.logger = stderrLogger(cfg.verbose)
			defer func() { _ = cfg.logger.Sync() }()

			scanner := sc
			if scanner == nil {
				scanner = newSharedScanner(newDuScanner(cfg), cfg.timeout)
			}

			if cfg.serve {
				return ServePage(cmd.Context(), cfg, scanner)
			}
			return PrintReport(cmd.Context(), cfg, scanner, cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to in serve mode (env: DUIM_BIND)")
	fs.StringVar(&cfg.duCommand, "du-command", "du", "GNU-compatible disk usage utility to run, must accept -B1 -d 1 (env: DUIM_DU_COMMAND)")
	fs.BoolVarP(&cfg.human, "human-readable", "H", false, "print sizes in human-readable format, e.g. 1.0 K 23.4 M 2.0 G (env: DUIM_HUMAN_READABLE)")
	fs.IntVarP(&cfg.length, "length", "l", 20, "length of the graph (env: DUIM_LENGTH)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on in serve mode (env: DUIM_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: DUIM_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers in serve mode (env: DUIM_PROFILE)")
	fs.DurationVar(&cfg.refresh, "refresh", 30*time.Second, "interval between live report updates in serve mode, 0 to disable (env: DUIM_REFRESH)")
	fs.BoolVar(&cfg.serve, "serve", false, "serve the report over http instead of printing it (env: DUIM_SERVE)")
	fs.DurationVar(&cfg.timeout, "timeout", time.Minute, "maximum duration of a single scan, 0 to disable (env: DUIM_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: DUIM_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: DUIM_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output on stderr (env: DUIM_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: DUIM_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("duim v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
