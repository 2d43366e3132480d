package main

import (
	"context"
	"os"

	"github.com/go-logr/logr"
	"github.com/kpet-go/kpet/cmd/kpet/arch"
	"github.com/kpet-go/kpet/cmd/kpet/commons"
	"github.com/kpet-go/kpet/cmd/kpet/component"
	"github.com/kpet-go/kpet/cmd/kpet/patch"
	"github.com/kpet-go/kpet/cmd/kpet/run"
	"github.com/kpet-go/kpet/cmd/kpet/set"
	"github.com/kpet-go/kpet/cmd/kpet/tree"
	"github.com/kpet-go/kpet/cmd/kpet/variable"
	"github.com/kpet-go/kpet/pkg/config"
	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/kpet-go/kpet/pkg/metrics"
	"github.com/kpet-go/kpet/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	k8sVersion "sigs.k8s.io/release-utils/version"
)

const description = "KPET - Kernel Patch-Evaluated Testing"

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "kpet command",
		Short:         description,
		Long:          description + "\n\nSelects the tests to run for kernel patches and generates test jobs.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, v, configFile)
		},
	}
	rootCmd.Version = version.GetUserAgent("kpet")

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyDB, ".", "location of database of kernel trees and tests")
	flags.CountP(config.KeyVerbose, "v", "increase log verbosity, repeat for more")
	flags.String(config.KeyLogFormat, string(logging.Console), "log format: console or json")
	flags.String(config.KeyMetricsTextfile, "", "file to write run metrics to, in the Prometheus text format")
	flags.StringVar(&configFile, "config", "", "configuration file, default is kpet.yaml in the user's configuration directory")
	for _, key := range []string{config.KeyDB, config.KeyVerbose, config.KeyLogFormat, config.KeyMetricsTextfile} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			commons.ErrFatalf("binding flag %s: %v", key, err)
		}
	}

	rootCmd.AddCommand(
		run.NewCmd(),
		tree.NewCmd(),
		arch.NewCmd(),
		component.NewCmd(),
		set.NewCmd(),
		variable.NewCmd(),
		patch.NewCmd(),
		k8sVersion.WithFont("standard"),
	)
	return rootCmd
}

// setup resolves the settings and stores them, with the logger, in the
// context of the command being run.
func setup(cmd *cobra.Command, v *viper.Viper, configFile string) error {
	cfg, err := config.Load(v, configFile, config.SearchPaths()...)
	if err != nil {
		return err
	}
	log := logging.New(cmd.ErrOrStderr(), logging.Format(cfg.LogFormat), cfg.Verbose)
	settings := &commons.Settings{Config: cfg}

	if cfg.MetricsTextfile != "" {
		tf, err := metrics.NewTextfile()
		if err != nil {
			return err
		}
		reporter, err := metrics.NewReporter(tf.Reader())
		if err != nil {
			return err
		}
		settings.Metrics = reporter
		settings.Textfile = tf
	}

	ctx := logr.NewContext(cmd.Context(), log)
	cmd.SetContext(commons.WithSettings(ctx, settings))
	return nil
}

// runCommand executes the command line, then writes the metrics textfile of
// the command which ran, failed or not.
func runCommand(rootCmd *cobra.Command) error {
	cmd, err := rootCmd.ExecuteC()
	if cmd == nil || cmd.Context() == nil {
		return err
	}
	if werr := writeMetrics(cmd.Context()); err == nil {
		err = werr
	}
	return err
}

func writeMetrics(ctx context.Context) error {
	settings := commons.SettingsFrom(ctx)
	if settings.Textfile == nil {
		return nil
	}
	if err := settings.Textfile.Write(settings.Config.MetricsTextfile); err != nil {
		return err
	}
	return settings.Metrics.Shutdown(ctx)
}

func main() {
	if err := runCommand(newRootCmd()); err != nil {
		commons.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
