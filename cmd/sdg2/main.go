package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/sdg2-indicator-service/internal/config"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by all commands.
type rootOptions struct {
	output   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "sdg2",
		Short: "SDG Goal 2 indicator data service",
		Long: `sdg2 resolves Zero Hunger indicator data from FAO, UNICEF, WHO and the
World Bank, falling back to reference statistics when a source is unreachable.

Configuration is read from the environment (see SOURCE_TIMEOUT, CACHE_BACKEND,
REFERENCE_STATS_FILE, KAFKA_BROKERS and friends).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			switch opts.output {
			case outputTable, outputJSON:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want table or json)", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "Output format (table|json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for one-shot commands, written to stderr")
	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{outputTable, outputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(newServeCmd())
	root.AddCommand(newResolveCmd(opts))
	root.AddCommand(newProbeCmd(opts))
	root.AddCommand(newIndicatorsCmd(opts))
	root.AddCommand(newRegionsCmd(opts))
	root.AddCommand(newCountriesCmd(opts))
	root.AddCommand(newReferenceCmd())
	return root
}

// oneShotApp builds the components for a command that runs once and exits.
// Logs go to stderr and metrics to a private registry.
func oneShotApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewCLILogger(cmd.ErrOrStderr(), opts.logLevel)
	return newApp(cfg, logger, observability.NewMetricsWith(prometheus.NewRegistry()))
}
