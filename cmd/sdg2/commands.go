package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/sdg2-indicator-service/internal/config"
	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
	"github.com/couchcryptid/sdg2-indicator-service/internal/prober"
	"github.com/couchcryptid/sdg2-indicator-service/internal/registry"
	"github.com/spf13/cobra"
)

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var (
		countries []string
		years     string
		src       string
	)
	cmd := &cobra.Command{
		Use:   "resolve INDICATOR",
		Short: "Resolve indicator data for countries and years",
		Example: `  sdg2 resolve 2.1.1
  sdg2 resolve 2.2.1 --countries AGO,KEN --years 2015-2023
  sdg2 resolve 2.2.1 --countries "Sub-Saharan Africa" --source who -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ys, err := domain.ParseYears(years)
			if err != nil {
				return err
			}
			a, err := oneShotApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			table, err := a.newResolver().Resolve(cmd.Context(), domain.Request{
				Indicator: args[0],
				Countries: countries,
				Years:     ys,
				Source:    src,
			})
			if err != nil {
				return err
			}
			return renderResolve(cmd.OutOrStdout(), opts.output, args[0], table)
		},
	}
	cmd.Flags().StringSliceVarP(&countries, "countries", "c", nil, "ISO3 codes or region names (default WORLD)")
	cmd.Flags().StringVarP(&years, "years", "y", "", "Year range (2015-2024) or list (2019,2020); default the last ten years")
	cmd.Flags().StringVarP(&src, "source", "s", "", "Source agency (fao|unicef|who|world_bank); default per indicator")
	return cmd
}

func newProbeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [SOURCE...]",
		Short: "Check connectivity to the agency APIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := oneShotApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			p := a.newProber()
			var statuses []prober.Status
			if len(args) == 0 {
				statuses = p.ProbeAll(cmd.Context())
			} else {
				for _, arg := range args {
					s, _ := domain.ParseSource(arg)
					statuses = append(statuses, p.Probe(cmd.Context(), s))
				}
			}
			return renderProbe(cmd.OutOrStdout(), opts.output, statuses)
		},
	}
}

func newIndicatorsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "indicators [CODE]",
		Short: "List indicators or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ind := registry.DefaultIndicators()
			if len(args) == 0 {
				return renderIndicators(cmd.OutOrStdout(), opts.output, ind.List())
			}
			d, err := ind.Describe(args[0])
			if err != nil {
				return err
			}
			return renderIndicators(cmd.OutOrStdout(), opts.output, []domain.IndicatorDescriptor{d})
		},
	}
}

func newCountriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List countries from the World Bank catalogue",
		Long: `Lists countries with their region and income level. When the World Bank
cannot be reached the list is rebuilt from the built-in region table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := oneShotApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			list, fromSource := a.newResolver().Countries(cmd.Context())
			return renderCountries(cmd.OutOrStdout(), opts.output, list, fromSource)
		},
	}
}

func newRegionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "regions [NAME]",
		Short: "List regions or the members of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions := registry.DefaultRegions()
			if len(args) == 0 {
				return renderRegions(cmd.OutOrStdout(), opts.output, regions.List())
			}
			return renderMembers(cmd.OutOrStdout(), opts.output, regions, args[0])
		},
	}
}

func newReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Inspect reference statistics",
	}

	var file string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the effective reference table as YAML",
		Long: `Writes the built-in reference statistics, merged with REFERENCE_STATS_FILE
when set, in the format accepted by REFERENCE_STATS_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ref, err := loadReference(cfg, registry.DefaultIndicators(), registry.DefaultRegions())
			if err != nil {
				return err
			}

			if file == "" {
				return ref.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(file)
			if err != nil {
				return err
			}
			if err := ref.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	export.Flags().StringVarP(&file, "file", "f", "", "Write to file instead of stdout")

	cmd.AddCommand(export)
	return cmd
}
