package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/valegio/MapaRelaveCL/internal/dataset"
	"github.com/valegio/MapaRelaveCL/internal/service"
	"github.com/valegio/MapaRelaveCL/internal/web"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relaves",
		Short:         "Find the mining tailings deposits closest to a Chilean address",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newLookupCmd(), newDatasetsCmd())

	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web map and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a := newApp()
			defer a.close()

			a.log.InfoContext(ctx, "Application started", "env", a.cfg.Env, "source", a.cfg.Data.Source)

			searcher, catalog, health, err := a.searcher(ctx)
			if err != nil {
				a.log.ErrorContext(ctx, "Failed to prepare search", "error", err)
				return err
			}

			handler, err := web.NewRouter(web.Options{
				Logger:   a.log,
				Searcher: searcher,
				Catalog:  catalog,
				Gatherer: a.reg,
				Health:   health,
			})
			if err != nil {
				return fmt.Errorf("failed to create router: %w", err)
			}

			return a.serve(ctx, handler)
		},
	}
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <address>",
		Short: "Search one address and print the nearest deposits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := newApp()
			defer a.close()

			searcher, _, _, err := a.searcher(ctx)
			if err != nil {
				return err
			}

			result, err := searcher.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result)
		},
	}
}

func newDatasetsCmd() *cobra.Command {
	datasets := &cobra.Command{
		Use:   "datasets",
		Short: "Manage the downloaded reference datasets",
	}

	var force bool
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Download the region boundaries and deposit registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp()
			defer a.close()

			loader := a.loader()
			if err := loader.Fetch(cmd.Context(), force); err != nil {
				return err
			}
			for _, name := range []dataset.Name{dataset.Regions, dataset.Deposits} {
				path, err := loader.Path(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, path)
			}

			return nil
		},
	}
	fetch.Flags().BoolVar(&force, "force", false, "download even when a local copy exists")
	datasets.AddCommand(fetch)

	return datasets
}

var errNoResult = errors.New("empty search result")

// printResult writes the outcome message followed by a table of the nearest deposits.
func printResult(w io.Writer, result *service.Result) error {
	if result == nil {
		return errNoResult
	}

	if result.Location != nil {
		fmt.Fprintln(w, result.LocationMessage())
	}
	fmt.Fprintln(w, result.Message())

	if len(result.Nearest) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tCOMPANY\tREGION\tDISTANCE (KM)")
	for i, d := range result.Nearest {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\n", i+1, d.Name, d.Company, d.Region, d.DistanceKm())
	}

	return tw.Flush()
}
