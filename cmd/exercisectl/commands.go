package main

import (
	"alcyxob/fitness-catalog/internal/config"
	"alcyxob/fitness-catalog/internal/gifurl"
	"alcyxob/fitness-catalog/internal/service"
	"errors"

	"github.com/spf13/cobra"
)

// runPass loads config, wires a runtime and prints the summary of pass.
func runPass(cmd *cobra.Command, flags *globalFlags, cfg config.Config, reqs []config.Requirement,
	pass func(rt *runtime) (service.Summary, error)) error {
	format, err := parseOutputFormat(flags.output)
	if err != nil {
		return err
	}
	rt, err := setup(cmd.Context(), cfg, reqs...)
	if err != nil {
		return err
	}
	defer rt.close()

	summary, err := pass(rt)
	if summary.RunID != "" {
		if perr := printSummary(cmd.OutOrStdout(), format, summary); perr != nil {
			return perr
		}
	}
	return err
}

func reconcileCmd(flags *globalFlags, opts service.Options, reqs ...config.Requirement) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.loadConfig()
		if err != nil {
			return err
		}
		return runPass(cmd, flags, cfg, reqs, func(rt *runtime) (service.Summary, error) {
			return rt.reconciler.Reconcile(cmd.Context(), opts)
		})
	}
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create store records for catalog exercises not imported yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Catalog.ImportLimit
			}
			reqs := []config.Requirement{config.RequireStore, config.RequireCatalog, config.RequireGif}
			return runPass(cmd, flags, cfg, reqs, func(rt *runtime) (service.Summary, error) {
				return rt.reconciler.Import(cmd.Context(), limit)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum catalog records to fetch (default catalog.import_limit, 0 = no limit)")
	return cmd
}

func newBackfillCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fill missing fields and repair gif URLs of linked records",
		Long: `backfill fetches the catalog record of every linked exercise that has
missing fields or a non-canonical difficulty, fills only what is missing, and
rewrites gifUrl wherever it drifted from the configured mode.`,
		RunE: reconcileCmd(flags, service.Options{RepairGif: true, RepairFields: true},
			config.RequireStore, config.RequireCatalog, config.RequireGif),
	}
}

func newRepairGifsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repair-gifs",
		Short: "Rewrite gif URLs that are missing, unresolved or in the wrong mode",
		RunE: reconcileCmd(flags, service.Options{RepairGif: true},
			config.RequireStore, config.RequireGif),
	}
}

func newForceProxyCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "force-proxy",
		Short: "Point every linked record's gif URL at the image proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.gifMode != "" && flags.gifMode != string(gifurl.ModeProxy) {
				return errors.New("force-proxy cannot be combined with --gif-mode=" + flags.gifMode)
			}
			flags.gifMode = string(gifurl.ModeProxy)
			return reconcileCmd(flags, service.Options{RepairGif: true},
				config.RequireStore, config.RequireGif)(cmd, args)
		},
	}
}

func newLinkIDsCmd(flags *globalFlags) *cobra.Command {
	var exact bool

	cmd := &cobra.Command{
		Use:   "link-ids",
		Short: "Resolve missing catalog ids by exercise name",
		Long: `link-ids matches every record without a catalogId against the catalog by
normalized name and stores the id together with a fresh gifUrl.

Without --exact, a record whose full name has no match is linked to the first
catalog entry starting with the record's first word. This fallback is
aggressive: "Barbell Squat" can be linked to "barbell bench press". Run
list-missing first, prefer --exact, and review the "linked exercise" log lines
of a fuzzy run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reconcileCmd(flags, service.Options{ResolveMissingIDs: true, ExactMatchOnly: exact},
				config.RequireStore, config.RequireCatalog, config.RequireGif)(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "Only link on an exact normalized name match")
	return cmd
}

func newReconcileCmd(flags *globalFlags) *cobra.Command {
	var opts service.Options

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Run a repair pass with an explicit selection of repairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.RepairGif && !opts.RepairFields && !opts.ResolveMissingIDs {
				return errors.New("select at least one of --gifs, --fields, --ids")
			}
			reqs := []config.Requirement{config.RequireStore, config.RequireGif}
			if opts.RepairFields || opts.ResolveMissingIDs {
				reqs = append(reqs, config.RequireCatalog)
			}
			return reconcileCmd(flags, opts, reqs...)(cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.RepairGif, "gifs", false, "Repair gif URLs")
	cmd.Flags().BoolVar(&opts.RepairFields, "fields", false, "Fill missing fields from the catalog")
	cmd.Flags().BoolVar(&opts.ResolveMissingIDs, "ids", false, "Resolve missing catalog ids by name")
	cmd.Flags().BoolVar(&opts.ExactMatchOnly, "exact", false, "With --ids, only link on exact name matches")
	return cmd
}

func newListMissingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list-missing",
		Short: "List exercises that are not linked to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(flags.output)
			if err != nil {
				return err
			}
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			rt, err := setup(cmd.Context(), cfg, config.RequireStore)
			if err != nil {
				return err
			}
			defer rt.close()

			missing, err := rt.reconciler.ListMissing(cmd.Context())
			if err != nil {
				return err
			}
			return printMissing(cmd.OutOrStdout(), format, missing)
		},
	}
}
