package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phrazzld/vocab-drill/internal/domain"
	"github.com/phrazzld/vocab-drill/internal/platform/sqlstore"
	"github.com/phrazzld/vocab-drill/internal/service/drill"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vocab-drill",
		Short:         "Vocabulary drill engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newProgressCmd(),
	)
	return root
}

// withApp bootstraps the application for a command and cleans it up afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *application) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return fn(ctx, app)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed on first launch and serve the drill API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *application) error {
				return app.serve(ctx)
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *application) error {
				if !status {
					if err := app.migrate(ctx); err != nil {
						return err
					}
				}

				version, err := sqlstore.MigrationVersion(ctx, app.db, app.dialect)
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "only print the current schema version")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert words from a seed file that are not stored yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *application) error {
				if err := app.migrate(ctx); err != nil {
					return err
				}

				path := file
				if path == "" {
					path = app.config.Engine.SeedPath
				}

				result, err := app.seeder().Apply(ctx, path)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "inserted %d of %d words (%d invalid records skipped)\n",
					result.Inserted, result.Offered, result.Skipped)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to engine.seed_path)")
	return cmd
}

func newProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress [tier...]",
		Short: "Print progress per tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *application) error {
				tiers := args
				if len(tiers) == 0 {
					tiers = app.config.Engine.Tiers
				}

				engine := drill.NewEngine(app.db, app.words, app.fields, app.logger)
				progress, err := engine.ProgressAll(ctx, tiers)
				if err != nil {
					return err
				}

				errorCount, err := engine.ErrorTracker().Count(ctx)
				if err != nil {
					return err
				}

				return printProgress(cmd.OutOrStdout(), progress, errorCount)
			})
		},
	}
}

func printProgress(out io.Writer, progress []domain.Progress, errorCount int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIER\tCOMPLETED\tTOTAL\tPERCENT")
	for _, p := range progress {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%.0f%%\n", p.Tier, p.Completed, p.Total, p.Ratio()*100)
	}
	_, _ = fmt.Fprintf(w, "\nwords to correct: %d\n", errorCount)
	return w.Flush()
}
