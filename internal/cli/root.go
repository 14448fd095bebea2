package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkrasnovs/timetrack/internal/logging"
)

// NewRootCmd builds the command tree. Every subcommand opens its own App so
// the config and database paths resolve after flag parsing.
func NewRootCmd() *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:           "timetrack",
		Short:         "Personal time tracking with remote tracker reconciliation",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "path to the configuration file")
	root.PersistentFlags().StringVar(&opts.DatabasePath, "db", "timetrack.db", "path to the ledger database")

	newApp := func(cmd *cobra.Command) (*App, error) {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn})
		return NewApp(cmd.Context(), opts, logging.NewSlogLogger(slog.New(handler)))
	}

	root.AddCommand(&cobra.Command{
		Use:   "track",
		Short: "Interactive tracking session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.RunTrack(cmd.Context())
		},
	})

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the ledger with the tracker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			force, _ := cmd.Flags().GetBool("force-refresh")
			return app.SyncAll(cmd.Context(), force)
		},
	}
	syncCmd.Flags().Bool("force-refresh", false, "refresh the catalog even if already refreshed this epoch")
	root.AddCommand(syncCmd)

	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Show tracked hours per work package as the tracker sees them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Check(cmd.Context(), cmd.OutOrStdout())
		},
	})

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the full work log as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return app.Export(cmd.Context(), out)
		},
	}
	exportCmd.Flags().String("out", "", "write to a file instead of stdout")
	root.AddCommand(exportCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Average duration or entry count per work package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			unit, _ := cmd.Flags().GetString("unit")
			frequency, _ := cmd.Flags().GetBool("frequency")
			return app.Report(cmd.Context(), cmd.OutOrStdout(), unit, frequency)
		},
	}
	reportCmd.Flags().String("unit", "seconds", "seconds, minutes or hours")
	reportCmd.Flags().Bool("frequency", false, "report entry counts instead of averages")
	root.AddCommand(reportCmd)

	root.AddCommand(&cobra.Command{
		Use:   "today",
		Short: "Entries recorded today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Today(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard all recorded entries and cached tickets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Reset(cmd.Context())
		},
	})

	return root
}
