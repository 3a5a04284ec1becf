package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/storage"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/rules"
	"github.com/fastygo/taskboard/repository/slotstore"
)

// app carries what the commands share. open is swapped out in tests.
type app struct {
	open   func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Backend, error)
	out    io.Writer
	logger *zap.Logger
	now    func() time.Time

	driver   string
	boltPath string
	prefix   string
	verbose  bool
}

func defaultApp() *app {
	return &app{
		open:   storage.Open,
		out:    os.Stdout,
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Administer the taskboard store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.verbose {
				return nil
			}
			l, err := logger.New(logger.Config{Level: "debug", Encoding: "console"})
			if err != nil {
				return err
			}
			a.logger = l
			return nil
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.driver, "driver", "", "storage driver (memory, bolt, redis, postgres); defaults to STORAGE_DRIVER")
	flags.StringVar(&a.boltPath, "bolt-path", "", "bolt database file; defaults to BOLTDB_PATH")
	flags.StringVar(&a.prefix, "prefix", "", "slot key prefix; defaults to STORAGE_PREFIX")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "seed",
			Short: "Load the fixture users and tasks into an empty store",
			Args:  cobra.NoArgs,
			RunE:  a.runSeed,
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Erase every slot, the session included, and seed again",
			Args:  cobra.NoArgs,
			RunE:  a.runReset,
		},
		newExportCmd(a),
		newOverdueCmd(a),
	)
	return root
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print users, tasks and session as JSON (passwords removed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newOverdueCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List pending tasks past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOverdue(cmd, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference day as YYYY-MM-DD; defaults to today")
	return cmd
}

func (a *app) withStore(ctx context.Context, fn func(*slotstore.Store) error) error {
	cfg, err := config.Load(config.WithStorage(a.driver, a.boltPath, a.prefix))
	if err != nil {
		return err
	}

	backend, err := a.open(ctx, cfg, a.logger)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			a.logger.Warn("failed to close storage", zap.Error(cerr))
		}
	}()

	return fn(slotstore.New(backend, cfg.Storage.Prefix, a.logger))
}

func (a *app) runSeed(cmd *cobra.Command, _ []string) error {
	return a.withStore(cmd.Context(), func(store *slotstore.Store) error {
		if err := store.Initialize(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "store ready")
		return nil
	})
}

func (a *app) runReset(cmd *cobra.Command, _ []string) error {
	return a.withStore(cmd.Context(), func(store *slotstore.Store) error {
		if err := store.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "store reset to fixture data")
		return nil
	})
}

func (a *app) runExport(cmd *cobra.Command, output string) error {
	return a.withStore(cmd.Context(), func(store *slotstore.Store) error {
		snapshot, err := store.Export(cmd.Context())
		if err != nil {
			return err
		}
		for i := range snapshot.Users {
			snapshot.Users[i] = *snapshot.Users[i].Public()
		}

		payload, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		payload = append(payload, '\n')

		if output == "" {
			_, err = cmd.OutOrStdout().Write(payload)
			return err
		}
		return os.WriteFile(output, payload, 0o600)
	})
}

func (a *app) runOverdue(cmd *cobra.Command, date string) error {
	now := a.now
	if date != "" {
		day, err := domain.ParseDate(date)
		if err != nil {
			return err
		}
		now = day.Time
	}

	return a.withStore(cmd.Context(), func(store *slotstore.Store) error {
		reporter, err := services.NewOverdueReporter(store.Reports(), a.logger, services.ReporterConfig{})
		if err != nil {
			return err
		}
		summary, err := reporter.WithClock(now).Run(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tASSIGNEE\tDUE\tLATE")
		for _, t := range summary.Tasks {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
				t.ID, rules.Truncate(t.Title, 40), t.AssigneeID, t.DueAt,
				rules.FormatDate(t.DueAt, rules.DateRelative, summary.Date))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d overdue as of %s\n", summary.Count, summary.Date)
		return nil
	})
}
