package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/repository"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/config"
	"github.com/noah-isme/academic-records-api/pkg/export"
	"github.com/noah-isme/academic-records-api/pkg/logger"
	"github.com/noah-isme/academic-records-api/pkg/storage"
)

type app struct {
	cfg   *config.Config
	log   *zap.Logger
	views *service.Views
	close func() error
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var storeDriver string
	var a app

	root := &cobra.Command{
		Use:          "recordsctl",
		Short:        "Inspect and export academic records",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), storeDriver, cmd.Name() == "seed")
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown()
		},
	}
	root.PersistentFlags().StringVar(&storeDriver, "store", "", "override STORE_DRIVER (memory, file, postgres, sqlite, redis)")

	root.AddCommand(
		newSeedCommand(&a),
		newShowCommand(&a),
		newExportCommand(&a),
		newCountCommand(&a),
	)
	return root
}

func (a *app) open(ctx context.Context, driver string, seed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if driver != "" {
		cfg.Store.Driver = driver
	}
	if seed {
		cfg.Records.SeedSampleData = true
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	store, closeStore, err := repository.OpenCollectionStore(ctx, cfg, nil, logr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logr
	a.close = closeStore
	a.views = service.NewViews(service.DepsFromConfig(cfg, store, nil, logr), cfg.Views.IdleTTL, nil, logr)
	return nil
}

func (a *app) shutdown() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.close != nil {
		return a.close()
	}
	return nil
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Persist sample records for collections that were never saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			results, err := a.views.Results.Build(ctx)
			if err != nil {
				return err
			}
			defer results.Close()
			sections, err := a.views.Sections.Build(ctx)
			if err != nil {
				return err
			}
			defer sections.Close()
			students, err := a.views.Students.Build(ctx)
			if err != nil {
				return err
			}
			defer students.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "results:  %d\n", len(results.Results()))
			fmt.Fprintf(out, "sections: %d\n", len(sections.Sections()))
			fmt.Fprintf(out, "students: %d\n", len(students.Students()))
			return nil
		},
	}
}

func newShowCommand(a *app) *cobra.Command {
	var filter models.ResultFilter
	cmd := &cobra.Command{
		Use:       "show <results|sections|students>",
		Short:     "Print the rendered table of a collection",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{service.ViewKindResults, service.ViewKindSections, service.ViewKindStudents},
		RunE: func(cmd *cobra.Command, args []string) error {
			src, done, err := a.table(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			defer done()
			data, err := src.Table(cmd.Context())
			if err != nil {
				return err
			}
			if results, ok := src.(*service.ResultManager); ok {
				printFilter(cmd.OutOrStdout(), results.Filter())
			}
			return printTable(cmd.OutOrStdout(), data)
		},
	}
	addFilterFlags(cmd, &filter)
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var (
		format string
		outDir string
		filter models.ResultFilter
	)
	cmd := &cobra.Command{
		Use:   "export <results|sections|students>",
		Short: "Write a collection table as CSV or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, done, err := a.table(ctx, args[0], filter)
			if err != nil {
				return err
			}
			defer done()

			if outDir == "" {
				outDir = a.cfg.Exports.Dir
			}
			files, err := storage.NewLocalStorage(outDir)
			if err != nil {
				return err
			}
			svc := service.NewExportService(a.log)
			file, err := svc.Render(ctx, src, format)
			if err != nil {
				return err
			}
			path, err := svc.Write(files, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", file.Rows, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatCSV, "export format (csv, pdf)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (defaults to EXPORTS_DIR)")
	addFilterFlags(cmd, &filter)
	return cmd
}

func newCountCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <section name>",
		Short: "Count students enrolled in a section",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sections, err := a.views.Sections.Build(ctx)
			if err != nil {
				return err
			}
			defer sections.Close()
			name := strings.Join(args, " ")
			count, err := sections.CountStudentsIn(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", name, count)
			return nil
		},
	}
}

func addFilterFlags(cmd *cobra.Command, filter *models.ResultFilter) {
	cmd.Flags().StringVar(&filter.StudentName, "student", "", "results only: exact student name")
	cmd.Flags().StringVar(&filter.Subject, "subject", "", "results only: exact subject")
}

// table builds a transient view for entity. done releases it.
func (a *app) table(ctx context.Context, entity string, filter models.ResultFilter) (service.TableSource, func(), error) {
	switch entity {
	case service.ViewKindResults:
		m, err := a.views.Results.Build(ctx)
		if err != nil {
			return nil, nil, err
		}
		m.ApplyFilters(filter)
		return m, m.Close, nil
	case service.ViewKindSections:
		m, err := a.views.Sections.Build(ctx)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	case service.ViewKindStudents:
		m, err := a.views.Students.Build(ctx)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown collection %q", entity)
	}
}

func printFilter(w io.Writer, filter models.ResultFilter) {
	if filter.StudentName == "" && filter.Subject == "" {
		return
	}
	orAll := func(v string) string {
		if v == "" {
			return "all"
		}
		return v
	}
	fmt.Fprintf(w, "student: %s, subject: %s\n", orAll(filter.StudentName), orAll(filter.Subject))
}

func printTable(w io.Writer, data export.Dataset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(data.Headers, "\t"))
	if len(data.Rows) == 0 {
		fmt.Fprintln(tw, models.EmptyPlaceholder)
	}
	for _, row := range data.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
