package commands

import (
	"context"
	"fmt"
	"io"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaknet/monkeysync/internal/batch"
	"github.com/yaknet/monkeysync/internal/directory"
	"github.com/yaknet/monkeysync/internal/export"
	"github.com/yaknet/monkeysync/internal/gitops"
	"github.com/yaknet/monkeysync/internal/id"
	"github.com/yaknet/monkeysync/internal/importer"
	"github.com/yaknet/monkeysync/internal/model"
	"github.com/yaknet/monkeysync/internal/rows"
	"github.com/yaknet/monkeysync/internal/runlog"
	"github.com/yaknet/monkeysync/internal/stripe"
)

type reconcileOptions struct {
	window          string
	tag             string
	input           string
	imports         bool
	outputDir       string
	createEntities  bool
	continueOnError bool
	offline         bool
	sheets          bool
	commit          bool
}

func newReconcileCommand(a *app) *cobra.Command {
	var opts reconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Build a MonkeyPod import batch from Stripe transactions",
		Long: `Reads balance transactions from the Stripe API (or from exported files),
classifies each one, checks counterparties against the MonkeyPod directory and
writes one import CSV per category.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), cmd.OutOrStdout(), a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.window, "window", "w", "", `creation window "start:end" (default from config)`)
	cmd.Flags().StringVar(&opts.tag, "tag", "", "batch tag (default: current UTC time)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read a Stripe CSV or JSON export instead of the API")
	cmd.Flags().BoolVar(&opts.imports, "imports", false, "read every export in imports/ and move them to imports/processed/")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for the batch CSVs (default from config)")
	cmd.Flags().BoolVar(&opts.createEntities, "create-entities", false, "create new counterparties in the directory")
	cmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "skip transactions with bad data instead of failing")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "use an empty in-memory directory instead of MonkeyPod")
	cmd.Flags().BoolVar(&opts.sheets, "sheets", false, "also publish the batch to the configured spreadsheet")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "commit the batch and run log to git")
	cmd.MarkFlagsMutuallyExclusive("window", "input")
	cmd.MarkFlagsMutuallyExclusive("window", "imports")

	return cmd
}

func runReconcile(ctx context.Context, out io.Writer, a *app, opts reconcileOptions) error {
	cfg := a.cfg
	now := time.Now()

	tag := opts.tag
	if tag == "" {
		tag = id.FormatBatchTag(now)
	}
	log := a.log.With().Str("tag", tag).Logger()

	specs, err := a.fieldSpecs()
	if err != nil {
		return err
	}
	secrets, err := a.secrets()
	if err != nil {
		return err
	}

	var dir batch.Directory
	if opts.offline {
		dir = directory.NewMemory()
	} else {
		client, err := a.directoryClient(secrets)
		if err != nil {
			return err
		}
		dir = client
	}

	var source iter.Seq2[model.RawTransaction, error]
	var charges batch.ChargeFetcher
	var processed []importer.FileInfo
	var details string

	if opts.input != "" || opts.imports {
		reg := importer.DefaultRegistry()
		var txns []model.RawTransaction
		if opts.input != "" {
			parsed, err := reg.ParseFile(opts.input)
			if err != nil {
				return err
			}
			txns = append(txns, parsed...)
			details = "input " + filepath.Base(opts.input)
		}
		if opts.imports {
			files, err := importer.Scan(a.root())
			if err != nil {
				return err
			}
			for _, f := range files {
				parsed, err := reg.ParseFile(f.Path)
				if err != nil {
					return err
				}
				txns = append(txns, parsed...)
			}
			processed = files
			if details == "" {
				details = fmt.Sprintf("imports %d files", len(files))
			}
		}
		source = importer.Seq(txns)
		if !opts.offline && secrets.StripeAPIKey != "" {
			client, err := a.stripeClient(secrets)
			if err != nil {
				return err
			}
			charges = client
		}
	} else {
		expr := opts.window
		if expr == "" {
			expr = cfg.Stripe.Window
		}
		w, err := stripe.ParseWindow(expr, now)
		if err != nil {
			return err
		}
		client, err := a.stripeClient(secrets)
		if err != nil {
			return err
		}
		log.Info().Str("window", w.String()).Msg("reading balance transactions")
		source = client.Transactions(ctx, w)
		charges = client
		details = "window " + expr
	}

	builder := batch.New(batch.Config{
		Specs:     specs,
		Directory: dir,
		Charges:   charges,
		Options: batch.Options{
			Tag:             tag,
			Source:          cfg.Directory.Source,
			CreateEntities:  opts.createEntities || cfg.Import.CreateEntities,
			ContinueOnError: opts.continueOnError || cfg.Import.ContinueOnError,
			Sale:            rows.SaleLabels{Item: cfg.Sale.Item, Class: cfg.Sale.Class},
		},
		Log: log,
	})

	b, summary, err := builder.Build(ctx, source)
	if err != nil {
		return err
	}

	outDir := opts.outputDir
	if outDir == "" {
		outDir = a.path(cfg.Import.OutputDir)
	}
	files, err := export.WriteBatch(outDir, cfg.Import.FilePrefix, b)
	if err != nil {
		return err
	}

	if opts.sheets {
		sink, err := export.NewSheets(ctx, export.SheetsConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsFile: a.path(cfg.Sheets.CredentialsFile),
		})
		if err != nil {
			return err
		}
		titles, err := sink.Publish(ctx, b)
		if err != nil {
			return err
		}
		log.Info().Strs("sheets", titles).Msg("published batch")
	}

	entries := make([]runlog.Entry, 0, len(files))
	for _, f := range files {
		e := runlog.Entry{Timestamp: now, Tag: tag, Category: string(f.Category), Rows: f.Rows, Details: details}
		if f.Category == model.CategoryRelationship {
			e.Created = summary.Created
		}
		entries = append(entries, e)
	}
	if err := runlog.Append(a.root(), entries); err != nil {
		return err
	}

	for _, f := range processed {
		if err := importer.MarkProcessed(a.root(), f.Name); err != nil {
			return err
		}
	}

	if (opts.commit || cfg.Git.AutoCommit) && gitops.IsRepo(a.root()) {
		paths := []string{"logs", importer.ImportDir}
		if rel, err := filepath.Rel(a.root(), outDir); err == nil && !strings.HasPrefix(rel, "..") {
			paths = append(paths, rel)
		}
		author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		hash, err := gitops.Commit(a.root(), "reconcile: "+tag, author, paths...)
		if err != nil {
			return err
		}
		log.Info().Str("commit", hash).Msg("committed batch")
	}

	fmt.Fprintf(out, "Batch %s\n", tag)
	fmt.Fprintf(out, "  %s\n", summary)
	for _, f := range files {
		fmt.Fprintf(out, "  %-12s %4d rows  %s\n", f.Category, f.Rows, f.Path)
	}
	return nil
}
