// Package batch turns a stream of raw transactions into an import batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yaknet/monkeysync/internal/classify"
	"github.com/yaknet/monkeysync/internal/counterparty"
	"github.com/yaknet/monkeysync/internal/directory"
	"github.com/yaknet/monkeysync/internal/fees"
	"github.com/yaknet/monkeysync/internal/fieldspec"
	"github.com/yaknet/monkeysync/internal/model"
	"github.com/yaknet/monkeysync/internal/normalize"
	"github.com/yaknet/monkeysync/internal/rows"
	"github.com/yaknet/monkeysync/internal/tree"
)

// ChargePrefix marks balance transactions whose source is a charge.
const ChargePrefix = "ch_"

// Directory is what the builder needs from the entity directory.
type Directory interface {
	directory.Matcher
	counterparty.Creator
}

// ChargeFetcher loads a single charge by id.
type ChargeFetcher interface {
	Charge(ctx context.Context, id string) (model.RawTransaction, error)
}

// Options controls a build.
type Options struct {
	Tag             string // batch tag stamped into rows and created entities
	Source          string // recorded on created entities
	CreateEntities  bool   // create new counterparties in the directory
	ContinueOnError bool   // skip records with data-integrity errors
	Sale            rows.SaleLabels
}

// Config wires a Builder.
type Config struct {
	Specs     fieldspec.Set
	Directory Directory
	Charges   ChargeFetcher // optional
	Options   Options
	Log       zerolog.Logger
}

// RecordError is a data-integrity failure tied to one transaction.
type RecordError struct {
	ID  string
	Err error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s: %v", e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Summary counts what a build did.
type Summary struct {
	Processed int
	Skipped   int
	Unknown   int
	Existing  int
	New       int
	Created   int
	Rows      map[model.Category]int
}

// String renders the summary on one line.
func (s Summary) String() string {
	var parts []string
	for _, c := range model.Categories {
		parts = append(parts, fmt.Sprintf("%s=%d", c, s.Rows[c]))
	}
	return fmt.Sprintf("processed=%d skipped=%d unknown=%d existing=%d new=%d created=%d rows[%s]",
		s.Processed, s.Skipped, s.Unknown, s.Existing, s.New, s.Created, strings.Join(parts, " "))
}

// Builder classifies and maps transactions one at a time.
type Builder struct {
	specs   fieldspec.Set
	dir     Directory
	charges ChargeFetcher
	opts    Options
	log     zerolog.Logger
	gen     *rows.Generator
	dedup   *counterparty.Deduplicator
}

// New returns a Builder.
func New(cfg Config) *Builder {
	return &Builder{
		specs:   cfg.Specs,
		dir:     cfg.Directory,
		charges: cfg.Charges,
		opts:    cfg.Options,
		log:     cfg.Log,
		gen:     rows.New(cfg.Specs, cfg.Options.Sale, cfg.Options.Tag),
		dedup:   counterparty.NewDeduplicator(cfg.Directory),
	}
}

// run holds per-build state.
type run struct {
	batch   *model.ImportBatch
	fees    *fees.Aggregator
	seen    map[string]bool
	summary Summary
}

// Build consumes txns in order and returns the batch. Source and
// directory failures stop the build; record-level data errors stop it
// unless ContinueOnError is set.
func (b *Builder) Build(ctx context.Context, txns iter.Seq2[model.RawTransaction, error]) (*model.ImportBatch, Summary, error) {
	r := &run{
		batch:   model.NewImportBatch(b.opts.Tag, b.specs.Fields()),
		fees:    fees.NewAggregator(),
		seen:    map[string]bool{},
		summary: Summary{Rows: map[model.Category]int{}},
	}

	for raw, err := range txns {
		if err != nil {
			return nil, r.summary, fmt.Errorf("reading transactions: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, r.summary, err
		}

		r.summary.Processed++
		err := b.process(ctx, r, raw)
		if err == nil {
			continue
		}
		var recErr *RecordError
		if errors.As(err, &recErr) && b.opts.ContinueOnError {
			b.log.Error().Err(recErr.Err).Str("id", recErr.ID).Msg("skipping record")
			r.summary.Skipped++
			continue
		}
		return nil, r.summary, err
	}

	for _, bucket := range r.fees.Buckets() {
		r.append(model.CategoryFee, b.gen.Fee(bucket.Date, bucket.Amount))
	}

	b.log.Info().Str("tag", b.opts.Tag).Str("summary", r.summary.String()).Msg("batch built")
	return r.batch, r.summary, nil
}

func (b *Builder) process(ctx context.Context, r *run, raw model.RawTransaction) error {
	raw, err := b.enrich(ctx, raw)
	if err != nil {
		return err
	}
	id := raw.String(model.FieldID)

	rec, err := normalize.Normalize(raw)
	if err != nil {
		return &RecordError{ID: id, Err: err}
	}

	r.fees.Add(rec)

	if err := b.counterparty(ctx, r, rec); err != nil {
		if errors.Is(err, directory.ErrAmbiguousMatch) {
			return &RecordError{ID: id, Err: err}
		}
		return err
	}

	res := classify.Classify(rec)
	row, err := b.gen.Generate(res, rec)
	if err != nil {
		if errors.Is(err, rows.ErrMissingIdentifier) {
			return &RecordError{ID: id, Err: err}
		}
		return err
	}
	if res.Category == model.CategoryUnknown {
		b.log.Warn().Str("id", id).Str("text", res.Text).Msg("unclassified transaction")
		r.summary.Unknown++
	}
	r.append(res.Category, row)
	return nil
}

// enrich copies billing details from the source charge when the
// transaction has none.
func (b *Builder) enrich(ctx context.Context, raw model.RawTransaction) (model.RawTransaction, error) {
	if b.charges == nil || tree.Has(raw, model.FieldBillingDetails) {
		return raw, nil
	}
	source := raw.String(model.FieldSource)
	if !strings.HasPrefix(source, ChargePrefix) {
		return raw, nil
	}

	charge, err := b.charges.Charge(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetching charge %s: %w", source, err)
	}
	details, ok := charge[model.FieldBillingDetails]
	if !ok {
		return raw, nil
	}
	enriched := model.RawTransaction(tree.CloneMap(raw))
	enriched[model.FieldBillingDetails] = tree.Clone(details)
	return enriched, nil
}

// counterparty emits a relationship row, and optionally creates the
// entity, for a counterparty the directory does not know yet.
func (b *Builder) counterparty(ctx context.Context, r *run, rec model.Record) error {
	c := counterparty.BillingDetails.Extract(rec)
	if !c.Usable() {
		if !c.Empty() {
			b.log.Debug().Str("id", rec.String(model.FieldID)).Msg("counterparty has no email or name")
		}
		return nil
	}
	if r.seen[c.Key()] {
		return nil
	}

	exists, err := b.dedup.Exists(ctx, c)
	if err != nil {
		return err
	}
	r.seen[c.Key()] = true
	if exists {
		r.summary.Existing++
		return nil
	}

	r.summary.New++
	r.append(model.CategoryRelationship, b.gen.Relationship(c))

	if !b.opts.CreateEntities {
		return nil
	}
	created, err := b.dir.Create(ctx, counterparty.NewEntity(c, b.opts.Source, b.opts.Tag))
	if err != nil {
		return fmt.Errorf("creating %s: %w", c.Identifier(), err)
	}
	r.summary.Created++
	b.log.Info().Str("id", created.ID).Str("counterparty", c.Identifier()).Msg("created entity")
	return nil
}

func (r *run) append(c model.Category, row model.Row) {
	r.batch.Append(c, row)
	r.summary.Rows[c]++
}
