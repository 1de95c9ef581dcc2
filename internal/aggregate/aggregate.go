package aggregate

import (
	"context"
	"fmt"
	"path/filepath"

	"memband/internal/components/assert"
	"memband/internal/components/chrono"
	"memband/internal/components/telemetry"
	"memband/internal/listing"
	libtelemetry "memband/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = libtelemetry.Tracer("memband/aggregate")

const (
	report_aggregator_collect = "aggregator.collect"
	report_aggregator_run     = "aggregator.run"
	report_store_save         = "store.save"
)

type Fetcher interface {
	FetchPage(ctx context.Context, page int) (*goquery.Document, error)
}

type Parser interface {
	ParsePage(ctx context.Context, doc *goquery.Document) ([]listing.Item, error)
}

// Store persists a table under a file name and returns where it went.
type Store interface {
	Save(name string, table listing.Table) (string, error)
}

// DirStore saves tables as csv files inside a directory.
type DirStore string

func (d DirStore) Save(name string, table listing.Table) (string, error) {
	path := filepath.Join(string(d), name)
	return path, listing.SaveCSV(path, table)
}

type Options struct {
	// RunID tags every report of a run, a fresh one is generated when empty.
	RunID string
	// Pages is the number of listing pages, fetched as 1..Pages.
	Pages int
	// YearFrom and YearTo bound the filtered snapshot, both inclusive.
	YearFrom int
	YearTo   int
}

type Aggregator struct {
	opts    Options
	fetcher Fetcher
	parser  Parser
	store   Store
	time    chrono.TimeAPI
	tel     telemetry.API
}

func New(
	opts Options,
	fetcher Fetcher,
	parser Parser,
	store Store,
	time chrono.TimeAPI,
	tel telemetry.API,
) Aggregator {
	assert.NotNil(fetcher)
	assert.NotNil(parser)
	assert.NotNil(store)
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.Positive(opts.Pages)

	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}

	return Aggregator{
		opts:    opts,
		fetcher: fetcher,
		parser:  parser,
		store:   store,
		time:    time,
		tel:     telemetry.NewScopedAPI("aggregate", tel),
	}
}

type Result struct {
	RunID        string
	Table        listing.Table
	Filtered     listing.Table
	SnapshotPath string
	FilteredPath string
}

// NewRunID returns a fresh aggregation run id.
func NewRunID() string {
	return uuid.NewString()
}

// SnapshotName is the file name of a full snapshot taken at `t`, the
// components are not zero padded so 2023-10-17 04:00 is "202310174.csv".
func SnapshotName(t chrono.TimeAPI) string {
	now := t.Now()
	return fmt.Sprintf("%d%d%d%d.csv", now.Year(), int(now.Month()), now.Day(), now.Hour())
}

// FilteredName is the file name of the snapshot restricted to [from, to].
func FilteredName(from, to int) string {
	return fmt.Sprintf("%d_%d.csv", from, to)
}

// Collect fetches and parses pages 1..Pages in order. Any failure aborts
// the whole collection, there is no skipping of bad pages.
func (a Aggregator) Collect(ctx context.Context) (listing.Table, error) {
	ctx, span := tracer.Start(ctx, "aggregator:Collect")
	defer span.End()

	var items []listing.Item
	for page := 1; page <= a.opts.Pages; page++ {
		err := ctx.Err()
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return listing.Table{}, err
		}

		doc, err := a.fetcher.FetchPage(ctx, page)
		if err != nil {
			a.tel.ReportBroken(report_aggregator_collect, err, page)
			span.SetStatus(codes.Error, err.Error())
			return listing.Table{}, fmt.Errorf("page %d: %w", page, err)
		}
		pageItems, err := a.parser.ParsePage(ctx, doc)
		if err != nil {
			a.tel.ReportBroken(report_aggregator_collect, err, page)
			span.SetStatus(codes.Error, err.Error())
			return listing.Table{}, fmt.Errorf("page %d: %w", page, err)
		}

		a.tel.ReportDebug(report_aggregator_collect, page, len(pageItems))
		items = append(items, pageItems...)
	}

	span.SetAttributes(attribute.Int("items", len(items)))
	return listing.NewTable(items), nil
}

// Run collects every page, then saves the full snapshot and the snapshot
// filtered by release year. Nothing is saved when collection fails. The
// snapshot is named after the time the run started.
func (a Aggregator) Run(ctx context.Context) (Result, error) {
	runID := a.opts.RunID
	snapshotName := SnapshotName(a.time)
	ctx, span := tracer.Start(ctx, "aggregator:Run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))

	a.tel.ReportDebug(report_aggregator_run, runID, "start", a.opts.Pages)

	table, err := a.Collect(ctx)
	if err != nil {
		a.tel.ReportBroken(report_aggregator_run, err, runID)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	a.tel.ReportCount(report_aggregator_run, int64(table.Len()))

	result := Result{
		RunID:    runID,
		Table:    table,
		Filtered: table.FilterReleaseYear(a.opts.YearFrom, a.opts.YearTo),
	}

	result.SnapshotPath, err = a.store.Save(snapshotName, result.Table)
	if err != nil {
		a.tel.ReportBroken(report_store_save, err, runID)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("save snapshot: %w", err)
	}
	result.FilteredPath, err = a.store.Save(FilteredName(a.opts.YearFrom, a.opts.YearTo), result.Filtered)
	if err != nil {
		a.tel.ReportBroken(report_store_save, err, runID)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, fmt.Errorf("save filtered snapshot: %w", err)
	}

	a.tel.ReportDebug(report_aggregator_run, runID, "done", result.SnapshotPath, result.FilteredPath)
	return result, nil
}
