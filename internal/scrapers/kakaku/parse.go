package kakaku

import (
	"context"
	"fmt"

	"memband/internal/components/assert"
	"memband/internal/components/telemetry"
	"memband/internal/listing"
	"memband/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_parser_parse_page = "parser.parse-page"
	report_parser_parse_row  = "parser.parse-row"
)

// Selectors locate the three parallel cell lists of a listing page.
type Selectors struct {
	Names string
	Dates string
	Specs string
}

type ParserOptions struct {
	Selectors Selectors
	// GenericBrand is the manufacturer value that carries no product name.
	GenericBrand string
}

type Parser struct {
	opts ParserOptions
	tel  telemetry.API
}

func NewParser(opts ParserOptions, tel telemetry.API) Parser {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Selectors.Names)
	assert.NotEmptyStr(opts.Selectors.Dates)

	return Parser{
		opts: opts,
		tel:  telemetry.NewScopedAPI("kakaku_scraper", tel),
	}
}

// ParsePage extracts the items of one listing page. The i-th name cell is
// paired with the i-th release date cell, a differing count is ErrMisaligned.
// The spec detail cells are only counted since no field is read from them.
func (p Parser) ParsePage(ctx context.Context, doc *goquery.Document) ([]listing.Item, error) {
	ctx, span := tracer.Start(ctx, "parser:ParsePage")
	defer span.End()

	names := htmlutil.CellTexts(doc.Find(p.opts.Selectors.Names))
	dates := htmlutil.CellTexts(doc.Find(p.opts.Selectors.Dates))
	span.SetAttributes(attribute.Int("names", len(names)), attribute.Int("dates", len(dates)))

	if len(names) != len(dates) {
		err := fmt.Errorf("%w: %d item names, %d release dates", ErrMisaligned, len(names), len(dates))
		p.tel.ReportBroken(report_parser_parse_page, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if p.opts.Selectors.Specs != "" {
		specs := doc.Find(p.opts.Selectors.Specs).Length()
		if specs != len(names) {
			p.tel.ReportWarning(
				report_parser_parse_page,
				fmt.Errorf("%d spec detail blocks for %d items", specs, len(names)),
			)
		}
	}

	items, err := p.ParseRows(ctx, names, dates)
	if err != nil {
		p.tel.ReportBroken(report_parser_parse_page, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return items, nil
}

// ParseRows applies the extraction rules to co-indexed name/date texts.
// A rule that does not match drops the row or aborts with a *ParseError,
// according to its OnMiss policy.
func (p Parser) ParseRows(ctx context.Context, names, dates []string) ([]listing.Item, error) {
	if len(names) != len(dates) {
		return nil, fmt.Errorf("%w: %d item names, %d release dates", ErrMisaligned, len(names), len(dates))
	}

	items := []listing.Item{}
	for i := range names {
		item, ok, err := p.parseRow(i, names[i], dates[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			p.tel.ReportDebug(report_parser_parse_row, "filtered", i, names[i])
			rowsFiltered.Add(ctx, 1)
			continue
		}
		items = append(items, item)
	}

	recordsParsed.Add(ctx, int64(len(items)))
	return items, nil
}

func (p Parser) parseRow(row int, name, date string) (listing.Item, bool, error) {
	// the standard token is the only acceptance gate, it goes first so that
	// rows without a standard token are never held to the other rules
	ddr, bandwidth, ok := ExtractStandard(name)
	if !ok {
		return listing.Item{}, false, StandardRule.miss(row, name)
	}

	manufacturer, ok := ExtractManufacturer(name)
	if !ok {
		return listing.Item{}, false, ManufacturerRule.miss(row, name)
	}

	var productName *string
	if manufacturer != p.opts.GenericBrand {
		product, ok := ExtractProductName(name)
		if !ok {
			return listing.Item{}, false, ProductNameRule.miss(row, name)
		}
		productName = &product
	}

	year, month, day, ok := ExtractReleaseDate(date)
	if !ok {
		return listing.Item{}, false, ReleaseDateRule.miss(row, date)
	}

	return listing.Item{
		Manufacturer: manufacturer,
		ProductName:  productName,
		ReleaseYear:  year,
		ReleaseMonth: month,
		ReleaseDay:   day,
		DDRVersion:   ddr,
		Bandwidth:    bandwidth,
	}, true, nil
}
