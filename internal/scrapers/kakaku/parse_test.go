package kakaku

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	_ "embed"

	"memband/internal/components/telemetry"
	"memband/internal/listing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/listing_page.html
var listingPageTest []byte

var testSelectors = Selectors{
	Names: `td[class="ckitemLink"]`,
	Dates: `td[class="swdate1"]`,
	Specs: `div[class="ckitemSpecInnr"]`,
}

func newTestParser(tel telemetry.API) Parser {
	return NewParser(ParserOptions{
		Selectors:    testSelectors,
		GenericBrand: "ノーブランド",
	}, tel)
}

func TestParsePageFixture(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(listingPageTest))
	if err != nil {
		t.Fatal(err)
	}

	tel := &telemetry.Recorder{}
	items, err := newTestParser(tel).ParsePage(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	expected := []listing.Item{
		{Manufacturer: "ドスパラ", ProductName: listing.StringPtr("D4N3200-16G1A2"), ReleaseYear: 2020, ReleaseMonth: 6, ReleaseDay: 15, DDRVersion: 4, Bandwidth: 25600},
		{Manufacturer: "ノーブランド", ProductName: nil, ReleaseYear: 2013, ReleaseMonth: 11, ReleaseDay: 2, DDRVersion: 3, Bandwidth: 12800},
		{Manufacturer: "CFD", ProductName: listing.StringPtr("W4U3200CS-8G"), ReleaseYear: 2019, ReleaseMonth: 4, ReleaseDay: 25, DDRVersion: 4, Bandwidth: 25600},
		{Manufacturer: "Transcend", ProductName: listing.StringPtr("TS1GSK64W6H"), ReleaseYear: 2015, ReleaseMonth: 3, ReleaseDay: 10, DDRVersion: 3, Bandwidth: 12800},
		{Manufacturer: "crucial", ProductName: listing.StringPtr("CP2K16G56C46U5"), ReleaseYear: 2021, ReleaseMonth: 12, ReleaseDay: 20, DDRVersion: 5, Bandwidth: 44800},
	}
	if diff := cmp.Diff(expected, items); diff != "" {
		t.Fatalf("unexpected items (-want +got):\n%s", diff)
	}

	require.Empty(t, tel.Reports("broken"))
	require.Empty(t, tel.Reports("warning"))
	require.Equal(t, []string{"kakaku_scraper: parser.parse-row"}, tel.IDs("debug"))
}

func TestParseRowsScenario(t *testing.T) {
	items, err := newTestParser(&telemetry.Recorder{}).ParseRows(
		context.Background(),
		[]string{"ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]"},
		[]string{"2020/06/15"},
	)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []listing.Item{{
		Manufacturer: "ドスパラ",
		ProductName:  listing.StringPtr("D4N3200-16G1A2"),
		ReleaseYear:  2020,
		ReleaseMonth: 6,
		ReleaseDay:   15,
		DDRVersion:   4,
		Bandwidth:    25600,
	}}, items)
}

func TestParseRowsGenericBrand(t *testing.T) {
	names := []string{
		"ノーブランド　DDR4 16GB [DIMM DDR4 PC4-21300 16GB]",
		"ノーブランド　no bracket at all PC4-21300",
		"ノーブランド　PC3-10600",
	}
	dates := []string{"2018/05/01", "2018/05/02", "2018/05/03"}

	items, err := newTestParser(&telemetry.Recorder{}).ParseRows(context.Background(), names, dates)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, items, 3)
	for _, item := range items {
		require.Equal(t, "ノーブランド", item.Manufacturer)
		require.Nil(t, item.ProductName)
	}
}

func TestParseRowsDropsRowsWithoutStandard(t *testing.T) {
	names := []string{
		"ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]",
		"玄人志向　KRHS-ADAPTER (メモリ変換アダプタ)",
		"CFD　W4U3200CS-8G [DIMM DDR4 PC4-25600 8GB]",
	}
	dates := []string{"2020/06/15", "2018/1/1", "2019/04/25"}
	parser := newTestParser(&telemetry.Recorder{})

	all, err := parser.ParseRows(context.Background(), names, dates)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, all, 2)
	require.Equal(t, "ドスパラ", all[0].Manufacturer)
	require.Equal(t, "CFD", all[1].Manufacturer)

	// a filtered row is never held to the other rules
	unmatched, err := parser.ParseRows(context.Background(), []string{"no separator and no token"}, []string{"unknown"})
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, unmatched)
}

func TestParseRowsErrors(t *testing.T) {
	cases := []struct {
		name string
		date string
		rule string
	}{
		{name: "ADATA AD4U320016G22 [DIMM DDR4 PC4-25600 16GB]", date: "2020/01/01", rule: "manufacturer"},
		{name: "ADATA　AD4U320016G22[DIMM DDR4 PC4-25600 16GB]", date: "2020/01/01", rule: "product-name"},
		{name: "ADATA　AD4U320016G22 [DIMM DDR4 PC4-25600 16GB]", date: "近日発売", rule: "release-date"},
	}

	for _, test := range cases {
		names := []string{"ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]", test.name}
		dates := []string{"2020/06/15", test.date}

		items, err := newTestParser(&telemetry.Recorder{}).ParseRows(context.Background(), names, dates)
		require.Nil(t, items)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), "%v", err)
		require.Equal(t, 1, parseErr.Row)
		require.Equal(t, test.rule, parseErr.Rule)
	}
}

func TestParseRowsFollowsMissPolicy(t *testing.T) {
	previous := ReleaseDateRule.OnMiss
	ReleaseDateRule.OnMiss = SkipRow
	t.Cleanup(func() { ReleaseDateRule.OnMiss = previous })

	names := []string{
		"ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]",
		"ADATA　AD4U320016G22 [DIMM DDR4 PC4-25600 16GB]",
	}
	dates := []string{"2020/06/15", "近日発売"}

	tel := &telemetry.Recorder{}
	items, err := newTestParser(tel).ParseRows(context.Background(), names, dates)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, items, 1)
	require.Equal(t, "ドスパラ", items[0].Manufacturer)
	require.Equal(t, []string{"kakaku_scraper: parser.parse-row"}, tel.IDs("debug"))
}

func TestParsePageMisaligned(t *testing.T) {
	page := `<table>
<tr><td class="ckitemLink">ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]</td><td class="swdate1">2020/06/15</td></tr>
<tr><td class="ckitemLink">CFD　W4U3200CS-8G [DIMM DDR4 PC4-25600 8GB]</td></tr>
</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	tel := &telemetry.Recorder{}
	_, err = newTestParser(tel).ParsePage(context.Background(), doc)
	require.ErrorIs(t, err, ErrMisaligned)
	require.Equal(t, []string{"kakaku_scraper: parser.parse-page"}, tel.IDs("broken"))
}

func TestParsePageSpecCountWarning(t *testing.T) {
	page := `<table>
<tr><td class="ckitemLink">ドスパラ　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]</td><td class="swdate1">2020/06/15</td></tr>
</table>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	tel := &telemetry.Recorder{}
	items, err := newTestParser(tel).ParsePage(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, items, 1)
	require.Equal(t, []string{"kakaku_scraper: parser.parse-page"}, tel.IDs("warning"))
}

func TestParsePageEmpty(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>該当する製品がありません</body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	items, err := newTestParser(&telemetry.Recorder{}).ParsePage(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, items)
}
