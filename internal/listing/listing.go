// Package listing holds the scraped memory-module records and their
// tabular persistence.
package listing

import "time"

// Item is one scraped product entry.
type Item struct {
	Manufacturer string
	// ProductName is nil when the manufacturer is the generic "no-brand" marker.
	ProductName  *string
	ReleaseYear  int
	ReleaseMonth int
	ReleaseDay   int
	// DDRVersion is the memory generation, the digit of the "PC<n>-" token.
	DDRVersion int
	// Bandwidth is the rated transfer rate in the listing's units (MB/s).
	Bandwidth int
}

// ReleaseDate composes the release year/month/day in the given location.
// time.Date normalizes out of range components, so callers that need strict
// validation should use ValidDate first.
func (i Item) ReleaseDate(loc *time.Location) time.Time {
	return time.Date(i.ReleaseYear, time.Month(i.ReleaseMonth), i.ReleaseDay, 0, 0, 0, 0, loc)
}

// ValidDate reports whether year/month/day name a real calendar day.
func (i Item) ValidDate() bool {
	if i.ReleaseMonth < 1 || i.ReleaseMonth > 12 || i.ReleaseDay < 1 {
		return false
	}
	d := i.ReleaseDate(time.UTC)
	return d.Year() == i.ReleaseYear && int(d.Month()) == i.ReleaseMonth && d.Day() == i.ReleaseDay
}

// Name returns the product name or "" when it is nil.
func (i Item) Name() string {
	if i.ProductName == nil {
		return ""
	}
	return *i.ProductName
}

// StringPtr is a helper for filling Item.ProductName.
func StringPtr(s string) *string {
	return &s
}

// Row is an Item together with its index column.
type Row struct {
	Index int
	Item
}

// Table is an ordered sequence of rows, page order then within-page order.
// Rows are never deduplicated.
type Table struct {
	Rows []Row
}

// NewTable indexes items from 0 in the given order.
func NewTable(items []Item) Table {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = Row{Index: i, Item: item}
	}
	return Table{Rows: rows}
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Items returns the items of the table without their index.
func (t Table) Items() []Item {
	items := make([]Item, len(t.Rows))
	for i, r := range t.Rows {
		items[i] = r.Item
	}
	return items
}

// Filter returns the rows for which keep returns true, the original index
// of each row is preserved.
func (t Table) Filter(keep func(Item) bool) Table {
	out := Table{Rows: []Row{}}
	for _, r := range t.Rows {
		if keep(r.Item) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// FilterReleaseYear keeps rows released within [from, to] inclusive.
func (t Table) FilterReleaseYear(from, to int) Table {
	return t.Filter(func(i Item) bool {
		return i.ReleaseYear >= from && i.ReleaseYear <= to
	})
}
