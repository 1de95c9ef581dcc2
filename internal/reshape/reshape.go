// Package reshape turns a listing table into the per-generation series
// that the plots are drawn from.
package reshape

import (
	"fmt"
	"time"

	"memband/internal/components/chrono"
	"memband/internal/listing"
)

// SeriesPoint is one product of a generation, ready to be plotted.
type SeriesPoint struct {
	// ProductName is nil for generic products.
	ProductName *string
	// Band is the bandwidth divided by the band divisor (GB/s for the default of 1000).
	Band float64
	Date time.Time
}

// Series selects the rows of generation `ddr` in table order. Bandwidth is
// divided by `divisor` and the release date is composed in Asia/Tokyo.
// A row with an impossible date fails the whole series.
func Series(table listing.Table, ddr int, divisor float64) ([]SeriesPoint, error) {
	if divisor == 0 {
		return nil, fmt.Errorf("band divisor must not be zero")
	}

	points := []SeriesPoint{}
	for _, row := range table.Rows {
		if row.DDRVersion != ddr {
			continue
		}
		if !row.ValidDate() {
			return nil, fmt.Errorf(
				"row %d: invalid release date %d/%d/%d",
				row.Index, row.ReleaseYear, row.ReleaseMonth, row.ReleaseDay,
			)
		}
		points = append(points, SeriesPoint{
			ProductName: row.ProductName,
			Band:        float64(row.Bandwidth) / divisor,
			Date:        row.ReleaseDate(chrono.Tokyo()),
		})
	}
	return points, nil
}
