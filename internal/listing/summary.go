package listing

import (
	"slices"
	"time"
)

// GenerationSummary aggregates the rows of one memory generation.
type GenerationSummary struct {
	DDRVersion   int
	Count        int
	MinBandwidth int
	MaxBandwidth int
	FirstRelease time.Time
	LastRelease  time.Time
}

// Summarize groups the table by DDR version, ascending.
func Summarize(table Table) []GenerationSummary {
	byVersion := map[int]*GenerationSummary{}
	for _, r := range table.Rows {
		released := r.ReleaseDate(time.UTC)

		s, ok := byVersion[r.DDRVersion]
		if !ok {
			byVersion[r.DDRVersion] = &GenerationSummary{
				DDRVersion:   r.DDRVersion,
				Count:        1,
				MinBandwidth: r.Bandwidth,
				MaxBandwidth: r.Bandwidth,
				FirstRelease: released,
				LastRelease:  released,
			}
			continue
		}

		s.Count++
		s.MinBandwidth = min(s.MinBandwidth, r.Bandwidth)
		s.MaxBandwidth = max(s.MaxBandwidth, r.Bandwidth)
		if released.Before(s.FirstRelease) {
			s.FirstRelease = released
		}
		if released.After(s.LastRelease) {
			s.LastRelease = released
		}
	}

	out := make([]GenerationSummary, 0, len(byVersion))
	for _, s := range byVersion {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b GenerationSummary) int {
		return a.DDRVersion - b.DDRVersion
	})
	return out
}
