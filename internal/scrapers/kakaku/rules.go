package kakaku

import (
	"regexp"
	"strconv"
)

// MissPolicy says what happens to a row when a rule does not match.
type MissPolicy int

const (
	// SkipRow silently drops the row, it is a filter and not an error.
	SkipRow MissPolicy = iota
	// FailPage aborts the extraction of the whole page with a ParseError.
	FailPage
)

func (p MissPolicy) String() string {
	switch p {
	case SkipRow:
		return "skip-row"
	case FailPage:
		return "fail-page"
	default:
		return "unknown"
	}
}

// Rule is a named pattern applied to one text cell of a listing row.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	OnMiss  MissPolicy
}

// miss applies the rule's MissPolicy to a row whose `text` did not match, a
// nil error means the row is dropped.
func (r Rule) miss(row int, text string) error {
	if r.OnMiss == SkipRow {
		return nil
	}
	return &ParseError{Row: row, Rule: r.Name, Text: text}
}

// Match returns the submatches of the rule (index 0 is the whole match).
func (r Rule) Match(text string) ([]string, bool) {
	groups := r.Pattern.FindStringSubmatch(text)
	if groups == nil {
		return nil, false
	}
	return groups, true
}

// the item name cell looks like
// `ドスパラ 【直販モデル】　D4N3200-16G1A2 [SODIMM DDR4 PC4-25600 16GB]`
// where U+3000 separates the manufacturer from the product name.
var (
	// everything before the last full-width space on the first line
	ManufacturerRule = Rule{
		Name:    "manufacturer",
		Pattern: regexp.MustCompile(`^(.*)\x{3000}`),
		OnMiss:  FailPage,
	}
	// the text between the first full-width space and the last " [" or " ("
	ProductNameRule = Rule{
		Name:    "product-name",
		Pattern: regexp.MustCompile(`\x{3000}(.*) [\[\(]`),
		OnMiss:  FailPage,
	}
	// PC<generation>[L]-<bandwidth>, the last such token on the line wins
	StandardRule = Rule{
		Name:    "standard",
		Pattern: regexp.MustCompile(`.* ?PC([0-9])L?-([0-9]+) ?.*`),
		OnMiss:  SkipRow,
	}
	// Y/M/D with an optional space before the day
	ReleaseDateRule = Rule{
		Name:    "release-date",
		Pattern: regexp.MustCompile(`([0-9]+)/([0-9]+)/ ?([0-9]+)`),
		OnMiss:  FailPage,
	}
)

func ExtractManufacturer(name string) (string, bool) {
	groups, ok := ManufacturerRule.Match(name)
	if !ok {
		return "", false
	}
	return groups[1], true
}

func ExtractProductName(name string) (string, bool) {
	groups, ok := ProductNameRule.Match(name)
	if !ok {
		return "", false
	}
	return groups[1], true
}

// ExtractStandard returns the DDR generation and rated bandwidth. ok is false
// when the name carries no standard token or its numbers do not fit an int.
func ExtractStandard(name string) (ddr, bandwidth int, ok bool) {
	groups, ok := StandardRule.Match(name)
	if !ok {
		return 0, 0, false
	}
	ddr, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, 0, false
	}
	bandwidth, err = strconv.Atoi(groups[2])
	if err != nil {
		return 0, 0, false
	}
	return ddr, bandwidth, true
}

func ExtractReleaseDate(text string) (year, month, day int, ok bool) {
	groups, ok := ReleaseDateRule.Match(text)
	if !ok {
		return 0, 0, 0, false
	}
	parts := [3]int{}
	for i := range parts {
		n, err := strconv.Atoi(groups[i+1])
		if err != nil {
			return 0, 0, 0, false
		}
		parts[i] = n
	}
	return parts[0], parts[1], parts[2], true
}
