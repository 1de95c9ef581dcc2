package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"memband/lib/configutil"

	"github.com/joho/godotenv"
)

const (
	// DefaultPath is read when neither --config nor MEMBAND_CONFIG is given.
	DefaultPath = "memband.json5"

	EnvConfigPath = "MEMBAND_CONFIG"
	EnvOutputDir  = "MEMBAND_OUTPUT_DIR"
)

const (
	KindPerPin   = "per-pin"
	KindTimeline = "timeline"
)

type Selectors struct {
	Names string `json:"names"`
	Dates string `json:"dates"`
	// Specs is nil to keep the default, "" turns the spec count check off.
	Specs *string `json:"specs"`
}

// SpecsSelector returns the spec detail selector, "" when the check is off.
func (s Selectors) SpecsSelector() string {
	if s.Specs == nil {
		return ""
	}
	return *s.Specs
}

type ScrapeConfig struct {
	// URLTemplate contains `{page}` where the page index goes.
	URLTemplate string `json:"url_template"`
	Pages       int    `json:"pages"`
	// TimeoutSeconds is nil to keep the default, 0 disables the timeout.
	TimeoutSeconds    *int      `json:"timeout_seconds"`
	RequestsPerSecond float64   `json:"requests_per_second"`
	UserAgent         string    `json:"user_agent"`
	Selectors         Selectors `json:"selectors"`
	GenericBrand      string    `json:"generic_brand"`
}

// Timeout is the per request timeout, 0 means none.
func (s ScrapeConfig) Timeout() time.Duration {
	if s.TimeoutSeconds == nil {
		return 0
	}
	return time.Duration(*s.TimeoutSeconds) * time.Second
}

type OutputConfig struct {
	Dir string `json:"dir"`
	// YearFrom and YearTo bound the filtered snapshot, both inclusive.
	YearFrom int `json:"year_from"`
	YearTo   int `json:"year_to"`
}

type Generation struct {
	Version int    `json:"version"`
	Label   string `json:"label"`
	Pins    int    `json:"pins"`
}

type PlotConfig struct {
	Input        string       `json:"input"`
	Output       string       `json:"output"`
	Kind         string       `json:"kind"`
	DPI          float64      `json:"dpi"`
	WidthInches  float64      `json:"width_inches"`
	HeightInches float64      `json:"height_inches"`
	BandDivisor  float64      `json:"band_divisor"`
	Generations  []Generation `json:"generations"`
}

type Config struct {
	Scrape ScrapeConfig `json:"scrape"`
	Output OutputConfig `json:"output"`
	Plot   PlotConfig   `json:"plot"`
}

func ptr[T any](v T) *T {
	return &v
}

func Default() Config {
	return Config{
		Scrape: ScrapeConfig{
			URLTemplate:    "https://kakaku.com/pc/pc-memory/itemlist.aspx?pdf_Spec105=1&pdf_so=e2&pdf_vi=d&pdf_pg={page}",
			Pages:          47,
			TimeoutSeconds: ptr(30),
			Selectors: Selectors{
				Names: `td[class="ckitemLink"]`,
				Dates: `td[class="swdate1"]`,
				Specs: ptr(`div[class="ckitemSpecInnr"]`),
			},
			GenericBrand: "ノーブランド",
		},
		Output: OutputConfig{
			Dir:      ".",
			YearFrom: 2020,
			YearTo:   2022,
		},
		Plot: PlotConfig{
			Input:        "202310174.csv",
			Output:       "Band_pin__memoryType_wholeYear.png",
			Kind:         KindPerPin,
			DPI:          900,
			WidthInches:  6.4,
			HeightInches: 4.8,
			BandDivisor:  1000,
			Generations: []Generation{
				{Version: 2, Label: "DDR2", Pins: 240},
				{Version: 3, Label: "DDR3", Pins: 240},
				{Version: 4, Label: "DDR4", Pins: 288},
				{Version: 5, Label: "DDR5", Pins: 288},
			},
		},
	}
}

// Load reads `.env` from the working directory if present, then the config
// file at `path` (or MEMBAND_CONFIG, or DefaultPath) merged over Default().
// MEMBAND_OUTPUT_DIR overrides the output directory.
func Load(path string) (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg, err := configutil.ReadConfigWithDefaults(path, Default())
	if err != nil {
		return Config{}, err
	}
	slog.Debug("config loaded", "path", path)

	if dir := os.Getenv(EnvOutputDir); dir != "" {
		cfg.Output.Dir = dir
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if !strings.Contains(c.Scrape.URLTemplate, "{page}") {
		errs = append(errs, fmt.Errorf("scrape.url_template must contain {page}"))
	}
	if c.Scrape.Pages <= 0 {
		errs = append(errs, fmt.Errorf("scrape.pages must be positive, got %d", c.Scrape.Pages))
	}
	if c.Scrape.TimeoutSeconds != nil && *c.Scrape.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("scrape.timeout_seconds must not be negative"))
	}
	if c.Scrape.Selectors.Names == "" || c.Scrape.Selectors.Dates == "" {
		errs = append(errs, fmt.Errorf("scrape.selectors.names and scrape.selectors.dates are required"))
	}
	if c.Output.YearFrom > c.Output.YearTo {
		errs = append(errs, fmt.Errorf("output.year_from %d is after output.year_to %d", c.Output.YearFrom, c.Output.YearTo))
	}
	if c.Plot.Kind != KindPerPin && c.Plot.Kind != KindTimeline {
		errs = append(errs, fmt.Errorf("plot.kind must be %q or %q, got %q", KindPerPin, KindTimeline, c.Plot.Kind))
	}
	if c.Plot.DPI <= 0 || c.Plot.WidthInches <= 0 || c.Plot.HeightInches <= 0 {
		errs = append(errs, fmt.Errorf("plot.dpi, plot.width_inches and plot.height_inches must be positive"))
	}
	if c.Plot.BandDivisor <= 0 {
		errs = append(errs, fmt.Errorf("plot.band_divisor must be positive"))
	}
	for _, gen := range c.Plot.Generations {
		if gen.Pins <= 0 {
			errs = append(errs, fmt.Errorf("plot.generations: %s has %d pins", gen.Label, gen.Pins))
		}
	}
	return errors.Join(errs...)
}
