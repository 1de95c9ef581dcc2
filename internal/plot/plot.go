// Package plot renders the per-generation bandwidth charts as png files.
package plot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"memband/internal/components/assert"
	"memband/internal/components/telemetry"
	"memband/internal/reshape"
	libtelemetry "memband/lib/telemetry"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = libtelemetry.Tracer("memband/plot")

const (
	report_plotter_render = "plotter.render"
)

var (
	// ErrMalformed is returned for values that cannot be placed on a log axis.
	ErrMalformed = errors.New("malformed plot data")
	// ErrNoData is returned when every generation is empty.
	ErrNoData = errors.New("no data to plot")
)

// palette follows the usual categorical order so DDR2..DDR5 keep their colors.
var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
}

// Generation is one DDR generation with its pin count and its points.
type Generation struct {
	Label  string
	Pins   int
	Points []reshape.SeriesPoint
}

type Options struct {
	Output       string
	DPI          float64
	WidthInches  float64
	HeightInches float64
}

type Plotter struct {
	opts Options
	tel  telemetry.API
}

func New(opts Options, tel telemetry.API) Plotter {
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.Output)

	return Plotter{
		opts: opts,
		tel:  telemetry.NewScopedAPI("plot", tel),
	}
}

// scale converts typographic points to pixels at the configured dpi.
func (p Plotter) scale(pt float64) float64 {
	return pt * p.opts.DPI / 72
}

func (p Plotter) pointStyle(color drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: color,
		StrokeWidth: chart.Disabled,
		DotWidth:    p.scale(2.5),
		DotColor:    color,
	}
}

func (p Plotter) gridStyle() chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorFromHex("d9d9d9"),
		StrokeWidth: p.scale(0.6),
	}
}

// nonEmpty drops generations without points, reporting each one skipped.
func (p Plotter) nonEmpty(gens []Generation) []Generation {
	out := []Generation{}
	for _, gen := range gens {
		if len(gen.Points) == 0 {
			p.tel.ReportDebug(report_plotter_render, "skipped empty series", gen.Label)
			continue
		}
		out = append(out, gen)
	}
	return out
}

// PerPin draws, for every generation, bandwidth per pin (Band / pins * 1000)
// against Band with log2 scales on both axes.
func (p Plotter) PerPin(ctx context.Context, gens []Generation) error {
	ctx, span := tracer.Start(ctx, "plotter:PerPin")
	defer span.End()

	gens = p.nonEmpty(gens)
	if len(gens) == 0 {
		span.SetStatus(codes.Error, ErrNoData.Error())
		return ErrNoData
	}

	var allX, allY []float64
	series := []chart.Series{}
	for i, gen := range gens {
		if gen.Pins <= 0 {
			err := fmt.Errorf("%w: %s has %d pins", ErrMalformed, gen.Label, gen.Pins)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		xs := make([]float64, len(gen.Points))
		ys := make([]float64, len(gen.Points))
		for j, point := range gen.Points {
			xs[j] = point.Band / float64(gen.Pins) * 1000
			ys[j] = point.Band
		}
		err := checkPositive(gen.Label, ys)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		allX = append(allX, xs...)
		allY = append(allY, ys...)

		series = append(series, chart.ContinuousSeries{
			Name:    gen.Label,
			XValues: log2All(xs),
			YValues: log2All(ys),
			Style:   p.pointStyle(palette[i%len(palette)]),
		})
	}

	xRange, xTicks := log2Axis(allX)
	yRange, yTicks := log2Axis(allY)

	return p.render(ctx, chart.Chart{
		Title: "Bandwidth per pin by memory type",
		XAxis: chart.XAxis{
			Name:           "Band/pin (MB/s)",
			Range:          xRange,
			Ticks:          xTicks,
			GridMajorStyle: p.gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           "Band (GB/s)",
			Range:          yRange,
			Ticks:          yTicks,
			GridMajorStyle: p.gridStyle(),
		},
		Series: series,
	})
}

// Timeline draws the release date of every product against Band, log2 on
// the Band axis.
func (p Plotter) Timeline(ctx context.Context, gens []Generation) error {
	ctx, span := tracer.Start(ctx, "plotter:Timeline")
	defer span.End()

	gens = p.nonEmpty(gens)
	if len(gens) == 0 {
		span.SetStatus(codes.Error, ErrNoData.Error())
		return ErrNoData
	}

	var allDates []time.Time
	var allY []float64
	series := []chart.Series{}
	for i, gen := range gens {
		dates := make([]time.Time, len(gen.Points))
		ys := make([]float64, len(gen.Points))
		for j, point := range gen.Points {
			dates[j] = point.Date
			ys[j] = point.Band
		}
		err := checkPositive(gen.Label, ys)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		allDates = append(allDates, dates...)
		allY = append(allY, ys...)

		series = append(series, chart.TimeSeries{
			Name:    gen.Label,
			XValues: dates,
			YValues: log2All(ys),
			Style:   p.pointStyle(palette[i%len(palette)]),
		})
	}

	xRange, xTicks := yearAxis(allDates)
	yRange, yTicks := log2Axis(allY)

	return p.render(ctx, chart.Chart{
		Title: "Release date and bandwidth by memory type",
		XAxis: chart.XAxis{
			Name:           "Release date",
			Range:          xRange,
			Ticks:          xTicks,
			GridMajorStyle: p.gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           "Band (GB/s)",
			Range:          yRange,
			Ticks:          yTicks,
			GridMajorStyle: p.gridStyle(),
		},
		Series: series,
	})
}

func (p Plotter) render(ctx context.Context, graph chart.Chart) error {
	span := trace.SpanFromContext(ctx)

	graph.DPI = p.opts.DPI
	graph.Width = int(math.Round(p.opts.WidthInches * p.opts.DPI))
	graph.Height = int(math.Round(p.opts.HeightInches * p.opts.DPI))
	pad := int(p.scale(10))
	graph.Background = chart.Style{Padding: chart.Box{Top: pad, Left: pad, Right: pad, Bottom: pad}}

	entries := make([]legendEntry, len(graph.Series))
	for i, s := range graph.Series {
		entries[i] = legendEntry{label: s.GetName(), color: palette[i%len(palette)]}
	}
	graph.Elements = []chart.Renderable{dotLegend(entries, p.scale)}
	span.SetAttributes(
		attribute.Int("width", graph.Width),
		attribute.Int("height", graph.Height),
		attribute.Int("series", len(graph.Series)),
	)

	var buffer bytes.Buffer
	err := graph.Render(chart.PNG, &buffer)
	if err != nil {
		p.tel.ReportBroken(report_plotter_render, err, p.opts.Output)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("render %s: %w", p.opts.Output, err)
	}

	err = os.MkdirAll(filepath.Dir(p.opts.Output), 0777)
	if err != nil {
		return err
	}
	err = os.WriteFile(p.opts.Output, buffer.Bytes(), 0644)
	if err != nil {
		p.tel.ReportBroken(report_plotter_render, err, p.opts.Output)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	p.tel.ReportDebug(report_plotter_render, p.opts.Output, buffer.Len())
	return nil
}
