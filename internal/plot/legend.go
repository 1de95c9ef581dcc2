package plot

import (
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type legendEntry struct {
	label string
	color drawing.Color
}

// dotLegend draws a legend in the top left corner of the canvas with a
// filled dot per entry, chart.Legend only knows how to draw line swatches.
func dotLegend(entries []legendEntry, scale func(pt float64) float64) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		style := defaults.InheritFrom(chart.Style{
			FillColor:   drawing.ColorWhite,
			FontColor:   chart.DefaultTextColor,
			FontSize:    8,
			StrokeColor: chart.DefaultAxisColor,
			StrokeWidth: scale(chart.DefaultAxisLineWidth),
		})

		padding := int(scale(4))
		gap := int(scale(4))
		spacing := int(scale(2))

		style.GetTextOptions().WriteToRenderer(r)
		lineHeight, textWidth := 0, 0
		for _, entry := range entries {
			tb := r.MeasureText(entry.label)
			lineHeight = max(lineHeight, tb.Height())
			textWidth = max(textWidth, tb.Width())
		}

		box := chart.Box{
			Top:  canvas.Top + padding,
			Left: canvas.Left + padding,
		}
		box.Right = box.Left + padding + lineHeight + gap + textWidth + padding
		box.Bottom = box.Top + padding + len(entries)*lineHeight + (len(entries)-1)*spacing + padding
		chart.Draw.Box(r, box, style)

		y := box.Top + padding
		for _, entry := range entries {
			r.SetFillColor(entry.color)
			r.SetStrokeColor(entry.color)
			r.SetStrokeWidth(1)
			r.Circle(float64(lineHeight)/3, box.Left+padding+lineHeight/2, y+lineHeight/2)
			r.FillStroke()

			style.GetTextOptions().WriteToRenderer(r)
			r.Text(entry.label, box.Left+padding+lineHeight+gap, y+lineHeight)
			y += lineHeight + spacing
		}
	}
}
