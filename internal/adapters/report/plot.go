package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"pagepulse/internal/analysis"
)

const (
	histogramBins = 50
	histogramFile = "sentiments.png"
)

// SentimentHistogram overlays one density histogram per series on shared
// bins over [-1, 1] and saves it as sentiments.png. Empty series are left
// out of the plot.
func (w *Writer) SentimentHistogram(series []analysis.Series) (string, error) {
	p := plot.New()
	p.Title.Text = "Comment sentiment"
	p.X.Label.Text = "sentiment"
	p.Y.Label.Text = "density"
	p.X.Min, p.X.Max = -1, 1
	p.Legend.Top = true

	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}

		h := densityHistogram(s.Values, histogramBins, -1, 1)
		h.FillColor = translucent(plotutil.Color(i), 0x80)
		h.LineStyle.Color = plotutil.Color(i)

		p.Add(h)
		p.Legend.Add(s.Name, h)
	}

	img, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return "", fmt.Errorf("render %s: %w", histogramFile, err)
	}
	return w.replace(histogramFile, func(out io.Writer) error {
		_, err := img.WriteTo(out)
		return err
	})
}

// densityHistogram bins values into n equal bins over [lo, hi] and scales
// it to unit area. Values outside the range land in the edge bins.
func densityHistogram(values []float64, n int, lo, hi float64) *plotter.Histogram {
	width := (hi - lo) / float64(n)

	bins := make([]plotter.HistogramBin, n)
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: lo + float64(i)*width, Max: lo + float64(i+1)*width}
	}
	for _, v := range values {
		i := int((v - lo) / width)
		i = max(0, min(i, n-1))
		bins[i].Weight++
	}

	h := &plotter.Histogram{
		Bins:      bins,
		Width:     width,
		LineStyle: plotter.DefaultLineStyle,
	}
	h.Normalize(1)
	return h
}

func translucent(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}
