// Package plotview renders a decoded capture as plots: a signal-vs-time
// view and an optional spectrum view. PNG output goes through
// gonum.org/v1/plot; RenderHTML produces an interactive page instead.
package plotview

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/openbench/scope.capture/internal/frame"
	"github.com/openbench/scope.capture/internal/spectrum"
	"github.com/openbench/scope.capture/internal/units"
)

// Options controls presentation details shared by the renderers.
type Options struct {
	// ShowStats overlays the voltage and signal statistics on the signal
	// view.
	ShowStats bool

	// MaxFreq bounds the spectrum view's frequency axis, in Hz. Zero
	// leaves the axis unbounded.
	MaxFreq float64
}

var traceColor = color.RGBA{R: 0xcc, G: 0xa0, B: 0x00, A: 0xff}

// timeAxis returns the sample instants expressed in the capture's original
// time unit, so the axis reads the way the scope screen does.
func timeAxis(rec *frame.CaptureRecord) []float64 {
	divisor, ok := units.TimeUnitDivisor(rec.TimeUnit)
	if !ok {
		divisor = 1
	}
	step := rec.SamplePeriod() * divisor
	axis := make([]float64, len(rec.Samples))
	for i := range axis {
		axis[i] = float64(i) * step
	}
	return axis
}

// RenderSignal writes the signal-vs-time view to a PNG file.
func RenderSignal(rec *frame.CaptureRecord, opts Options, path string) error {
	axis := timeAxis(rec)

	pts := make(plotter.XYs, len(rec.Samples))
	for i, v := range rec.Samples {
		pts[i] = plotter.XY{X: axis[i], Y: v}
	}

	p := plot.New()
	p.Title.Text = "Signal"
	p.X.Label.Text = fmt.Sprintf("time [%s]", rec.TimeUnit)
	p.Y.Label.Text = fmt.Sprintf("voltage [%s]", rec.VoltUnit)
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("signal line: %w", err)
	}
	line.Color = traceColor
	line.Width = vg.Points(0.5)
	p.Add(line)

	p.X.Min = 0
	if len(axis) > 0 {
		p.X.Max = axis[len(axis)-1]
	}

	if opts.ShowStats {
		addStatsOverlay(p, rec)
	}

	if err := p.Save(12*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save signal plot: %w", err)
	}
	return nil
}

// addStatsOverlay stacks the statistics blocks in the plot's upper corners:
// voltage stats on the right, signal stats on the left, mirroring the
// scope's on-screen layout. The Y range is padded so the text clears the
// trace.
func addStatsOverlay(p *plot.Plot, rec *frame.CaptureRecord) {
	yMin, yMax := sampleRange(rec.Samples)
	span := yMax - yMin
	if span == 0 {
		span = 1
	}
	yMax += span * 0.3
	p.Y.Min = yMin
	p.Y.Max = yMax

	xMax := p.X.Max
	lineStep := span * 0.06

	labels := plotter.XYLabels{}
	for i, stat := range rec.VoltageStats {
		labels.XYs = append(labels.XYs, plotter.XY{X: xMax * 0.82, Y: yMax - float64(i+1)*lineStep})
		labels.Labels = append(labels.Labels, stat.Key+":"+stat.Value)
	}
	for i, stat := range rec.SignalStats {
		labels.XYs = append(labels.XYs, plotter.XY{X: xMax * 0.04, Y: yMax - float64(i+1)*lineStep})
		labels.Labels = append(labels.Labels, stat.Key+":"+stat.Value)
	}

	l, err := plotter.NewLabels(labels)
	if err != nil {
		return
	}
	p.Add(l)
}

func sampleRange(samples []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min > max {
		return 0, 0
	}
	return min, max
}

// RenderSpectrum writes the spectrum view to a PNG file with a logarithmic
// magnitude axis.
func RenderSpectrum(rec *frame.CaptureRecord, sp *spectrum.Spectrum, opts Options, path string) error {
	pts := make(plotter.XYs, 0, len(sp.Freqs))
	for i, f := range sp.Freqs {
		if opts.MaxFreq > 0 && f > opts.MaxFreq {
			break
		}
		// The log scale cannot represent zero magnitudes.
		if sp.Mags[i] <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: f, Y: sp.Mags[i]})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no spectrum points below %g Hz", opts.MaxFreq)
	}

	p := plot.New()
	p.Title.Text = "FFT"
	p.X.Label.Text = "frequency [Hz]"
	p.Y.Label.Text = fmt.Sprintf("amplitude [%s]", rec.VoltUnit)
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("spectrum line: %w", err)
	}
	line.Color = traceColor
	line.Width = vg.Points(0.5)
	p.Add(line)

	p.X.Min = 0
	if opts.MaxFreq > 0 {
		p.X.Max = opts.MaxFreq
	}

	if err := p.Save(12*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save spectrum plot: %w", err)
	}
	return nil
}
