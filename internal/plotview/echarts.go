package plotview

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/openbench/scope.capture/internal/frame"
	"github.com/openbench/scope.capture/internal/spectrum"
)

// RenderHTML writes a self-contained interactive page with the signal view
// and, when sp is non-nil, the spectrum view below it.
func RenderHTML(rec *frame.CaptureRecord, sp *spectrum.Spectrum, o Options, path string) error {
	page := components.NewPage()
	page.AddCharts(signalChart(rec, o))
	if sp != nil {
		page.AddCharts(spectrumChart(rec, sp, o))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render capture page: %w", err)
	}
	return nil
}

func signalChart(rec *frame.CaptureRecord, o Options) *charts.Line {
	axis := timeAxis(rec)
	xs := make([]string, len(axis))
	data := make([]opts.LineData, len(rec.Samples))
	for i, v := range rec.Samples {
		xs[i] = fmt.Sprintf("%.4g", axis[i])
		data[i] = opts.LineData{Value: v}
	}

	subtitle := fmt.Sprintf("%s coupling, %s", rec.Coupling, rec.VoltScale)
	if o.ShowStats {
		subtitle += "  |  " + statsLine(rec.VoltageStats) + "  |  " + statsLine(rec.SignalStats)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Oscilloscope DLO-138", Theme: "dark", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Signal", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("time [%s]", rec.TimeUnit)}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("voltage [%s]", rec.VoltUnit)}),
	)
	line.SetXAxis(xs).AddSeries("CH1", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func spectrumChart(rec *frame.CaptureRecord, sp *spectrum.Spectrum, o Options) *charts.Line {
	xs := make([]string, 0, len(sp.Freqs))
	data := make([]opts.LineData, 0, len(sp.Mags))
	for i, f := range sp.Freqs {
		if o.MaxFreq > 0 && f > o.MaxFreq {
			break
		}
		xs = append(xs, fmt.Sprintf("%.4g", f))
		data = append(data, opts.LineData{Value: sp.Mags[i]})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "1200px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "FFT"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frequency [Hz]"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("amplitude [%s]", rec.VoltUnit)}),
	)
	line.SetXAxis(xs).AddSeries("spectrum", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line
}

func statsLine(stats []frame.Stat) string {
	s := ""
	for i, stat := range stats {
		if i > 0 {
			s += ", "
		}
		s += stat.Key + ":" + stat.Value
	}
	return s
}
