package frame

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/openbench/scope.capture/internal/units"
)

// transmission describes one synthetic device dump for tests. Zero fields
// fall back to a representative capture.
type transmission struct {
	timebaseLine string // line 2
	timeValLine  string // line 3
	scaleLine    string // line 4
	voltageStats string // line 8
	signalStats  string // line 9
	sampleCount  int
	sampleValue  func(i int) string
}

// build renders the transmission in the firmware's fixed layout: two header
// lines, settings block, two statistics lines, then tab-delimited samples
// and a trailing separator.
func (tr transmission) build() []string {
	if tr.timebaseLine == "" {
		tr.timebaseLine = "Timebase: 100 uS/div"
	}
	if tr.timeValLine == "" {
		tr.timeValLine = "Time/div: 100"
	}
	if tr.scaleLine == "" {
		tr.scaleLine = "CH1: Coupling DC, Scale 20mV/div"
	}
	if tr.voltageStats == "" {
		tr.voltageStats = "Vmax:1.0V, Vmin:-1.0V, Vavr:0.0V, Vpp:2.0V, Vrms:0.7V"
	}
	if tr.signalStats == "" {
		tr.signalStats = "Freq:1000Hz, Cycle:1.0mS, PW:0.5mS, Duty:50%"
	}
	if tr.sampleValue == nil {
		tr.sampleValue = func(i int) string { return fmt.Sprintf("%.2f", float64(i%10)/10) }
	}

	lines := []string{
		"*** DLO-138 ***",
		"Firmware v1.0",
		tr.timebaseLine,
		tr.timeValLine,
		tr.scaleLine,
		"",
		"",
		"",
		tr.voltageStats,
		tr.signalStats,
		"",
		"",
	}
	for i := 0; i < tr.sampleCount; i++ {
		lines = append(lines, fmt.Sprintf("%d\t%s", i, tr.sampleValue(i)))
	}
	lines = append(lines, "***", "")
	return lines
}

func TestDecodeValidTransmission(t *testing.T) {
	lines := transmission{sampleCount: SampleCount}.build()

	rec, err := Decode(lines)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if len(rec.Samples) != SampleCount {
		t.Errorf("got %d samples, want %d", len(rec.Samples), SampleCount)
	}
	if rec.TimeUnit != units.MicroSeconds {
		t.Errorf("TimeUnit = %q, want %q", rec.TimeUnit, units.MicroSeconds)
	}
	if rec.Coupling != "DC" {
		t.Errorf("Coupling = %q, want %q", rec.Coupling, "DC")
	}
	if rec.VoltScale != "20mV/div" {
		t.Errorf("VoltScale = %q, want %q", rec.VoltScale, "20mV/div")
	}
	if rec.VoltUnit != units.MilliVolts {
		t.Errorf("VoltUnit = %q, want %q", rec.VoltUnit, units.MilliVolts)
	}
	if rec.Samples[1] != 0.1 {
		t.Errorf("Samples[1] = %v, want 0.1", rec.Samples[1])
	}
}

func TestDecodeSampleCountMismatch(t *testing.T) {
	for _, count := range []int{0, 1, SampleCount - 1, SampleCount + 1} {
		t.Run(fmt.Sprintf("%d samples", count), func(t *testing.T) {
			lines := transmission{sampleCount: count}.build()

			_, err := Decode(lines)
			var scErr *SampleCountError
			if !errors.As(err, &scErr) {
				t.Fatalf("Decode error = %v, want SampleCountError", err)
			}
			if scErr.Got != count || scErr.Want != SampleCount {
				t.Errorf("SampleCountError = %+v, want Got=%d Want=%d", scErr, count, SampleCount)
			}
		})
	}
}

func TestDecodeTimeScaleNormalization(t *testing.T) {
	tests := []struct {
		name         string
		timebaseLine string
		timeValLine  string
		wantScale    float64
		wantUnit     string
	}{
		// All units are normalized to seconds; the label is kept verbatim.
		{"milliseconds", "Timebase: 2.5 mS/div", "Time/div: 2.5", 0.0025, units.MilliSeconds},
		{"microseconds", "Timebase: 100 uS/div", "Time/div: 100", 0.0001, units.MicroSeconds},
		{"seconds", "Timebase: 1 S", "Time/div: 1", 1.0, units.Seconds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := transmission{
				timebaseLine: tt.timebaseLine,
				timeValLine:  tt.timeValLine,
				sampleCount:  SampleCount,
			}.build()

			rec, err := Decode(lines)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if rec.TimeScale != tt.wantScale {
				t.Errorf("TimeScale = %g, want %g", rec.TimeScale, tt.wantScale)
			}
			if rec.TimeUnit != tt.wantUnit {
				t.Errorf("TimeUnit = %q, want %q", rec.TimeUnit, tt.wantUnit)
			}
		})
	}
}

func TestDecodeVoltUnitInference(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"200mV/div", units.MilliVolts},
		{"20mV/div", units.MilliVolts},
		{"1.0V/div", units.Volts},
		{"5.0V/div", units.Volts},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			lines := transmission{
				scaleLine:   "CH1: Coupling AC, Scale " + tt.label,
				sampleCount: SampleCount,
			}.build()

			rec, err := Decode(lines)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if rec.VoltUnit != tt.want {
				t.Errorf("VoltUnit = %q, want %q", rec.VoltUnit, tt.want)
			}
			if rec.Coupling != "AC" {
				t.Errorf("Coupling = %q, want %q", rec.Coupling, "AC")
			}
		})
	}
}

func TestDecodeStatsPreserveOrder(t *testing.T) {
	lines := transmission{
		voltageStats: "Vmax:1.2V, Vmin:-1.2V",
		signalStats:  "Freq:50Hz, Duty:25%",
		sampleCount:  SampleCount,
	}.build()

	rec, err := Decode(lines)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	wantVoltage := []Stat{{"Vmax", "1.2V"}, {"Vmin", "-1.2V"}}
	if diff := cmp.Diff(wantVoltage, rec.VoltageStats); diff != "" {
		t.Errorf("VoltageStats mismatch (-want +got):\n%s", diff)
	}

	wantSignal := []Stat{{"Freq", "50Hz"}, {"Duty", "25%"}}
	if diff := cmp.Diff(wantSignal, rec.SignalStats); diff != "" {
		t.Errorf("SignalStats mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tr *transmission)
	}{
		{"stats entry missing colon", func(tr *transmission) {
			tr.voltageStats = "Vmax:1.0V, Vmin-1.0V"
		}},
		{"non-numeric time scale", func(tr *transmission) {
			tr.timeValLine = "Time/div: fast"
		}},
		{"unknown time unit", func(tr *transmission) {
			tr.timebaseLine = "Timebase: 100 xS/div"
		}},
		{"short timebase line", func(tr *transmission) {
			tr.timebaseLine = "Timebase:"
		}},
		{"short scale line", func(tr *transmission) {
			tr.scaleLine = "CH1: off"
		}},
		{"non-numeric sample", func(tr *transmission) {
			tr.sampleValue = func(i int) string {
				if i == 1024 {
					return "?.??"
				}
				return "0.00"
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := transmission{sampleCount: SampleCount}
			tt.mutate(&tr)

			_, err := Decode(tr.build())
			var sErr *StructuralError
			if !errors.As(err, &sErr) {
				t.Fatalf("Decode error = %v, want StructuralError", err)
			}
			if sErr.Msg == "" || sErr.Field == "" {
				t.Errorf("StructuralError missing diagnostics: %+v", sErr)
			}
		})
	}
}

func TestDecodeSampleMissingTab(t *testing.T) {
	tr := transmission{sampleCount: SampleCount}
	lines := tr.build()
	lines[lineFirstSample+3] = "3 0.25"

	_, err := Decode(lines)
	var sErr *StructuralError
	if !errors.As(err, &sErr) {
		t.Fatalf("Decode error = %v, want StructuralError", err)
	}
	if sErr.Line != lineFirstSample+3 {
		t.Errorf("StructuralError.Line = %d, want %d", sErr.Line, lineFirstSample+3)
	}
}

func TestDecodeTooShort(t *testing.T) {
	_, err := Decode([]string{"*** DLO-138 ***", "Firmware v1.0"})
	var sErr *StructuralError
	if !errors.As(err, &sErr) {
		t.Fatalf("Decode error = %v, want StructuralError", err)
	}
}

func TestSamplePeriodAndDuration(t *testing.T) {
	rec := &CaptureRecord{
		TimeScale: 0.0025,
		Samples:   make([]float64, SampleCount),
	}

	wantPeriod := 0.0001 // 2.5ms per division, 25 samples per division
	if got := rec.SamplePeriod(); got != wantPeriod {
		t.Errorf("SamplePeriod() = %g, want %g", got, wantPeriod)
	}
	wantDuration := float64(SampleCount-1) * wantPeriod
	if got := rec.Duration(); got != wantDuration {
		t.Errorf("Duration() = %g, want %g", got, wantDuration)
	}
}
