// Package frame decodes one DLO-138 serial transmission into a typed,
// validated capture record.
//
// The firmware emits a fixed text layout with no length prefix or
// terminator: header lines, a time-scale line, a scale/coupling line, two
// statistics blocks, and exactly 2048 tab-delimited sample lines. Every
// field lives at a fixed line and token position, so the decoder is
// strictly positional. The sample-count check is the only structural
// safety net against a truncated transmission and must stay exact.
package frame

import "fmt"

// SampleCount is the number of samples the firmware sends for the single
// analog channel in every transmission.
const SampleCount = 2048

// SamplesPerDivision is the firmware's horizontal resolution: the number of
// samples covered by one time-scale division on screen.
const SamplesPerDivision = 25

// Stat is one key/value pair from a statistics block. Pairs are kept in the
// order the device transmitted them; that order is display-significant.
type Stat struct {
	Key   string
	Value string
}

// CaptureRecord is the decoded form of one complete transmission. It is
// built fresh per acquisition cycle and never mutated after Decode returns.
type CaptureRecord struct {
	// TimeScale is seconds per division, normalized to seconds regardless
	// of the unit the device reported.
	TimeScale float64

	// TimeUnit is the unit label as read off the wire ("uS", "mS", "S"),
	// retained for display.
	TimeUnit string

	// VoltScale is the raw vertical scale label, e.g. "200mV/div".
	VoltScale string

	// VoltUnit is "mV" or "V", inferred from the scale label.
	VoltUnit string

	// Coupling is the free-text coupling mode ("DC", "AC", "GND").
	Coupling string

	// VoltageStats holds Vmax/Vmin/Vavr/Vpp/Vrms pairs, values in VoltUnit.
	VoltageStats []Stat

	// SignalStats holds Freq/Cycle/PW/Duty pairs.
	SignalStats []Stat

	// Samples holds exactly SampleCount voltage readings.
	Samples []float64
}

// SamplePeriod returns the time between two consecutive samples, in
// seconds.
func (r *CaptureRecord) SamplePeriod() float64 {
	return r.TimeScale / SamplesPerDivision
}

// Duration returns the time span covered by the whole sample block, in
// seconds.
func (r *CaptureRecord) Duration() float64 {
	return float64(len(r.Samples)-1) * r.SamplePeriod()
}

// StructuralError reports a token that was absent or malformed at its fixed
// position in the transmission.
type StructuralError struct {
	Line  int    // zero-based line index within the transmission
	Field string // the field being extracted
	Msg   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("line %d: bad %s: %s", e.Line, e.Field, e.Msg)
}

// SampleCountError reports a decoded sample count other than SampleCount.
// It is the primary integrity guard against truncated transmissions.
type SampleCountError struct {
	Got  int
	Want int
}

func (e *SampleCountError) Error() string {
	return fmt.Sprintf("decoded %d samples, expected %d", e.Got, e.Want)
}
