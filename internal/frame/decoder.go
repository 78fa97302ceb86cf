package frame

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openbench/scope.capture/internal/units"
)

// Fixed line positions within one transmission. The firmware has no
// self-describing schema; these indices are the wire contract.
const (
	lineTimeUnit     = 2  // token 2, first two characters
	lineTimeScale    = 3  // last whitespace token
	lineScale        = 4  // token 2 = coupling (comma-stripped), token 4 = volt scale
	lineVoltageStats = 8  // "Vmax:...V, Vmin:...V, ..."
	lineSignalStats  = 9  // "Freq:...Hz, Cycle:..., ..."
	lineFirstSample  = 12 // samples run from here to len(lines)-2
	trailerLines     = 2  // separator plus empty line after the last sample
)

// minLines is the shortest transmission the layout can describe: the header
// block and the trailer with an empty sample block. Anything shorter cannot
// even be addressed positionally; an empty sample block gets past this
// check and is rejected by the sample-count guard instead.
const minLines = lineFirstSample + trailerLines

// Decode maps the ordered lines of one transmission to a CaptureRecord.
// Any structural mismatch aborts the decode; no partial record is returned.
func Decode(lines []string) (*CaptureRecord, error) {
	if len(lines) < minLines {
		return nil, &StructuralError{
			Line:  len(lines),
			Field: "transmission",
			Msg:   fmt.Sprintf("only %d lines, need at least %d", len(lines), minLines),
		}
	}

	timeUnit, err := decodeTimeUnit(lines)
	if err != nil {
		return nil, err
	}
	timeScale, err := decodeTimeScale(lines, timeUnit)
	if err != nil {
		return nil, err
	}
	coupling, err := decodeCoupling(lines)
	if err != nil {
		return nil, err
	}
	voltScale, voltUnit, err := decodeVoltScale(lines)
	if err != nil {
		return nil, err
	}
	voltageStats, err := decodeStats(lines, lineVoltageStats, "voltage statistics")
	if err != nil {
		return nil, err
	}
	signalStats, err := decodeStats(lines, lineSignalStats, "signal statistics")
	if err != nil {
		return nil, err
	}
	samples, err := decodeSamples(lines)
	if err != nil {
		return nil, err
	}

	return &CaptureRecord{
		TimeScale:    timeScale,
		TimeUnit:     timeUnit,
		VoltScale:    voltScale,
		VoltUnit:     voltUnit,
		Coupling:     coupling,
		VoltageStats: voltageStats,
		SignalStats:  signalStats,
		Samples:      samples,
	}, nil
}

// decodeTimeUnit extracts the horizontal unit label: line 2, token 2, first
// two characters ("uS", "mS", or "S " for plain seconds).
func decodeTimeUnit(lines []string) (string, error) {
	tokens := strings.Fields(lines[lineTimeUnit])
	if len(tokens) < 3 {
		return "", &StructuralError{
			Line:  lineTimeUnit,
			Field: "time unit",
			Msg:   fmt.Sprintf("want at least 3 tokens, got %d in %q", len(tokens), lines[lineTimeUnit]),
		}
	}
	unit := tokens[2]
	if len(unit) > 2 {
		unit = unit[:2]
	}
	if !units.IsValidTimeUnit(unit) {
		return "", &StructuralError{
			Line:  lineTimeUnit,
			Field: "time unit",
			Msg:   fmt.Sprintf("unknown unit %q", unit),
		}
	}
	return unit, nil
}

// decodeTimeScale extracts the numeric time scale (line 3, last token) and
// normalizes it to seconds per division.
//
// The normalization is applied for every unit, not only "mS". The firmware's
// reference plotter converted only milliseconds and carried microsecond
// values through raw, then re-derived the unit downstream to compensate;
// converting uniformly here keeps SamplePeriod correct without that second
// lookup. The on-wire unit label is preserved in TimeUnit for display.
func decodeTimeScale(lines []string, timeUnit string) (float64, error) {
	tokens := strings.Fields(lines[lineTimeScale])
	if len(tokens) == 0 {
		return 0, &StructuralError{
			Line:  lineTimeScale,
			Field: "time scale",
			Msg:   "empty line, want trailing numeric token",
		}
	}
	raw := tokens[len(tokens)-1]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &StructuralError{
			Line:  lineTimeScale,
			Field: "time scale",
			Msg:   fmt.Sprintf("token %q is not a number", raw),
		}
	}
	divisor, ok := units.TimeUnitDivisor(timeUnit)
	if !ok {
		return 0, &StructuralError{
			Line:  lineTimeScale,
			Field: "time scale",
			Msg:   fmt.Sprintf("no conversion for unit %q", timeUnit),
		}
	}
	return value / divisor, nil
}

// decodeCoupling extracts the coupling mode: line 4, token 2, with the
// firmware's trailing comma stripped.
func decodeCoupling(lines []string) (string, error) {
	tokens := strings.Fields(lines[lineScale])
	if len(tokens) < 3 {
		return "", &StructuralError{
			Line:  lineScale,
			Field: "coupling",
			Msg:   fmt.Sprintf("want at least 3 tokens, got %d in %q", len(tokens), lines[lineScale]),
		}
	}
	return strings.ReplaceAll(tokens[2], ",", ""), nil
}

// decodeVoltScale extracts the vertical scale label (line 4, token 4) and
// infers the voltage unit from it.
func decodeVoltScale(lines []string) (scale, unit string, err error) {
	tokens := strings.Fields(lines[lineScale])
	if len(tokens) < 5 {
		return "", "", &StructuralError{
			Line:  lineScale,
			Field: "volt scale",
			Msg:   fmt.Sprintf("want at least 5 tokens, got %d in %q", len(tokens), lines[lineScale]),
		}
	}
	scale = tokens[4]
	return scale, units.InferVoltUnit(scale), nil
}

// decodeStats splits a statistics line ("Vmax:1.2V, Vmin:-1.2V, ...") into
// ordered key/value pairs.
func decodeStats(lines []string, lineIdx int, field string) ([]Stat, error) {
	entries := strings.Split(strings.TrimSpace(lines[lineIdx]), ", ")
	stats := make([]Stat, 0, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, ":")
		if !found {
			return nil, &StructuralError{
				Line:  lineIdx,
				Field: field,
				Msg:   fmt.Sprintf("entry %q has no ':' separator", entry),
			}
		}
		stats = append(stats, Stat{Key: key, Value: value})
	}
	return stats, nil
}

// decodeSamples parses the tab-delimited sample block (lines 12 through
// len-2) and enforces the exact sample count.
func decodeSamples(lines []string) ([]float64, error) {
	sampleLines := lines[lineFirstSample : len(lines)-trailerLines]
	samples := make([]float64, 0, len(sampleLines))
	for i, line := range sampleLines {
		_, raw, found := strings.Cut(line, "\t")
		if !found {
			return nil, &StructuralError{
				Line:  lineFirstSample + i,
				Field: "sample",
				Msg:   fmt.Sprintf("line %q has no tab separator", line),
			}
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &StructuralError{
				Line:  lineFirstSample + i,
				Field: "sample",
				Msg:   fmt.Sprintf("value %q is not a number", raw),
			}
		}
		samples = append(samples, value)
	}
	if len(samples) != SampleCount {
		return nil, &SampleCountError{Got: len(samples), Want: SampleCount}
	}
	return samples, nil
}
