// Package units provides shared constants and conversions for the time and
// voltage units reported by the DLO-138 firmware.
package units

// Time unit labels as the firmware spells them (case significant).
const (
	MicroSeconds = "uS"
	MilliSeconds = "mS"
	Seconds      = "S"
)

// Voltage unit labels.
const (
	MilliVolts = "mV"
	Volts      = "V"
)

// ValidTimeUnits contains all time unit values the firmware can emit.
var ValidTimeUnits = []string{MicroSeconds, MilliSeconds, Seconds, "S "}

// IsValidTimeUnit checks if the given unit is one the firmware can emit.
// The plain-seconds label arrives padded to two characters ("S ").
func IsValidTimeUnit(unit string) bool {
	for _, validUnit := range ValidTimeUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// TimeUnitDivisor returns the divisor that converts a value in the given
// time unit to seconds. Unknown units return ok=false.
func TimeUnitDivisor(unit string) (divisor float64, ok bool) {
	switch unit {
	case MicroSeconds:
		return 1e6, true
	case MilliSeconds:
		return 1e3, true
	case Seconds, "S ":
		return 1, true
	default:
		return 0, false
	}
}

// voltMarkerOffset is the position of the millivolt marker counted from the
// end of the scale label. In a label like "200mV/div" the 'm' sits six
// characters before the end; the firmware's label layout keeps that offset
// stable across ranges.
const voltMarkerOffset = 6

// InferVoltUnit derives the voltage unit from a scale label such as
// "200mV/div" or "1.0V/div". The check is positional rather than a
// substring match because that is the contract the device's fixed-width
// label layout provides.
func InferVoltUnit(scaleLabel string) string {
	if len(scaleLabel) >= voltMarkerOffset && scaleLabel[len(scaleLabel)-voltMarkerOffset] == 'm' {
		return MilliVolts
	}
	return Volts
}
