// Package report prints the human-readable summary of one capture: the
// device settings line followed by the voltage and signal statistics in
// transmission order.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/openbench/scope.capture/internal/frame"
)

const rule = "------------------------------------------------------------"

// Write renders the capture summary to w.
func Write(w io.Writer, rec *frame.CaptureRecord) error {
	if _, err := fmt.Fprintln(w, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Settings: %s coupling, resolution: %s, units: %s, %s\n",
		rec.Coupling, rec.VoltScale, rec.VoltUnit, strings.TrimSpace(rec.TimeUnit)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, stat := range rec.VoltageStats {
		fmt.Fprintf(tw, "%s:\t%s %s\n", stat.Key, stat.Value, rec.VoltUnit)
	}
	for _, stat := range rec.SignalStats {
		if stat.Key == "Freq" {
			fmt.Fprintf(tw, "%s:\t%s Hz\n", stat.Key, stat.Value)
		} else {
			fmt.Fprintf(tw, "%s:\t%s\n", stat.Key, stat.Value)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(w, rule)
	return err
}
