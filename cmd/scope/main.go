// Command scope captures transmissions from a DSO-138 oscilloscope running
// the DLO-138 firmware, prints the decoded statistics, and renders the
// signal (and optionally its spectrum) as plot files.
//
// The outer loop mirrors the device workflow: acquire one transmission,
// decode it, present it, then go back to waiting for the next one. A fatal
// decode error aborts only the current cycle; the loop restarts unless
// -once is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/openbench/scope.capture/internal/acquire"
	"github.com/openbench/scope.capture/internal/frame"
	"github.com/openbench/scope.capture/internal/plotview"
	"github.com/openbench/scope.capture/internal/report"
	"github.com/openbench/scope.capture/internal/spectrum"
)

var (
	portPath    = flag.String("port", "/dev/ttyUSB0", "Serial port connected to the scope")
	baudRate    = flag.Int("baud", 115200, "Serial baud rate")
	devFixture  = flag.String("dev", "", "Replay a recorded dump file instead of opening a serial port")
	fftView     = flag.Bool("fft", false, "Compute and render the spectrum view")
	noStats     = flag.Bool("no-stats", false, "Suppress statistics text on the signal view")
	xmax        = flag.Float64("xmax", 4000, "Upper bound of the spectrum frequency axis in Hz")
	outDir      = flag.String("out", "captures", "Directory for rendered plot files")
	htmlOut     = flag.Bool("html", false, "Also render an interactive HTML page")
	once        = flag.Bool("once", false, "Exit after one capture cycle instead of restarting")
	waitTimeout = flag.Duration("wait-timeout", 0, "Give up waiting for the first byte after this long (0 waits forever)")
	retryPause  = flag.Duration("retry-pause", time.Second, "Pause between cycles after a failed capture")
)

func openPort() (acquire.ScopePort, error) {
	if *devFixture != "" {
		return acquire.OpenFixture(*devFixture)
	}
	return acquire.OpenPort(*portPath, acquire.PortOptions{BaudRate: *baudRate})
}

// outputPaths returns the rendered file names for one capture cycle,
// disambiguated by timestamp.
func outputPaths(dir string, ts time.Time) (signal, spec, html string) {
	stamp := ts.Format("20060102_150405")
	signal = filepath.Join(dir, fmt.Sprintf("signal_%s.png", stamp))
	spec = filepath.Join(dir, fmt.Sprintf("spectrum_%s.png", stamp))
	html = filepath.Join(dir, fmt.Sprintf("capture_%s.html", stamp))
	return signal, spec, html
}

// runCycle performs one acquire/decode/present pass. The port is opened
// fresh each cycle; the reader closes it when the cycle ends.
func runCycle(ctx context.Context) error {
	port, err := openPort()
	if err != nil {
		return err
	}

	reader := acquire.NewReader(port, acquire.Config{WaitTimeout: *waitTimeout})
	log.Printf("waiting for data")
	lines, err := reader.Acquire(ctx)
	if err != nil {
		return err
	}
	log.Printf("received %d bytes (%d lines)", reader.BytesReceived(), len(lines))

	rec, err := frame.Decode(lines)
	if err != nil {
		return fmt.Errorf("decode transmission: %w", err)
	}

	if err := report.Write(os.Stdout, rec); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	opts := plotview.Options{ShowStats: !*noStats, MaxFreq: *xmax}
	signalPath, spectrumPath, htmlPath := outputPaths(*outDir, time.Now())

	if err := plotview.RenderSignal(rec, opts, signalPath); err != nil {
		return err
	}
	log.Printf("saved %s", signalPath)

	var sp *spectrum.Spectrum
	if *fftView {
		sp, err = spectrum.Compute(rec.Samples, rec.SamplePeriod())
		if err != nil {
			return fmt.Errorf("compute spectrum: %w", err)
		}
		if err := plotview.RenderSpectrum(rec, sp, opts, spectrumPath); err != nil {
			return err
		}
		log.Printf("saved %s", spectrumPath)
	}

	if *htmlOut {
		if err := plotview.RenderHTML(rec, sp, opts, htmlPath); err != nil {
			return err
		}
		log.Printf("saved %s", htmlPath)
	}

	return nil
}

func main() {
	flag.Parse()

	if *portPath == "" && *devFixture == "" {
		log.Fatal("serial port is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		err := runCycle(ctx)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			log.Print("capture loop terminated")
			return
		}
		if err != nil {
			if *once {
				log.Fatalf("capture cycle failed: %v", err)
			}
			log.Printf("capture cycle failed: %v", err)
			time.Sleep(*retryPause)
			continue
		}
		if *once {
			return
		}
	}
}
