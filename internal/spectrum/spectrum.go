// Package spectrum derives a single-sided amplitude spectrum from one
// capture's sample block.
package spectrum

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum holds the frequency-domain view of one capture. Freqs and Mags
// are parallel slices covering the positive-frequency bins with the DC bin
// dropped; the Nyquist bin is excluded as well.
type Spectrum struct {
	Freqs []float64 // Hz
	Mags  []float64 // amplitude, in the capture's voltage unit
}

// Compute runs a real FFT over the samples and scales the coefficient
// magnitudes by 2/N so a pure sine of amplitude A shows a peak of height A.
// samplePeriod is the spacing between samples in seconds. No windowing is
// applied.
func Compute(samples []float64, samplePeriod float64) (*Spectrum, error) {
	n := len(samples)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", n)
	}
	if samplePeriod <= 0 {
		return nil, fmt.Errorf("sample period must be positive, got %g", samplePeriod)
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, samples)

	// Bins 1..n/2-1: positive frequencies without DC and Nyquist.
	bins := n/2 - 1
	sp := &Spectrum{
		Freqs: make([]float64, 0, bins),
		Mags:  make([]float64, 0, bins),
	}
	scale := 2.0 / float64(n)
	for i := 1; i < n/2; i++ {
		// FFT.Freq is in cycles per sample; divide by the sample period
		// for Hz.
		sp.Freqs = append(sp.Freqs, fft.Freq(i)/samplePeriod)
		sp.Mags = append(sp.Mags, scale*cmplx.Abs(coeffs[i]))
	}
	return sp, nil
}

// Peak returns the frequency and magnitude of the strongest bin.
func (s *Spectrum) Peak() (freq, mag float64) {
	for i, m := range s.Mags {
		if m > mag {
			mag = m
			freq = s.Freqs[i]
		}
	}
	return freq, mag
}
