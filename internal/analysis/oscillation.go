package analysis

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum returns the one-sided amplitude spectrum of a uniformly
// sampled signal. The mean is removed and a Hann window applied first.
func Spectrum(signal []float64, dt float64) (freqs, mags []float64) {
	n := len(signal)
	if n < 2 || !(dt > 0) {
		return nil, nil
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	w := window.Hann(n)
	buf := make([]float64, n)
	gain := 0.0
	for i, v := range signal {
		buf[i] = (v - mean) * w[i]
		gain += w[i]
	}
	if gain == 0 {
		gain = 1
	}

	spec := fft.FFTReal(buf)
	half := n/2 + 1
	freqs = make([]float64, half)
	mags = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		mags[k] = 2 * cmplx.Abs(spec[k]) / gain
	}
	return freqs, mags
}

type Oscillation struct {
	Frequency float64
	Period    float64
	Amplitude float64
	// Sustained is set when the dominant bin clears minAmplitude and
	// stands well above the median bin.
	Sustained bool
}

// DetectOscillation finds the dominant non-DC component of signal.
func DetectOscillation(signal []float64, dt, minAmplitude float64) Oscillation {
	freqs, mags := Spectrum(signal, dt)
	if len(mags) < 3 {
		return Oscillation{}
	}

	best := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[best] {
			best = k
		}
	}

	osc := Oscillation{
		Frequency: freqs[best],
		Amplitude: mags[best],
	}
	if osc.Frequency > 0 {
		osc.Period = 1 / osc.Frequency
	}
	osc.Sustained = osc.Amplitude >= minAmplitude && osc.Amplitude > 4*median(mags[1:])
	return osc
}

func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	if len(s) == 0 {
		return 0
	}
	return s[len(s)/2]
}

// Crossings returns the interpolated times at which signal changes sign.
func Crossings(times, signal []float64) []float64 {
	var out []float64
	for i := 1; i < len(signal) && i < len(times); i++ {
		prev, curr := signal[i-1], signal[i]
		if (prev < 0 && curr >= 0) || (prev > 0 && curr <= 0) {
			frac := prev / (prev - curr)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}
