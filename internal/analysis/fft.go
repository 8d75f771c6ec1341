package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is a radix-2 transform. Input whose length is not a power of two is
// zero-padded.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if p := nextPow2(n); p != n {
		padded := make([]float64, p)
		copy(padded, data)
		return FFT(padded)
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitude of the positive-frequency bins.
func PowerSpectrum(data []float64) []float64 {
	fft := FFT(data)
	ps := make([]float64, len(fft)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantPeriod finds the strongest non-DC component of a series sampled
// at rate samples per second and returns its period in seconds, or 0 if
// the series is flat or too short.
func DominantPeriod(series []float64, rate float64) float64 {
	if len(series) < 4 || rate <= 0 {
		return 0
	}
	var mean float64
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))
	centred := make([]float64, len(series))
	for i, v := range series {
		centred[i] = v - mean
	}

	ps := PowerSpectrum(centred)
	best, peak := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > peak {
			best, peak = k, ps[k]
		}
	}
	if best == 0 || peak < 1e-9 {
		return 0
	}
	n := nextPow2(len(series))
	return float64(n) / (float64(best) * rate)
}
