// Package signals provides technical indicator calculations over price series.
//
// All functions take closes in chronological order (oldest first) and return a
// series of the same length. Positions inside an indicator's warm-up window
// are NaN so exporters can emit blank cells instead of fake zeros.
package signals

import "math"

// SMA calculates the Simple Moving Average series for the given period.
func SMA(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA calculates the Exponential Moving Average series, seeded with the SMA
// of the first period values.
func EMA(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	prev := sum / float64(period)
	out[period-1] = prev

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		prev = (closes[i]-prev)*multiplier + prev
		out[i] = prev
	}
	return out
}

// MACD calculates the MACD line, signal line and histogram series with the
// standard 12/26/9 periods.
func MACD(closes []float64) (macd, signal, histogram []float64) {
	const (
		fastPeriod   = 12
		slowPeriod   = 26
		signalPeriod = 9
	)

	fast := EMA(closes, fastPeriod)
	slow := EMA(closes, slowPeriod)

	macd = nanSeries(len(closes))
	for i := range closes {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			macd[i] = fast[i] - slow[i]
		}
	}

	// Signal is an EMA over the defined stretch of the MACD line.
	signal = nanSeries(len(closes))
	start := slowPeriod - 1
	if len(closes) > start {
		sub := EMA(macd[start:], signalPeriod)
		copy(signal[start:], sub)
	}

	histogram = nanSeries(len(closes))
	for i := range closes {
		if !math.IsNaN(macd[i]) && !math.IsNaN(signal[i]) {
			histogram[i] = macd[i] - signal[i]
		}
	}
	return macd, signal, histogram
}

// RSI calculates the Relative Strength Index series using Wilder smoothing.
func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// KDJ calculates the stochastic K, D and J series with 9/3/3 smoothing over
// the given high/low/close bars.
func KDJ(highs, lows, closes []float64) (k, d, j []float64) {
	const period = 9

	n := len(closes)
	k = nanSeries(n)
	d = nanSeries(n)
	j = nanSeries(n)
	if n < period || len(highs) != n || len(lows) != n {
		return k, d, j
	}

	prevK, prevD := 50.0, 50.0
	for i := period - 1; i < n; i++ {
		hi, lo := highs[i], lows[i]
		for w := i - period + 1; w <= i; w++ {
			hi = math.Max(hi, highs[w])
			lo = math.Min(lo, lows[w])
		}

		rsv := 50.0
		if hi != lo {
			rsv = (closes[i] - lo) / (hi - lo) * 100
		}
		prevK = prevK*2/3 + rsv/3
		prevD = prevD*2/3 + prevK/3
		k[i] = prevK
		d[i] = prevD
		j[i] = 3*prevK - 2*prevD
	}
	return k, d, j
}

// PctChange calculates the bar-over-bar percent change series.
func PctChange(closes []float64) []float64 {
	out := nanSeries(len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			out[i] = (closes[i] - closes[i-1]) / closes[i-1] * 100
		}
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
