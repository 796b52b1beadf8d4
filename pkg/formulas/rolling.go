package formulas

import (
	"github.com/markcheno/go-talib"
)

// RollingMean returns the simple moving average of data over window values.
// The result has len(data)-window+1 entries, the first one covering
// data[0:window]. Returns nil when data is shorter than window.
func RollingMean(data []float64, window int) []float64 {
	if window < 1 || len(data) < window {
		return nil
	}
	if window == 1 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	// talib pads the first window-1 positions
	sma := talib.Sma(data, window)
	out := make([]float64, len(sma)-(window-1))
	copy(out, sma[window-1:])
	return out
}
