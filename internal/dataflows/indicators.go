package dataflows

import (
	"math"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ComputeIndicators derives the technical-indicator snapshot from a close
// series ordered oldest first. Series shorter than the longest window fall
// back to whatever data is available.
func ComputeIndicators(symbol string, closes []float64) *models.TechnicalIndicators {
	if len(closes) == 0 {
		return &models.TechnicalIndicators{Symbol: symbol}
	}

	dif, dea := macd(closes)
	upper, mid, lower := bollinger(closes, 20)

	return &models.TechnicalIndicators{
		Symbol:    symbol,
		MA5:       sma(closes, 5),
		MA10:      sma(closes, 10),
		MA20:      sma(closes, 20),
		RSI:       rsi(closes, 14),
		MACDDiff:  dif,
		MACDDea:   dea,
		MACDHist:  dif - dea,
		BollUpper: upper,
		BollMid:   mid,
		BollLower: lower,
	}
}

func sma(closes []float64, window int) float64 {
	if window > len(closes) {
		window = len(closes)
	}
	if window == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return roundTo(sum/float64(window), 3)
}

func ema(closes []float64, window int) float64 {
	if len(closes) == 0 {
		return 0
	}
	k := 2.0 / float64(window+1)
	e := closes[0]
	for _, c := range closes[1:] {
		e = c*k + e*(1-k)
	}
	return e
}

func macd(closes []float64) (dif, dea float64) {
	dif = ema(closes, 12) - ema(closes, 26)
	// DEA approximated over the dif of expanding prefixes
	difs := make([]float64, 0, len(closes))
	for i := 1; i <= len(closes); i++ {
		difs = append(difs, ema(closes[:i], 12)-ema(closes[:i], 26))
	}
	dea = ema(difs, 9)
	return roundTo(dif, 4), roundTo(dea, 4)
}

func rsi(closes []float64, window int) float64 {
	if len(closes) < 2 {
		return 50
	}
	if window >= len(closes) {
		window = len(closes) - 1
	}
	var gains, losses float64
	start := len(closes) - window
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	if gains+losses == 0 {
		return 50
	}
	return roundTo(100*gains/(gains+losses), 2)
}

func bollinger(closes []float64, window int) (upper, mid, lower float64) {
	if window > len(closes) {
		window = len(closes)
	}
	if window == 0 {
		return 0, 0, 0
	}
	segment := closes[len(closes)-window:]
	mid = 0
	for _, c := range segment {
		mid += c
	}
	mid /= float64(window)

	variance := 0.0
	for _, c := range segment {
		variance += (c - mid) * (c - mid)
	}
	std := math.Sqrt(variance / float64(window))

	return roundTo(mid+2*std, 3), roundTo(mid, 3), roundTo(mid-2*std, 3)
}

func roundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
