package dataflows

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

// MockGenerator produces deterministic synthetic data with the same schema
// shape as the online source. The same symbol always yields the same
// numbers, which keeps demo output and tests stable.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// seed derives a stable pseudo-random base in [0,1) from the symbol.
func seed(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return float64(h.Sum32()%10000) / 10000
}

// ComprehensiveData builds the full synthetic bundle for a symbol.
func (g *MockGenerator) ComprehensiveData(symbol string) *models.ComprehensiveData {
	s := seed(symbol)
	base := 5 + s*95 // price in [5,100)

	price := &models.PriceData{
		Symbol:        symbol,
		Name:          "模拟股份",
		CurrentPrice:  round2f(base),
		Open:          round2f(base * 0.995),
		High:          round2f(base * 1.02),
		Low:           round2f(base * 0.98),
		PrevClose:     round2f(base * 0.99),
		Volume:        int64(1e6 + s*9e6),
		Turnover:      round2f(base * (1e6 + s*9e6)),
		ChangePercent: round2f((s - 0.5) * 6),
		Date:          time.Now().Format("2006-01-02"),
	}

	closes := g.closeSeries(symbol, 30)
	indicators := ComputeIndicators(symbol, closes)

	financial := &models.FinancialData{
		Symbol:      symbol,
		PE:          round2f(8 + s*40),
		PB:          round2f(0.8 + s*6),
		ROE:         round2f(3 + s*22),
		EPS:         round2f(0.2 + s*3),
		Revenue:     round2f(1e9 + s*5e10),
		NetProfit:   round2f(1e8 + s*8e9),
		DebtRatio:   round2f(20 + s*55),
		GrossMargin: round2f(10 + s*50),
	}

	news := []models.NewsItem{
		{
			Title:       fmt.Sprintf("%s 发布季度业绩报告", symbol),
			Source:      "模拟财经",
			Summary:     "公司营收与净利润符合市场预期，管理层维持全年指引。",
			PublishedAt: time.Now().Add(-2 * time.Hour),
		},
		{
			Title:       fmt.Sprintf("机构调研 %s，关注行业景气度", symbol),
			Source:      "模拟证券报",
			Summary:     "多家机构就产能扩张与毛利率趋势进行交流。",
			PublishedAt: time.Now().Add(-26 * time.Hour),
		},
		{
			Title:       "行业政策面保持稳定，板块情绪回暖",
			Source:      "模拟新闻社",
			Summary:     "监管表态有助于缓解市场对行业不确定性的担忧。",
			PublishedAt: time.Now().Add(-48 * time.Hour),
		},
	}

	sentiment := &models.SentimentData{
		Symbol:           symbol,
		SentimentScore:   round2f(0.3 + s*0.4),
		PositiveRatio:    round2f(0.25 + s*0.5),
		NegativeRatio:    round2f(0.75 - s*0.5),
		DiscussionVolume: int64(1000 + s*50000),
		AttentionIndex:   round2f(30 + s*70),
	}

	return &models.ComprehensiveData{
		Symbol:     symbol,
		Price:      price,
		Indicators: indicators,
		Financial:  financial,
		News:       news,
		Sentiment:  sentiment,
		Timestamp:  time.Now(),
	}
}

// closeSeries generates a smooth synthetic close-price series.
func (g *MockGenerator) closeSeries(symbol string, n int) []float64 {
	s := seed(symbol)
	base := 5 + s*95
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		wave := math.Sin(float64(i)/4+s*10) * base * 0.03
		drift := (s - 0.5) * base * 0.002 * float64(i)
		closes[i] = round2f(base + wave + drift)
	}
	return closes
}

// MarketOverview builds a synthetic whole-market snapshot.
func (g *MockGenerator) MarketOverview() *models.MarketOverview {
	now := time.Now()
	day := float64(now.YearDay()%10) / 10

	return &models.MarketOverview{
		MarketStatus: marketStatus(now),
		MajorIndices: []models.IndexQuote{
			{Code: "000001", Name: "上证指数", Value: round2f(3000 + day*300), ChangePercent: round2f((day - 0.5) * 2)},
			{Code: "399001", Name: "深证成指", Value: round2f(9500 + day*800), ChangePercent: round2f((day - 0.4) * 2)},
			{Code: "399006", Name: "创业板指", Value: round2f(1800 + day*250), ChangePercent: round2f((day - 0.6) * 3)},
		},
		TradingVolume: round2f(6e11 + day*4e11),
		Timestamp:     now,
	}
}

func round2f(v float64) float64 {
	return math.Round(v*100) / 100
}
