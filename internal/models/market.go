package models

import "time"

// PriceData is a single-symbol quote snapshot.
type PriceData struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	CurrentPrice  float64 `json:"current_price"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PrevClose     float64 `json:"prev_close"`
	Volume        int64   `json:"volume"`
	Turnover      float64 `json:"turnover"`
	ChangePercent float64 `json:"change_percent"`
	Date          string  `json:"date"`
}

// TechnicalIndicators are derived from the recent price series.
type TechnicalIndicators struct {
	Symbol    string  `json:"symbol"`
	MA5       float64 `json:"ma5"`
	MA10      float64 `json:"ma10"`
	MA20      float64 `json:"ma20"`
	RSI       float64 `json:"rsi"`
	MACDDiff  float64 `json:"macd_dif"`
	MACDDea   float64 `json:"macd_dea"`
	MACDHist  float64 `json:"macd_hist"`
	BollUpper float64 `json:"boll_upper"`
	BollMid   float64 `json:"boll_mid"`
	BollLower float64 `json:"boll_lower"`
	VolumeMA  float64 `json:"volume_ma"`
}

// FinancialData is a compact fundamentals snapshot.
type FinancialData struct {
	Symbol      string  `json:"symbol"`
	PE          float64 `json:"pe"`
	PB          float64 `json:"pb"`
	ROE         float64 `json:"roe"`
	EPS         float64 `json:"eps"`
	Revenue     float64 `json:"revenue"`
	NetProfit   float64 `json:"net_profit"`
	DebtRatio   float64 `json:"debt_ratio"`
	GrossMargin float64 `json:"gross_margin"`
}

// NewsItem is one headline relevant to a symbol.
type NewsItem struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// SentimentData summarizes social discussion around a symbol.
type SentimentData struct {
	Symbol           string  `json:"symbol"`
	SentimentScore   float64 `json:"sentiment_score"`
	PositiveRatio    float64 `json:"positive_ratio"`
	NegativeRatio    float64 `json:"negative_ratio"`
	DiscussionVolume int64   `json:"discussion_volume"`
	AttentionIndex   float64 `json:"attention_index"`
}

// ComprehensiveData is the full per-symbol bundle the data collaborator
// returns. Absent sections stay nil; agents must tolerate missing fields.
type ComprehensiveData struct {
	Symbol     string               `json:"symbol"`
	Price      *PriceData           `json:"price_data,omitempty"`
	Indicators *TechnicalIndicators `json:"technical_indicators,omitempty"`
	Financial  *FinancialData       `json:"financial_data,omitempty"`
	News       []NewsItem           `json:"news_data,omitempty"`
	Sentiment  *SentimentData       `json:"sentiment_data,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}

// IndexQuote is one major index in the market overview.
type IndexQuote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	ChangePercent float64 `json:"change_percent"`
}

// MarketOverview is the whole-market snapshot.
type MarketOverview struct {
	MarketStatus  string       `json:"market_status"`
	MajorIndices  []IndexQuote `json:"major_indices"`
	TradingVolume float64      `json:"trading_volume"`
	Timestamp     time.Time    `json:"timestamp"`
}

// MarketSnapshot is what the data-collection stage stores on the session.
type MarketSnapshot struct {
	Symbol        string             `json:"symbol"`
	Comprehensive *ComprehensiveData `json:"comprehensive_data,omitempty"`
	Overview      *MarketOverview    `json:"market_overview,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
}

// PortfolioContext is the stub portfolio the trader conditions on.
type PortfolioContext struct {
	AvailableCash    float64            `json:"available_cash"`
	CurrentPositions map[string]float64 `json:"current_positions,omitempty"`
	RiskExposure     string             `json:"risk_exposure"`
	Concentration    string             `json:"concentration"`
}

// DefaultPortfolioContext mirrors the demo portfolio used by the UI layer.
func DefaultPortfolioContext() *PortfolioContext {
	return &PortfolioContext{
		AvailableCash: 1000000,
		RiskExposure:  "medium",
		Concentration: "low",
	}
}
