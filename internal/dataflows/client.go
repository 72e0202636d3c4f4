package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/laochendeai/tradingagents-go/internal/models"
)

const (
	quoteBaseURL = "https://push2.eastmoney.com/api/qt"
	newsBaseURL  = "https://so.eastmoney.com/news/s"

	quoteTTL    = 1 * time.Minute
	klineTTL    = 10 * time.Minute
	newsTTL     = 30 * time.Minute
	overviewTTL = 1 * time.Minute
)

// Client fetches A-share quotes, klines and headlines from the public
// eastmoney endpoints. All responses go through the cache when one is set.
type Client struct {
	http  *resty.Client
	cache Cache
}

func NewClient(cache Cache) *Client {
	http := resty.New().
		SetBaseURL(quoteBaseURL).
		SetTimeout(15 * time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; tradingagents-go/1.0)")

	return &Client{http: http, cache: cache}
}

// secID maps a bare symbol to eastmoney's market-prefixed id.
// Shanghai symbols start with 6, everything else is treated as Shenzhen.
func secID(symbol string) string {
	if strings.HasPrefix(symbol, "6") {
		return "1." + symbol
	}
	return "0." + symbol
}

type quotePayload struct {
	Data struct {
		Name      string `json:"f58"`
		Price     int64  `json:"f43"`
		Open      int64  `json:"f46"`
		High      int64  `json:"f44"`
		Low       int64  `json:"f45"`
		PrevClose int64  `json:"f60"`
		Volume    int64  `json:"f47"`
		Turnover  int64  `json:"f48"`
		PE        int64  `json:"f162"`
		PB        int64  `json:"f167"`
	} `json:"data"`
}

// priceOf converts eastmoney's scaled integer quotes (price*100) using
// decimal arithmetic so repeated conversions stay exact.
func priceOf(scaled int64) float64 {
	v, _ := decimal.NewFromInt(scaled).Div(decimal.NewFromInt(100)).Float64()
	return v
}

// GetComprehensiveData assembles the full per-symbol bundle from the quote,
// kline and news endpoints. A quote failure fails the call; missing news or
// indicators only leave their sections nil.
func (c *Client) GetComprehensiveData(ctx context.Context, symbol string) (*models.ComprehensiveData, error) {
	price, financial, err := c.getQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	data := &models.ComprehensiveData{
		Symbol:    symbol,
		Price:     price,
		Financial: financial,
		Timestamp: time.Now(),
	}

	if closes, err := c.getKline(ctx, symbol, 30); err == nil && len(closes) > 0 {
		data.Indicators = ComputeIndicators(symbol, closes)
	}
	if news, err := c.getNews(ctx, symbol); err == nil {
		data.News = news
	}

	return data, nil
}

func (c *Client) getQuote(ctx context.Context, symbol string) (*models.PriceData, *models.FinancialData, error) {
	body, err := c.fetch(ctx, "quote:"+symbol, quoteTTL, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"secid":  secID(symbol),
				"fields": "f43,f44,f45,f46,f47,f48,f58,f60,f162,f167",
			}).
			Get("/stock/get")
	})
	if err != nil {
		return nil, nil, err
	}

	var payload quotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("decode quote for %s: %w", symbol, err)
	}
	if payload.Data.Price == 0 {
		return nil, nil, fmt.Errorf("quote for %s: %w", symbol, ErrDataUnavailable)
	}

	current := priceOf(payload.Data.Price)
	prev := priceOf(payload.Data.PrevClose)
	change := 0.0
	if prev > 0 {
		change, _ = decimal.NewFromFloat(current).
			Sub(decimal.NewFromFloat(prev)).
			Div(decimal.NewFromFloat(prev)).
			Mul(decimal.NewFromInt(100)).
			Round(2).Float64()
	}

	price := &models.PriceData{
		Symbol:        symbol,
		Name:          payload.Data.Name,
		CurrentPrice:  current,
		Open:          priceOf(payload.Data.Open),
		High:          priceOf(payload.Data.High),
		Low:           priceOf(payload.Data.Low),
		PrevClose:     prev,
		Volume:        payload.Data.Volume,
		Turnover:      float64(payload.Data.Turnover),
		ChangePercent: change,
		Date:          time.Now().Format("2006-01-02"),
	}

	financial := &models.FinancialData{
		Symbol: symbol,
		PE:     priceOf(payload.Data.PE),
		PB:     priceOf(payload.Data.PB),
	}

	return price, financial, nil
}

type klinePayload struct {
	Data struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

func (c *Client) getKline(ctx context.Context, symbol string, count int) ([]float64, error) {
	body, err := c.fetch(ctx, fmt.Sprintf("kline:%s:%d", symbol, count), klineTTL, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"secid":  secID(symbol),
				"klt":    "101", // daily
				"fqt":    "1",
				"lmt":    fmt.Sprintf("%d", count),
				"fields": "f51,f53",
			}).
			Get("/stock/kline/get")
	})
	if err != nil {
		return nil, err
	}

	var payload klinePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode kline for %s: %w", symbol, err)
	}

	closes := make([]float64, 0, len(payload.Data.Klines))
	for _, line := range payload.Data.Klines {
		// each kline is "date,close"
		_, closeStr, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		v, err := decimal.NewFromString(closeStr)
		if err != nil {
			continue
		}
		f, _ := v.Float64()
		closes = append(closes, f)
	}
	return closes, nil
}

func (c *Client) getNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	body, err := c.fetch(ctx, "news:"+symbol, newsTTL, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParam("keyword", symbol).
			Get(newsBaseURL)
	})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse news page for %s: %w", symbol, err)
	}

	var items []models.NewsItem
	doc.Find("div.news-item").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find(".news-item-t").Text())
		if title == "" {
			return true
		}
		items = append(items, models.NewsItem{
			Title:       title,
			Source:      strings.TrimSpace(sel.Find(".news-item-source").Text()),
			Summary:     strings.TrimSpace(sel.Find(".news-item-c").Text()),
			URL:         sel.Find("a").AttrOr("href", ""),
			PublishedAt: time.Now(),
		})
		return len(items) < 10
	})
	return items, nil
}

type overviewPayload struct {
	Data struct {
		Diff []struct {
			Code  string `json:"f12"`
			Name  string `json:"f14"`
			Value int64  `json:"f2"`
			// change percent scaled by 100
			Change int64 `json:"f3"`
		} `json:"diff"`
	} `json:"data"`
}

// GetMarketOverview fetches the major index quotes.
func (c *Client) GetMarketOverview(ctx context.Context) (*models.MarketOverview, error) {
	body, err := c.fetch(ctx, "overview", overviewTTL, func() (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"secids": "1.000001,0.399001,0.399006",
				"fields": "f2,f3,f12,f14",
			}).
			Get("/ulist.np/get")
	})
	if err != nil {
		return nil, err
	}

	var payload overviewPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode market overview: %w", err)
	}
	if len(payload.Data.Diff) == 0 {
		return nil, fmt.Errorf("market overview: %w", ErrDataUnavailable)
	}

	now := time.Now()
	overview := &models.MarketOverview{
		MarketStatus: marketStatus(now),
		Timestamp:    now,
	}
	for _, idx := range payload.Data.Diff {
		overview.MajorIndices = append(overview.MajorIndices, models.IndexQuote{
			Code:          idx.Code,
			Name:          idx.Name,
			Value:         priceOf(idx.Value),
			ChangePercent: priceOf(idx.Change),
		})
	}
	return overview, nil
}

// fetch runs one request through the cache.
func (c *Client) fetch(ctx context.Context, key string, ttl time.Duration, do func() (*resty.Response, error)) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			return body, nil
		}
	}

	resp, err := do()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("http %d from %s", resp.StatusCode(), resp.Request.URL)
	}

	body := resp.Body()
	if c.cache != nil {
		c.cache.Set(ctx, key, body, ttl)
	}
	return body, nil
}
