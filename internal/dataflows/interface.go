// Package dataflows is the market-data collaborator consumed by the
// orchestration graph. The exported contract is schema-stable: when the
// online source is unavailable the same shapes are filled with synthetic
// data, so data collection stays non-fatal in demo/offline mode.
package dataflows

import (
	"context"
	"errors"
	"time"

	"github.com/laochendeai/tradingagents-go/internal/config"
	"github.com/laochendeai/tradingagents-go/internal/log"
	"github.com/laochendeai/tradingagents-go/internal/models"
)

// ErrDataUnavailable reports that neither the online source nor the mock
// generator could produce data (the mock never fails in practice; the
// sentinel exists for test doubles).
var ErrDataUnavailable = errors.New("market data unavailable")

// Interface is the data collaborator contract the graph depends on.
type Interface interface {
	GetComprehensiveData(ctx context.Context, symbol string) (*models.ComprehensiveData, error)
	GetMarketOverview(ctx context.Context) (*models.MarketOverview, error)
}

// DataInterface serves comprehensive data from the online client when
// configured, falling back to the synthetic generator on any error.
type DataInterface struct {
	client *Client // nil in offline mode
	mock   *MockGenerator
	logger log.Logger
}

var _ Interface = (*DataInterface)(nil)

// New builds the data collaborator. Online mode needs no credentials; the
// quote endpoints are public. cache may be nil.
func New(cfg *config.Config, cache Cache, logger log.Logger) *DataInterface {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	d := &DataInterface{
		mock:   NewMockGenerator(),
		logger: logger,
	}
	if cfg.OnlineData {
		d.client = NewClient(cache)
	}
	return d
}

// GetComprehensiveData returns the full per-symbol bundle.
func (d *DataInterface) GetComprehensiveData(ctx context.Context, symbol string) (*models.ComprehensiveData, error) {
	if d.client != nil {
		data, err := d.client.GetComprehensiveData(ctx, symbol)
		if err == nil {
			return data, nil
		}
		d.logger.Warn("dataflows: online fetch for %s failed, using mock data: %v", symbol, err)
	}
	return d.mock.ComprehensiveData(symbol), nil
}

// GetMarketOverview returns the whole-market snapshot.
func (d *DataInterface) GetMarketOverview(ctx context.Context) (*models.MarketOverview, error) {
	if d.client != nil {
		overview, err := d.client.GetMarketOverview(ctx)
		if err == nil {
			return overview, nil
		}
		d.logger.Warn("dataflows: market overview fetch failed, using mock data: %v", err)
	}
	return d.mock.MarketOverview(), nil
}

// marketStatus reports whether the A-share market is currently trading.
func marketStatus(now time.Time) string {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "休市"
	}
	minutes := now.Hour()*60 + now.Minute()
	switch {
	case minutes >= 9*60+30 && minutes <= 11*60+30:
		return "交易中"
	case minutes >= 13*60 && minutes <= 15*60:
		return "交易中"
	default:
		return "休市"
	}
}
