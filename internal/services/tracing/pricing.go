package tracing

import (
	"math"

	"github.com/ternarybob/supportdesk/internal/common"
)

// PriceTable maps model names to token prices. Unknown models are billed at the fallback model's price.
type PriceTable struct {
	prices   map[string]common.ModelPrice
	fallback string
}

// NewPriceTable creates a price table. An empty prices map uses common.DefaultPricing.
func NewPriceTable(prices map[string]common.ModelPrice, fallback string) *PriceTable {
	if len(prices) == 0 {
		prices = common.DefaultPricing()
	}
	return &PriceTable{prices: prices, fallback: fallback}
}

// Price returns the price entry for model, falling back to the designated default
func (p *PriceTable) Price(model string) common.ModelPrice {
	if price, ok := p.prices[model]; ok {
		return price
	}
	return p.prices[p.fallback]
}

// Cost returns the USD cost of a call rounded to 6 decimals
func (p *PriceTable) Cost(model string, inputTokens, outputTokens int) float64 {
	price := p.Price(model)
	cost := float64(inputTokens)/1_000_000*price.Input + float64(outputTokens)/1_000_000*price.Output
	return math.Round(cost*1e6) / 1e6
}
