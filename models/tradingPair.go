package models

// TradingPair identifies a market by its base and quote assets.
// The exchange identifies the pair by the concatenated symbol.
type TradingPair struct {
	BaseAsset  string
	QuoteAsset string
}

func NewTradingPair(base, quote string) TradingPair {
	return TradingPair{BaseAsset: base, QuoteAsset: quote}
}

// Symbol returns the exchange symbol, e.g. "BTCUSDT" for BTC/USDT.
func (p TradingPair) Symbol() string {
	return p.BaseAsset + p.QuoteAsset
}
