package models

import "time"

// Ticker is the generated market snapshot. Assets are ordered by rank, so the
// slice order is part of the document contract. Pairs keys are directory slugs.
type Ticker struct {
	Meta   Meta             `json:"_meta"`
	Assets []*Asset         `json:"assets"`
	Pairs  map[string]*Pair `json:"pairs"`
}

type Meta struct {
	GeneratedAt    time.Time      `json:"ts"`
	Horizon        HorizonInfo    `json:"horizon"`
	ExternalPrices ExternalPrices `json:"externalPrices"`
	DirectoryBuild string         `json:"directoryBuild,omitempty"`
	ClientVersion  int            `json:"clientVersion"`
}

type HorizonInfo struct {
	LatestLedger      int32  `json:"latestLedger"`
	NetworkPassphrase string `json:"networkPassphrase"`
}

// ExternalPrices holds the reconciled reference prices fetched in phase 1.
// USD_XLM is always the rounded product of USD_BTC and BTC_XLM.
type ExternalPrices struct {
	USDBTC       float64 `json:"USD_BTC"`
	BTCXLM       float64 `json:"BTC_XLM"`
	USDXLM       float64 `json:"USD_XLM"`
	USDXLM24hAgo float64 `json:"USD_XLM_24hAgo"`
	USDXLMChange float64 `json:"USD_XLM_change"`
}

type Asset struct {
	ID      string  `json:"id"`
	Code    string  `json:"code"`
	Issuer  *string `json:"issuer"`
	Domain  string  `json:"domain,omitempty"`
	Website string  `json:"website,omitempty"`

	PriceXLM      *float64 `json:"price_XLM,omitempty"`
	PriceUSD      *float64 `json:"price_USD,omitempty"`
	Change24hXLM  *float64 `json:"change24h_XLM,omitempty"`
	Change24hUSD  *float64 `json:"change24h_USD,omitempty"`
	Volume24hXLM  float64  `json:"volume24h_XLM"`
	Volume24hUSD  float64  `json:"volume24h_USD"`
	Depth10XLM    float64  `json:"depth10_XLM"`
	Depth10USD    float64  `json:"depth10_USD"`
	NumTrades24h  int64    `json:"numTrades24h"`
	NumBids       int      `json:"numBids"`
	NumAsks       int      `json:"numAsks"`
	Spread        float64  `json:"spread"`
	TradeBuckets  int      `json:"tradeBuckets24h"`
	ActivityScore float64  `json:"activityScore"`
}

// IsNative reports whether this is the XLM entry.
func (a *Asset) IsNative() bool {
	return a.Issuer == nil
}

// Pair is one directory trading market. Derived metrics stay nil for pairs
// where neither leg is XLM and for pairs with an empty order-book side.
type Pair struct {
	Base          string   `json:"base"`
	Counter       string   `json:"counter"`
	Bid           *float64 `json:"bid,omitempty"`
	Ask           *float64 `json:"ask,omitempty"`
	Spread        *float64 `json:"spread,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Depth10Amount *float64 `json:"depth10Amount,omitempty"`
	Volume24hBase *float64 `json:"volume24h_base,omitempty"`
	NumTrades24h  int64    `json:"numTrades24h"`
}

// NativeAssetID identifies the XLM entry in directory documents and pair legs.
const NativeAssetID = "XLM-native"
