package markets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/celerfi/stellar-ticker-go/directory"
	"github.com/celerfi/stellar-ticker-go/models"
	"github.com/celerfi/stellar-ticker-go/utils"
	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
)

const (
	orderBookLimit   = 200
	bucketResolution = 15 * time.Minute
	bucketLimit      = 200
	minBuckets       = 7

	// A spread this wide with XLM on the counter leg means the ask tail is
	// too thin to trust; the bid becomes the price.
	wideSpread = 0.4
)

// HorizonClient is the slice of the horizon API the ticker reads.
// *horizonclient.Client satisfies it.
type HorizonClient interface {
	Root() (hProtocol.Root, error)
	OrderBook(request horizonclient.OrderBookRequest) (hProtocol.OrderBookSummary, error)
	TradeAggregations(request horizonclient.TradeAggregationRequest) (hProtocol.TradeAggregationsPage, error)
}

// PairMetrics is the immutable partial result of processing one pair. The
// reducer merges these into the ticker document after fan-in, so workers
// never share mutable state.
type PairMetrics struct {
	Slug string
	Pair models.Pair

	// Updates for the non-native leg; AssetID is empty when the pair has no
	// XLM leg or no tradable price yet.
	AssetID      string
	PriceXLM     *float64
	PriceUSD     *float64
	Change24hXLM *float64
	Change24hUSD *float64
	VolumeXLM    float64
	DepthXLM     float64
	Spread       float64
	NumBids      int
	NumAsks      int
	NumTrades    int64
	Buckets      int
}

// Computer derives market metrics for one pair at a time from horizon order
// books and trade aggregations.
type Computer struct {
	Client   HorizonClient
	External models.ExternalPrices
	Now      time.Time
}

func (c *Computer) Compute(slug string, p directory.Pair) (PairMetrics, error) {
	m := PairMetrics{
		Slug: slug,
		Pair: models.Pair{Base: p.Base, Counter: p.Counter},
	}

	baseNative := p.Base == models.NativeAssetID
	counterNative := p.Counter == models.NativeAssetID
	if !baseNative && !counterNative {
		// Recorded for completeness; no derived metrics without an XLM leg.
		return m, nil
	}

	book, err := c.Client.OrderBook(orderBookRequest(p))
	if err != nil {
		return m, fmt.Errorf("order book for %s: %w", slug, err)
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		// No tradable price yet. Not an error.
		return m, nil
	}

	bid := utils.RoundFixed(parsePrice(book.Bids[0].Price), 7)
	ask := utils.RoundFixed(parsePrice(book.Asks[0].Price), 7)
	spread := utils.RoundFixed(1-bid/ask, 4)
	price := utils.RoundFixed((bid+ask)/2, 7)
	if spread > wideSpread && counterNative {
		price = bid
	}

	m.Pair.Bid = &bid
	m.Pair.Ask = &ask
	m.Pair.Spread = &spread
	m.Pair.Price = &price

	depthCounter := bandDepth(book, price)
	m.Pair.Depth10Amount = &depthCounter

	aggs, err := c.Client.TradeAggregations(tradeAggregationRequest(p, c.Now))
	if err != nil {
		return m, fmt.Errorf("trade aggregations for %s: %w", slug, err)
	}
	records := aggs.Embedded.Records

	// Price of the non-native asset in XLM terms.
	priceXLM := price
	if baseNative {
		priceXLM = 1 / price
	}
	priceXLM = utils.RoundFixed(priceXLM, 7)
	priceUSD := utils.RoundFixed(priceXLM*c.External.USDXLM, 6)

	if baseNative {
		m.AssetID = p.Counter
	} else {
		m.AssetID = p.Base
	}
	m.PriceXLM = &priceXLM
	m.PriceUSD = &priceUSD
	m.Spread = spread
	m.NumBids = len(book.Bids)
	m.NumAsks = len(book.Asks)
	m.Buckets = len(records)

	if baseNative {
		m.DepthXLM = math.Round(depthCounter / price)
	} else {
		m.DepthXLM = depthCounter
	}

	if len(records) >= minBuckets {
		n := len(records)
		open := utils.Median3(
			parsePrice(records[n-1].Close),
			parsePrice(records[n-2].Close),
			parsePrice(records[n-3].Close),
		)
		if open > 0 {
			agoXLM := open
			if baseNative {
				agoXLM = 1 / open
			}
			changeXLM := utils.RoundFixed((priceXLM/agoXLM-1)*100, 2)
			m.Change24hXLM = &changeXLM

			if c.External.USDXLM24hAgo > 0 {
				agoUSD := agoXLM * c.External.USDXLM24hAgo
				nowUSD := priceXLM * c.External.USDXLM
				changeUSD := utils.RoundFixed((nowUSD/agoUSD-1)*100, 2)
				m.Change24hUSD = &changeUSD
			}
		}
	}

	var volBase, volNative float64
	var trades int64
	for _, rec := range records {
		volBase += parsePrice(rec.BaseVolume)
		if baseNative {
			volNative += parsePrice(rec.BaseVolume)
		} else {
			volNative += parsePrice(rec.CounterVolume)
		}
		trades += rec.TradeCount
	}
	pairVol := utils.RoundSig(volBase, 4)
	m.Pair.Volume24hBase = &pairVol
	m.Pair.NumTrades24h = trades
	m.VolumeXLM = utils.RoundSig(volNative, 4)
	m.NumTrades = trades

	return m, nil
}

// bandDepth sums order sizes within 10% of price on each side, in counter
// units, and keeps the smaller side. The minimum is what makes the figure
// resistant to one-sided walls.
func bandDepth(book hProtocol.OrderBookSummary, price float64) float64 {
	var bidSum, askSum float64
	for _, b := range book.Bids {
		if parsePrice(b.Price) >= price*0.9 {
			// Bid amounts arrive denominated in the counter asset.
			bidSum += parsePrice(b.Amount)
		}
	}
	for _, a := range book.Asks {
		if p := parsePrice(a.Price); p <= price*1.1 {
			// Ask amounts are in base units; convert through the level price.
			askSum += parsePrice(a.Amount) * p
		}
	}
	return math.Round(math.Min(bidSum, askSum))
}

func orderBookRequest(p directory.Pair) horizonclient.OrderBookRequest {
	sellType, sellCode, sellIssuer := assetParams(p.Base)
	buyType, buyCode, buyIssuer := assetParams(p.Counter)
	return horizonclient.OrderBookRequest{
		SellingAssetType:   sellType,
		SellingAssetCode:   sellCode,
		SellingAssetIssuer: sellIssuer,
		BuyingAssetType:    buyType,
		BuyingAssetCode:    buyCode,
		BuyingAssetIssuer:  buyIssuer,
		Limit:              orderBookLimit,
	}
}

func tradeAggregationRequest(p directory.Pair, now time.Time) horizonclient.TradeAggregationRequest {
	baseType, baseCode, baseIssuer := assetParams(p.Base)
	counterType, counterCode, counterIssuer := assetParams(p.Counter)
	return horizonclient.TradeAggregationRequest{
		StartTime:          now.Add(-24 * time.Hour),
		EndTime:            now,
		Resolution:         bucketResolution,
		BaseAssetType:      baseType,
		BaseAssetCode:      baseCode,
		BaseAssetIssuer:    baseIssuer,
		CounterAssetType:   counterType,
		CounterAssetCode:   counterCode,
		CounterAssetIssuer: counterIssuer,
		Order:              horizonclient.OrderDesc,
		Limit:              bucketLimit,
	}
}

func assetParams(id string) (horizonclient.AssetType, string, string) {
	if id == models.NativeAssetID {
		return horizonclient.AssetTypeNative, "", ""
	}
	code, issuer, _ := strings.Cut(id, "-")
	if len(code) <= 4 {
		return horizonclient.AssetType4, code, issuer
	}
	return horizonclient.AssetType12, code, issuer
}

func parsePrice(val string) float64 {
	if val == "" {
		return 0
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return f
}
