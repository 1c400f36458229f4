package markets

import (
	"fmt"
	"math"

	"github.com/celerfi/stellar-ticker-go/directory"
	"github.com/celerfi/stellar-ticker-go/models"
	"github.com/celerfi/stellar-ticker-go/utils"
	"github.com/sirupsen/logrus"
)

type outcome struct {
	metrics PairMetrics
	err     error
}

// ComputeAll runs the per-pair computation concurrently and collects the
// partial results. Failed pairs are logged and skipped unless their share of
// the batch exceeds tolerance, in which case the whole batch fails.
func ComputeAll(c *Computer, pairs map[string]directory.Pair, tolerance float64, log *logrus.Entry) ([]PairMetrics, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	results := make(chan outcome, len(pairs))
	for slug, p := range pairs {
		go func(slug string, p directory.Pair) {
			m, err := c.Compute(slug, p)
			results <- outcome{metrics: m, err: err}
		}(slug, p)
	}

	var metrics []PairMetrics
	var failed int
	for range pairs {
		out := <-results
		if out.err != nil {
			failed++
			log.WithError(out.err).Warn("pair processing failed")
			continue
		}
		metrics = append(metrics, out.metrics)
	}

	if rate := float64(failed) / float64(len(pairs)); failed > 0 && rate > tolerance {
		return nil, fmt.Errorf("%d of %d pairs failed (rate %.2f exceeds tolerance %.2f)",
			failed, len(pairs), rate, tolerance)
	}
	return metrics, nil
}

// Apply merges the partial results into the document. Single-writer: this is
// the only place pair results touch the ticker.
func Apply(ticker *models.Ticker, metrics []PairMetrics, external models.ExternalPrices) {
	byID := make(map[string]*models.Asset, len(ticker.Assets))
	for _, a := range ticker.Assets {
		byID[a.ID] = a
	}

	var nativeVolume float64
	for i := range metrics {
		m := &metrics[i]
		pair := m.Pair
		ticker.Pairs[m.Slug] = &pair

		nativeVolume += m.VolumeXLM

		if m.AssetID == "" {
			continue
		}
		asset, ok := byID[m.AssetID]
		if !ok {
			continue
		}
		asset.PriceXLM = m.PriceXLM
		asset.PriceUSD = m.PriceUSD
		asset.Change24hXLM = m.Change24hXLM
		asset.Change24hUSD = m.Change24hUSD
		asset.Volume24hXLM = m.VolumeXLM
		asset.Volume24hUSD = utils.RoundSig(m.VolumeXLM*external.USDXLM, 4)
		asset.Depth10XLM = m.DepthXLM
		asset.Depth10USD = math.Round(m.DepthXLM * external.USDXLM)
		asset.Spread = m.Spread
		asset.NumBids = m.NumBids
		asset.NumAsks = m.NumAsks
		asset.NumTrades24h = m.NumTrades
		asset.TradeBuckets = m.Buckets
	}

	for _, a := range ticker.Assets {
		if a.IsNative() {
			a.Volume24hXLM = utils.RoundSig(nativeVolume, 4)
			a.Volume24hUSD = utils.RoundSig(nativeVolume*external.USDXLM, 4)
		}
	}
}
