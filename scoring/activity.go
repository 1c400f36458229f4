package scoring

import (
	"math"
	"sort"

	"github.com/celerfi/stellar-ticker-go/models"
	"github.com/celerfi/stellar-ticker-go/utils"
)

// nativeScore pins XLM to the top of every ranking.
const nativeScore = 100.0

// Score computes the composite activity score for one non-native asset.
// Pure function of the already-computed metrics; assets without a price
// always score zero.
func Score(a *models.Asset, w Weights) float64 {
	if a.PriceXLM == nil {
		return 0
	}

	spreadPenalty := math.Pow(1-a.Spread, w.SpreadExponent)

	numOffersScore := float64(a.NumBids+a.NumAsks) / 20
	activityBonus := math.Min(12, float64(a.TradeBuckets)) / 24
	nonzeroVolumeBonus := math.Min(1, a.Volume24hUSD/100)
	bonuses := w.BonusWeight * (numOffersScore + activityBonus + nonzeroVolumeBonus)

	depthScore := w.DepthWeight * (0.5*(math.Log2(2+a.Depth10USD)-1) + math.Min(10, a.Depth10USD/10000))
	volumeScore := w.VolumeWeight * (log4(4+a.Volume24hUSD) - 1)
	numTradesScore := w.TradesWeight * (log4(4+float64(a.NumTrades24h)) - 1 + math.Min(7, float64(a.TradeBuckets)/8))

	return spreadPenalty * (bonuses + depthScore + volumeScore + numTradesScore)
}

// Rank scores every asset and sorts the slice by descending score. The sort
// is stable, so exact ties keep their directory enumeration order. Scores are
// rounded to 3 decimals after sorting.
func Rank(ticker *models.Ticker, w Weights) {
	for _, a := range ticker.Assets {
		if a.IsNative() {
			a.ActivityScore = nativeScore
			continue
		}
		a.ActivityScore = Score(a, w)
	}

	sort.SliceStable(ticker.Assets, func(i, j int) bool {
		return ticker.Assets[i].ActivityScore > ticker.Assets[j].ActivityScore
	})

	for _, a := range ticker.Assets {
		a.ActivityScore = utils.RoundFixed(a.ActivityScore, 3)
	}
}

func log4(x float64) float64 {
	return math.Log(x) / math.Log(4)
}
