package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/celerfi/stellar-ticker-go/models"
)

func pricedAsset(id string, spread float64) *models.Asset {
	price := 1.0
	issuer := "GAISSUER"
	return &models.Asset{
		ID:           id,
		Code:         "TOK",
		Issuer:       &issuer,
		PriceXLM:     &price,
		Spread:       spread,
		NumBids:      20,
		NumAsks:      20,
		TradeBuckets: 96,
		Volume24hUSD: 50000,
		Depth10USD:   20000,
		NumTrades24h: 1000,
	}
}

func TestSpreadPenalty(t *testing.T) {
	w := DefaultWeights()

	zero := Score(pricedAsset("a", 0), w)
	mid := Score(pricedAsset("a", 0.5), w)
	wide := Score(pricedAsset("a", 0.9), w)
	full := Score(pricedAsset("a", 1), w)

	if full != 0 {
		t.Fatalf("spread 1 must collapse the score to 0, got %v", full)
	}
	if !(zero > mid && mid > wide && wide > full) {
		t.Fatalf("penalty not monotonically decreasing: %v %v %v %v", zero, mid, wide, full)
	}
}

func TestUnpricedAssetScoresZero(t *testing.T) {
	a := pricedAsset("a", 0)
	a.PriceXLM = nil
	if got := Score(a, DefaultWeights()); got != 0 {
		t.Fatalf("unpriced asset: got %v, want 0", got)
	}
}

func TestRankNativeAlwaysFirst(t *testing.T) {
	issuer := "GAISSUER"
	doc := &models.Ticker{
		Assets: []*models.Asset{
			{ID: models.NativeAssetID, Code: "XLM"},
			pricedAsset("HOT-"+issuer, 0),
		},
		Pairs: map[string]*models.Pair{},
	}

	Rank(doc, DefaultWeights())

	if doc.Assets[0].ID != models.NativeAssetID {
		t.Fatalf("native asset not ranked first: %q", doc.Assets[0].ID)
	}
	if doc.Assets[0].ActivityScore != 100 {
		t.Fatalf("native score: got %v, want exactly 100", doc.Assets[0].ActivityScore)
	}
	if doc.Assets[1].ActivityScore <= 0 {
		t.Fatalf("active asset should score above zero, got %v", doc.Assets[1].ActivityScore)
	}
}

func TestRankTiesKeepEnumerationOrder(t *testing.T) {
	issuer := "GAISSUER"
	first := &models.Asset{ID: "AAA-" + issuer, Code: "AAA", Issuer: &issuer}
	second := &models.Asset{ID: "BBB-" + issuer, Code: "BBB", Issuer: &issuer}
	doc := &models.Ticker{
		Assets: []*models.Asset{
			{ID: models.NativeAssetID, Code: "XLM"},
			first,
			second,
		},
		Pairs: map[string]*models.Pair{},
	}

	Rank(doc, DefaultWeights())

	// Both unpriced assets tie at 0 and must keep their original order.
	if doc.Assets[1] != first || doc.Assets[2] != second {
		t.Fatalf("tie order not stable: %q before %q", doc.Assets[1].ID, doc.Assets[2].ID)
	}
	if doc.Assets[1].ActivityScore != 0 || doc.Assets[2].ActivityScore != 0 {
		t.Fatalf("unpriced assets must score 0")
	}
}

func TestLoadWeights(t *testing.T) {
	w, err := LoadWeights("")
	if err != nil {
		t.Fatalf("empty path must yield defaults: %v", err)
	}
	if w != DefaultWeights() {
		t.Fatalf("got %+v, want defaults", w)
	}

	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("spread_exponent: 2\nvolume_weight: 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err = LoadWeights(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.SpreadExponent != 2 || w.VolumeWeight != 0.5 {
		t.Fatalf("overrides not applied: %+v", w)
	}
	if w.DepthWeight != 1 {
		t.Fatalf("unset fields must keep defaults: %+v", w)
	}
}
