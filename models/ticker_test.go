package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestTickerRoundTrip(t *testing.T) {
	issuer := "GA7FCCMTTSUIC37PODEL6EOOSPDRILP6OQI5FWCWDDVDBLJV72W6RINZ"
	one, price := 1.0, 0.51
	bid, ask, spread := 0.50, 0.52, 0.0385
	doc := &Ticker{
		Meta: Meta{
			GeneratedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			Horizon: HorizonInfo{
				LatestLedger:      123456,
				NetworkPassphrase: "Public Global Stellar Network ; September 2015",
			},
			ExternalPrices: ExternalPrices{
				USDBTC:       100000.5,
				BTCXLM:       0.0000035,
				USDXLM:       0.350002,
				USDXLM24hAgo: 0.346537,
				USDXLMChange: 1.0,
			},
			DirectoryBuild: "abc123",
			ClientVersion:  42,
		},
		Assets: []*Asset{
			{ID: NativeAssetID, Code: "XLM", PriceXLM: &one, ActivityScore: 100},
			{ID: "MOBI-" + issuer, Code: "MOBI", Issuer: &issuer, Domain: "mobius.network",
				PriceXLM: &price, Volume24hXLM: 12000, NumBids: 20, NumAsks: 18,
				Spread: spread, ActivityScore: 7.341},
		},
		Pairs: map[string]*Pair{
			"MOBI/XLM": {Base: "MOBI-" + issuer, Counter: NativeAssetID,
				Bid: &bid, Ask: &ask, Spread: &spread, Price: &price, NumTrades24h: 30},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var parsed Ticker
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(doc, &parsed) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", doc, &parsed)
	}
	if parsed.Assets[0].ID != NativeAssetID || parsed.Assets[1].Code != "MOBI" {
		t.Fatal("asset ranking order not preserved")
	}
}

func TestFailedStatusRedactsSecrets(t *testing.T) {
	status := FailedStatus(
		errFromString("GET https://quotes.example/v1?key=sekret-key-123 returned 429"),
		"sekret-key-123", "",
	)
	if status.TickerState != "failed" || status.Error == nil {
		t.Fatalf("unexpected status: %+v", status)
	}
	if want := "GET https://quotes.example/v1?key=[redacted] returned 429"; *status.Error != want {
		t.Fatalf("secret not redacted: %q", *status.Error)
	}
}

type errFromString string

func (e errFromString) Error() string { return string(e) }
