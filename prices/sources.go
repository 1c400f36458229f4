package prices

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Source is one independent external price endpoint. Extract pulls a single
// numeric price out of the provider-specific response body.
type Source struct {
	Name    string
	URL     string
	Extract func(body []byte) (float64, error)
}

func extractCoinbase(body []byte) (float64, error) {
	var resp struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp.Data.Amount, 64)
}

func extractBitstamp(body []byte) (float64, error) {
	var resp struct {
		Last string `json:"last"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp.Last, 64)
}

func extractKraken(body []byte) (float64, error) {
	var resp struct {
		Result map[string]struct {
			C []string `json:"c"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	for _, pair := range resp.Result {
		if len(pair.C) == 0 {
			break
		}
		return strconv.ParseFloat(pair.C[0], 64)
	}
	return 0, fmt.Errorf("no ticker entry in kraken response")
}

func extractBinance(body []byte) (float64, error) {
	var resp struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(resp.Price, 64)
}

// Bitfinex tickers are flat arrays; index 6 is the last traded price.
func extractBitfinex(body []byte) (float64, error) {
	var resp []float64
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	if len(resp) < 7 {
		return 0, fmt.Errorf("short bitfinex ticker array")
	}
	return resp[6], nil
}

func defaultUSDBTCSources() []Source {
	return []Source{
		{Name: "coinbase", URL: "https://api.coinbase.com/v2/prices/spot?currency=USD", Extract: extractCoinbase},
		{Name: "bitstamp", URL: "https://www.bitstamp.net/api/v2/ticker/btcusd/", Extract: extractBitstamp},
		{Name: "kraken", URL: "https://api.kraken.com/0/public/Ticker?pair=XBTUSD", Extract: extractKraken},
	}
}

func defaultBTCXLMSources() []Source {
	return []Source{
		{Name: "binance", URL: "https://api.binance.com/api/v3/ticker/price?symbol=XLMBTC", Extract: extractBinance},
		{Name: "kraken", URL: "https://api.kraken.com/0/public/Ticker?pair=XLMXBT", Extract: extractKraken},
		{Name: "bitfinex", URL: "https://api-pub.bitfinex.com/v2/ticker/tXLMBTC", Extract: extractBitfinex},
	}
}
