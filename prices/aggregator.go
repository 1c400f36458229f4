package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/celerfi/stellar-ticker-go/models"
	"github.com/celerfi/stellar-ticker-go/utils"
	"github.com/sirupsen/logrus"
)

const (
	quoteMaxRetries = 10
	quoteRetryDelay = time.Second
)

// Aggregator reconciles XLM reference prices from independent external
// sources. Individual source failures only shrink the sample; the whole group
// failing is the only fatal case.
type Aggregator struct {
	USDBTCSources []Source
	BTCXLMSources []Source

	// Rate-limited quote API serving the XLM 24h percent change.
	QuoteURL string
	QuoteKey string

	HTTP       *http.Client
	MaxRetries int
	RetryDelay time.Duration

	log *logrus.Entry
}

func NewAggregator(quoteURL, quoteKey string, log *logrus.Entry) *Aggregator {
	return &Aggregator{
		USDBTCSources: defaultUSDBTCSources(),
		BTCXLMSources: defaultBTCXLMSources(),
		QuoteURL:      quoteURL,
		QuoteKey:      quoteKey,
		HTTP:          &http.Client{Timeout: 10 * time.Second},
		MaxRetries:    quoteMaxRetries,
		RetryDelay:    quoteRetryDelay,
		log:           log,
	}
}

// Fetch produces the reconciled ExternalPrices record.
func (a *Aggregator) Fetch(ctx context.Context) (models.ExternalPrices, error) {
	var prices models.ExternalPrices

	var wg sync.WaitGroup
	usdBTC := make([]*float64, len(a.USDBTCSources))
	btcXLM := make([]*float64, len(a.BTCXLMSources))
	for i, src := range a.USDBTCSources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			usdBTC[i] = a.fetchOne(ctx, src)
		}(i, src)
	}
	for i, src := range a.BTCXLMSources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			btcXLM[i] = a.fetchOne(ctx, src)
		}(i, src)
	}
	wg.Wait()

	meanUSDBTC, err := utils.MeanNonNil(usdBTC)
	if err != nil {
		return prices, fmt.Errorf("no USD/BTC source reachable: %w", err)
	}
	meanBTCXLM, err := utils.MeanNonNil(btcXLM)
	if err != nil {
		return prices, fmt.Errorf("no BTC/XLM source reachable: %w", err)
	}

	prices.USDBTC = utils.RoundFixed(meanUSDBTC, 3)
	prices.BTCXLM = utils.RoundFixed(meanBTCXLM, 8)
	prices.USDXLM = utils.RoundFixed(prices.USDBTC*prices.BTCXLM, 6)

	change, err := a.fetchChange24h(ctx)
	if err != nil {
		// Fail open: report 0% change rather than aborting the run.
		a.log.WithError(err).Warn("quote API unavailable, reporting flat 24h change")
		prices.USDXLM24hAgo = prices.USDXLM
		return prices, nil
	}

	prices.USDXLMChange = change
	if denom := 1 + change/100; denom != 0 {
		prices.USDXLM24hAgo = utils.RoundFixed(prices.USDXLM/denom, 6)
	} else {
		prices.USDXLM24hAgo = prices.USDXLM
	}
	return prices, nil
}

// fetchOne resolves to nil on any transport or parse failure.
func (a *Aggregator) fetchOne(ctx context.Context, src Source) *float64 {
	body, err := a.get(ctx, src.URL, nil)
	if err != nil {
		a.log.WithField("source", src.Name).WithError(err).Warn("price source unreachable")
		return nil
	}
	v, err := src.Extract(body)
	if err != nil {
		a.log.WithField("source", src.Name).WithError(err).Warn("price source unparsable")
		return nil
	}
	return &v
}

type quoteResponse struct {
	Data map[string]struct {
		Quote map[string]struct {
			PercentChange24h *float64 `json:"percent_change_24h"`
		} `json:"quote"`
	} `json:"data"`
}

// fetchChange24h queries the rate-limited quote API for the XLM 24h percent
// change. Responses missing the XLM entry are retried with a fixed delay; the
// retry budget exhausting is logged and the last response used as-is.
func (a *Aggregator) fetchChange24h(ctx context.Context) (float64, error) {
	if a.QuoteURL == "" {
		return 0, fmt.Errorf("quote API not configured")
	}

	headers := map[string]string{"X-CMC_PRO_API_KEY": a.QuoteKey}

	var lastErr error
	for attempt := 0; attempt <= a.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(a.RetryDelay):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}

		body, err := a.get(ctx, a.QuoteURL, headers)
		if err != nil {
			lastErr = err
			continue
		}

		var resp quoteResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			lastErr = err
			continue
		}

		if entry, ok := resp.Data["XLM"]; ok {
			if usd, ok := entry.Quote["USD"]; ok && usd.PercentChange24h != nil {
				return *usd.PercentChange24h, nil
			}
		}
		lastErr = fmt.Errorf("quote response missing XLM entry")
	}

	a.log.WithError(lastErr).WithField("attempts", a.MaxRetries+1).Warn("quote API retries exhausted")
	return 0, lastErr
}

func (a *Aggregator) get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
