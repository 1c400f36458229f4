package ticker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/celerfi/stellar-ticker-go/directory"
	"github.com/celerfi/stellar-ticker-go/markets"
	"github.com/celerfi/stellar-ticker-go/models"
	"github.com/celerfi/stellar-ticker-go/prices"
	"github.com/celerfi/stellar-ticker-go/scoring"
	"github.com/celerfi/stellar-ticker-go/utils"
	"github.com/sirupsen/logrus"
)

// Pipeline assembles one ticker document in four strictly ordered phases:
// external prices and horizon metadata, asset/pair enumeration, per-pair
// market metrics, activity scoring.
type Pipeline struct {
	Horizon   markets.HorizonClient
	Directory *directory.Client
	Prices    *prices.Aggregator
	ProbeURL  string

	Weights          scoring.Weights
	FailureTolerance float64

	Now func() time.Time
	Log *logrus.Entry
}

func (p *Pipeline) Run(ctx context.Context) (*models.Ticker, error) {
	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now()
	}

	// Phase 1: independent fetches run concurrently.
	var (
		wg        sync.WaitGroup
		external  models.ExternalPrices
		pricesErr error
		root      models.HorizonInfo
		rootErr   error
		version   = -1
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		external, pricesErr = p.Prices.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		r, err := p.Horizon.Root()
		if err != nil {
			rootErr = err
			return
		}
		root = models.HorizonInfo{
			LatestLedger:      r.HorizonSequence,
			NetworkPassphrase: r.NetworkPassphrase,
		}
	}()
	go func() {
		defer wg.Done()
		version = utils.ProbeClientVersion(ctx, p.ProbeURL)
	}()
	wg.Wait()

	if pricesErr != nil {
		return nil, fmt.Errorf("external price aggregation: %w", pricesErr)
	}
	if rootErr != nil {
		return nil, fmt.Errorf("horizon root: %w", rootErr)
	}
	p.Log.WithFields(logrus.Fields{
		"USD_XLM":      external.USDXLM,
		"latestLedger": root.LatestLedger,
	}).Info("phase 1 complete")

	// Phase 2: asset/pair universe.
	dir, err := p.Directory.Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("directory initialization: %w", err)
	}

	doc := &models.Ticker{
		Meta: models.Meta{
			GeneratedAt:    now,
			Horizon:        root,
			ExternalPrices: external,
			DirectoryBuild: dir.BuildID,
			ClientVersion:  version,
		},
		Assets: buildAssets(dir, external),
		Pairs:  make(map[string]*models.Pair, len(dir.Pairs)),
	}
	p.Log.WithFields(logrus.Fields{
		"assets": len(doc.Assets),
		"pairs":  len(dir.Pairs),
	}).Info("phase 2 complete")

	// Phase 3: per-pair metrics, fan-out then a single reducer.
	computer := &markets.Computer{Client: p.Horizon, External: external, Now: now}
	metrics, err := markets.ComputeAll(computer, dir.Pairs, p.FailureTolerance, p.Log)
	if err != nil {
		return nil, fmt.Errorf("pair metrics: %w", err)
	}
	markets.Apply(doc, metrics, external)
	p.Log.WithField("processed", len(metrics)).Info("phase 3 complete")

	// Phase 4: scoring and ranking.
	scoring.Rank(doc, p.Weights)
	p.Log.Info("phase 4 complete")

	return doc, nil
}

// buildAssets synthesizes the XLM entry first, then materializes the
// directory assets in a deterministic order.
func buildAssets(dir *directory.Directory, external models.ExternalPrices) []*models.Asset {
	one := 1.0
	usdXLM := external.USDXLM
	changeXLM := 0.0
	changeUSD := external.USDXLMChange
	native := &models.Asset{
		ID:           models.NativeAssetID,
		Code:         "XLM",
		Issuer:       nil,
		Domain:       "native",
		PriceXLM:     &one,
		PriceUSD:     &usdXLM,
		Change24hXLM: &changeXLM,
		Change24hUSD: &changeUSD,
	}

	ids := make([]string, 0, len(dir.Assets))
	for id := range dir.Assets {
		if id == models.NativeAssetID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	assets := make([]*models.Asset, 0, len(ids)+1)
	assets = append(assets, native)
	for _, id := range ids {
		entry := dir.Assets[id]
		issuer := entry.Issuer
		asset := &models.Asset{
			ID:     id,
			Code:   entry.Code,
			Issuer: &issuer,
			Domain: entry.Domain,
		}
		if anchor, ok := dir.Anchors[entry.Domain]; ok {
			asset.Website = anchor.Website
		}
		assets = append(assets, asset)
	}
	return assets
}
