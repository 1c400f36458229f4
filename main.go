package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/celerfi/stellar-ticker-go/config"
	"github.com/celerfi/stellar-ticker-go/directory"
	"github.com/celerfi/stellar-ticker-go/handlers"
	"github.com/celerfi/stellar-ticker-go/models"
	"github.com/celerfi/stellar-ticker-go/prices"
	"github.com/celerfi/stellar-ticker-go/scoring"
	"github.com/celerfi/stellar-ticker-go/ticker"
	"github.com/celerfi/stellar-ticker-go/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stellar/go/clients/horizonclient"
)

const pipelineDeadline = 5 * time.Minute

func main() {
	log := newLogger()

	mode := "once"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	if utils.DBConfigured() {
		if err := utils.InitDB(context.Background()); err != nil {
			log.WithError(err).Fatal("database init failed")
		}
	}

	switch mode {
	case "once":
		runOnce(log)
	case "daemon":
		runDaemon(log)
	case "serve":
		serve(log)
	default:
		log.Fatalf("unknown mode %q (expected once, daemon or serve)", mode)
	}
}

func newLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
	return logger.WithField("app", "stellar-ticker")
}

func buildPipeline(log *logrus.Entry) (*ticker.Pipeline, error) {
	weights, err := scoring.LoadWeights(config.SCORING_CONFIG)
	if err != nil {
		return nil, err
	}

	tolerance, err := strconv.ParseFloat(config.PAIR_FAILURE_TOLERANCE, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAIR_FAILURE_TOLERANCE: %w", err)
	}

	horizon := &horizonclient.Client{
		HorizonURL: config.HORIZON_URL,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
	}

	return &ticker.Pipeline{
		Horizon:          horizon,
		Directory:        directory.NewClient(config.DIRECTORY_URL),
		Prices:           prices.NewAggregator(config.QUOTE_API_URL, config.QUOTE_API_KEY, log.WithField("component", "prices")),
		ProbeURL:         config.VERSION_PROBE_URL,
		Weights:          weights,
		FailureTolerance: tolerance,
		Log:              log.WithField("component", "pipeline"),
	}, nil
}

func runOnce(log *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineDeadline)
	defer cancel()

	pipeline, err := buildPipeline(log)
	if err != nil {
		log.WithError(err).Fatal("pipeline setup failed")
	}

	doc, err := pipeline.Run(ctx)
	if err != nil {
		status := models.FailedStatus(err, config.QUOTE_API_KEY, config.DB_PASSWORD)
		writeArtifact(log, "status.json", status)
		if dberr := utils.InsertRunStatus(ctx, status); dberr != nil {
			log.WithError(dberr).Error("failed to store run status")
		}
		log.WithError(err).Error("ticker generation failed")
		os.Exit(1)
	}

	writeArtifact(log, "ticker.json", doc)
	writeArtifact(log, "status.json", models.SuccessStatus())
	if err := utils.InsertTickerSnapshot(ctx, doc); err != nil {
		log.WithError(err).Error("failed to store ticker snapshot")
	}
	if err := utils.InsertRunStatus(ctx, models.SuccessStatus()); err != nil {
		log.WithError(err).Error("failed to store run status")
	}
	log.WithField("assets", len(doc.Assets)).Info("ticker generated")
}

func runDaemon(log *logrus.Entry) {
	c := cron.New()
	_, err := c.AddFunc(config.TICKER_CRON, func() { runOnceInDaemon(log) })
	if err != nil {
		log.WithError(err).Fatal("invalid TICKER_CRON expression")
	}
	log.WithField("schedule", config.TICKER_CRON).Info("daemon started")
	runOnceInDaemon(log)
	c.Run()
}

// runOnceInDaemon is runOnce without the process exit so a failed run does
// not kill the schedule.
func runOnceInDaemon(log *logrus.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("recovered from panic in scheduled run: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), pipelineDeadline)
	defer cancel()

	pipeline, err := buildPipeline(log)
	if err != nil {
		log.WithError(err).Error("pipeline setup failed")
		return
	}
	doc, err := pipeline.Run(ctx)
	if err != nil {
		status := models.FailedStatus(err, config.QUOTE_API_KEY, config.DB_PASSWORD)
		writeArtifact(log, "status.json", status)
		if dberr := utils.InsertRunStatus(ctx, status); dberr != nil {
			log.WithError(dberr).Error("failed to store run status")
		}
		log.WithError(err).Error("ticker generation failed")
		return
	}
	writeArtifact(log, "ticker.json", doc)
	writeArtifact(log, "status.json", models.SuccessStatus())
	if err := utils.InsertTickerSnapshot(ctx, doc); err != nil {
		log.WithError(err).Error("failed to store ticker snapshot")
	}
	if err := utils.InsertRunStatus(ctx, models.SuccessStatus()); err != nil {
		log.WithError(err).Error("failed to store run status")
	}
	log.WithField("assets", len(doc.Assets)).Info("ticker generated")
}

func serve(log *logrus.Entry) {
	router := handlers.NewRouter(log.WithField("component", "http"))
	log.WithField("addr", config.LISTEN_ADDR).Info("serving ticker artifacts")
	if err := http.ListenAndServe(config.LISTEN_ADDR, router); err != nil {
		log.WithError(err).Fatal("http server stopped")
	}
}

func writeArtifact(log *logrus.Entry, name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.WithError(err).Errorf("failed to marshal %s", name)
		return
	}
	path := filepath.Join(config.OUTPUT_DIR, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.WithError(err).Errorf("failed to write %s", path)
	}
}
