package config

import (
	"os"

	"github.com/joho/godotenv"
)

var _ = godotenv.Load("dev.env")

// db variables
var (
	DB_USER     = os.Getenv("DB_USER")
	DB_PASSWORD = os.Getenv("DB_PASSWORD")
	DB_HOST     = os.Getenv("DB_HOST")
	DB_NAME     = os.Getenv("DB_NAME")
)

var (
	HORIZON_URL   = getenvDefault("HORIZON_URL", "https://horizon.stellar.org")
	DIRECTORY_URL = os.Getenv("DIRECTORY_URL")

	QUOTE_API_URL = os.Getenv("QUOTE_API_URL")
	QUOTE_API_KEY = os.Getenv("QUOTE_API_KEY")

	VERSION_PROBE_URL = os.Getenv("VERSION_PROBE_URL")

	OUTPUT_DIR = getenvDefault("OUTPUT_DIR", ".")

	TICKER_CRON = getenvDefault("TICKER_CRON", "@every 5m")
	LISTEN_ADDR = getenvDefault("LISTEN_ADDR", ":8080")
)

var DEPLOYMENT_ENVIRONMENT = os.Getenv("DEPLOYMENT_ENVIRONMENT")

// PAIR_FAILURE_TOLERANCE is the pair failure rate above which a run aborts.
// Zero (the default) keeps the strict all-or-nothing behavior.
var PAIR_FAILURE_TOLERANCE = getenvDefault("PAIR_FAILURE_TOLERANCE", "0")

// SCORING_CONFIG points at an optional YAML file overriding score weights.
var SCORING_CONFIG = os.Getenv("SCORING_CONFIG")

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
