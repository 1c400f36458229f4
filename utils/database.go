package utils

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/celerfi/stellar-ticker-go/config"
	"github.com/celerfi/stellar-ticker-go/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var db *pgxpool.Pool

// DBConfigured reports whether database credentials are present in the env.
func DBConfigured() bool {
	return config.DB_HOST != ""
}

func InitDB(ctx context.Context) error {
	databaseUrl := fmt.Sprintf("postgres://%s:%s@%s:5432/%s", config.DB_USER, config.DB_PASSWORD, config.DB_HOST, config.DB_NAME)

	poolConfig, err := pgxpool.ParseConfig(databaseUrl)
	if err != nil {
		return fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 5
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("unable to create connection pool: %w", err)
	}

	db = dbPool
	return nil
}

// InsertTickerSnapshot stores the full generated document plus the metadata
// columns the serve endpoints query on.
func InsertTickerSnapshot(ctx context.Context, ticker *models.Ticker) error {
	if db == nil {
		return nil
	}

	document, err := json.Marshal(ticker)
	if err != nil {
		return fmt.Errorf("failed to marshal ticker document: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in InsertTickerSnapshot, rolling back: %v\n", r)
			tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO ticker_snapshots (generated_at, latest_ledger, directory_build, num_assets, document)
		 VALUES ($1, $2, $3, $4, $5)`,
		ticker.Meta.GeneratedAt, ticker.Meta.Horizon.LatestLedger,
		ticker.Meta.DirectoryBuild, len(ticker.Assets), document,
	)
	if err != nil {
		tx.Rollback(ctx)
		return fmt.Errorf("error inserting ticker snapshot: %w", err)
	}
	return tx.Commit(ctx)
}

func InsertRunStatus(ctx context.Context, status models.RunStatus) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(ctx,
		`INSERT INTO run_status (ticker_state, error) VALUES ($1, $2)`,
		status.TickerState, status.Error,
	)
	if err != nil {
		return fmt.Errorf("error inserting run status: %w", err)
	}
	return nil
}

// LatestTickerSnapshot returns the raw JSON of the most recent document.
func LatestTickerSnapshot(ctx context.Context) ([]byte, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	var document []byte
	row := db.QueryRow(ctx, `SELECT document FROM ticker_snapshots ORDER BY generated_at DESC LIMIT 1`)
	if err := row.Scan(&document); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no ticker snapshot yet")
		}
		return nil, fmt.Errorf("error loading latest ticker snapshot: %w", err)
	}
	return document, nil
}

func LatestRunStatus(ctx context.Context) (models.RunStatus, error) {
	var status models.RunStatus
	if db == nil {
		return status, fmt.Errorf("database not initialized")
	}
	row := db.QueryRow(ctx, `SELECT ticker_state, error FROM run_status ORDER BY created_at DESC LIMIT 1`)
	if err := row.Scan(&status.TickerState, &status.Error); err != nil {
		if err == pgx.ErrNoRows {
			return status, fmt.Errorf("no run status yet")
		}
		return status, fmt.Errorf("error loading latest run status: %w", err)
	}
	return status, nil
}
