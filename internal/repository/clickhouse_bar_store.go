package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockPulse/internal/domain/models"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
)

const barsTable = "stockpulse.daily_bars"

// CHBarStore implements BarStore backed by ClickHouse. The table uses a
// ReplacingMergeTree keyed on (market, symbol, date) with an ingestion
// version, so re-upserting a date replaces the row.
type CHBarStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{ch: ch, db: ch.DB(), l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

var barSchema = []string{
	`CREATE DATABASE IF NOT EXISTS stockpulse`,
	`CREATE TABLE IF NOT EXISTS ` + barsTable + ` (
        market   LowCardinality(String),
        symbol   LowCardinality(String),
        date     Date,
        open     Float64,
        high     Float64,
        low      Float64,
        close    Float64,
        volume   Float64,
        version  DateTime DEFAULT now()
    )
    ENGINE = ReplacingMergeTree(version)
    PARTITION BY toYYYYMM(date)
    ORDER BY (market, symbol, date)`,
}

func (s *CHBarStore) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, barSchema); err != nil {
		return fmt.Errorf("bar store init: %w", err)
	}
	return nil
}

func (s *CHBarStore) UpsertBars(ctx context.Context, inst models.Instrument, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+barsTable+` (market, symbol, date, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			string(inst.Market), inst.Symbol, b.Date,
			b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			_ = tx.Rollback()
			s.l.Error("clickhouse upsert_bars exec error",
				applogger.String("symbol", inst.Symbol),
				applogger.Error(err),
			)
			return fmt.Errorf("upsert exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert commit: %w", err)
	}

	s.l.Info("clickhouse upsert_bars ok",
		applogger.String("symbol", inst.Symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHBarStore) GetBars(ctx context.Context, inst models.Instrument) ([]models.Bar, error) {
	start := time.Now()
	// FINAL collapses replaced versions so each date appears once
	const q = `
        SELECT date, open, high, low, close, volume
        FROM ` + barsTable + ` FINAL
        WHERE market = ? AND symbol = ?
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, string(inst.Market), inst.Symbol)
	if err != nil {
		s.l.Error("clickhouse get_bars query error",
			applogger.String("symbol", inst.Symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 512)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse get_bars ok",
		applogger.String("symbol", inst.Symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *CHBarStore) LastDate(ctx context.Context, inst models.Instrument) (time.Time, bool, error) {
	const q = `
        SELECT max(date)
        FROM ` + barsTable + ` FINAL
        WHERE market = ? AND symbol = ?
    `
	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx, q, string(inst.Market), inst.Symbol).Scan(&last); err != nil {
		return time.Time{}, false, fmt.Errorf("last date: %w", err)
	}
	// ClickHouse max() over an empty set yields the zero date
	if !last.Valid || last.Time.Year() <= 1970 {
		return time.Time{}, false, nil
	}
	return last.Time, true, nil
}

func (s *CHBarStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHBarStore) Close() error {
	return s.ch.Close()
}
