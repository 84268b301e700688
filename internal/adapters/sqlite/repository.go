package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"breakoutScanner/internal/domain"
	"breakoutScanner/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.SignalRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signals.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w: %w", filepath.Dir(dbPath), ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single writer; the journal is appended to at most once per cycle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS signals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		signal_id TEXT NOT NULL UNIQUE,
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		entry_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL NOT NULL,
		liquidation_price REAL NOT NULL,
		leverage INTEGER NOT NULL,
		position_size REAL NOT NULL,
		reward_risk REAL NOT NULL,
		last_price REAL NOT NULL,
		notified INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_symbol_created_at ON signals (symbol, created_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveSignal appends a signal to the journal and returns its row ID.
func (r *Repository) SaveSignal(ctx context.Context, sig *domain.Signal) (int64, error) {
	if sig == nil {
		return 0, fmt.Errorf("SaveSignal failed: %w: nil signal", ports.ErrInvalidRequest)
	}
	const query = `
	INSERT INTO signals (signal_id, symbol, interval, entry_price, stop_loss, take_profit,
	                     liquidation_price, leverage, position_size, reward_risk, last_price,
	                     notified, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	p := sig.Plan
	result, err := r.db.ExecContext(ctx, query,
		sig.ID, sig.Symbol, sig.Interval, p.EntryPrice, p.StopLoss, p.TakeProfit,
		p.LiquidationPrice, p.Leverage, p.PositionSize, p.RewardRiskRatio, sig.LastPrice,
		sig.Notified, sig.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert signal for symbol %s: %w: %w", sig.Symbol, ports.ErrQueryFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for signal %s: %w: %w", sig.ID, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Signal journaled", map[string]interface{}{"rowID": id, "signalID": sig.ID, "symbol": sig.Symbol})
	return id, nil
}

// FindRecent retrieves the most recent signals for a given symbol, up to a limit.
func (r *Repository) FindRecent(ctx context.Context, symbol string, limit int) ([]*domain.Signal, error) {
	if limit <= 0 {
		return []*domain.Signal{}, nil
	}
	const query = `
	SELECT signal_id, symbol, interval, entry_price, stop_loss, take_profit,
	       liquidation_price, leverage, position_size, reward_risk, last_price,
	       notified, created_at
	FROM signals
	WHERE symbol = ? ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for symbol %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	signals := make([]*domain.Signal, 0)
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal during FindRecent: %w: %w", ports.ErrQueryFailed, err)
		}
		signals = append(signals, sig)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return signals, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSignal scans a row into a domain.Signal struct.
func scanSignal(s scanner) (*domain.Signal, error) {
	sig := &domain.Signal{}
	p := &sig.Plan
	err := s.Scan(
		&sig.ID, &sig.Symbol, &sig.Interval, &p.EntryPrice, &p.StopLoss, &p.TakeProfit,
		&p.LiquidationPrice, &p.Leverage, &p.PositionSize, &p.RewardRiskRatio, &sig.LastPrice,
		&sig.Notified, &sig.CreatedAt)
	if err != nil {
		return nil, err
	}
	return sig, nil
}
