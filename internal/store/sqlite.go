package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gridtrader/internal/domain"
	"gridtrader/internal/grid"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ StrategyStore = (*SQLiteStore)(nil)
var _ BacktestStore = (*SQLiteStore)(nil)

// SQLiteStore implements StrategyStore and BacktestStore backed by a SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs
// migrations, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS strategies (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol            TEXT    NOT NULL,
	lower_price       REAL    NOT NULL,
	upper_price       REAL    NOT NULL,
	num_grids         INTEGER NOT NULL,
	investment_amount REAL    NOT NULL,
	created_at        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS backtests (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy_id INTEGER NOT NULL REFERENCES strategies(id),
	start_date  INTEGER NOT NULL,
	end_date    INTEGER NOT NULL,
	days        INTEGER NOT NULL,
	result_json TEXT    NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_backtests_strategy ON backtests(strategy_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// StrategyStore implementation
// ---------------------------------------------------------------------------

// CreateStrategy inserts a new strategy. Only the definition is stored;
// levels and cells are recomputed on read.
func (s *SQLiteStore) CreateStrategy(ctx context.Context, st *domain.Strategy) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO strategies (symbol, lower_price, upper_price, num_grids, investment_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		st.Grid.Symbol, st.Grid.LowerPrice, st.Grid.UpperPrice, st.Grid.NumGrids,
		st.InvestmentAmount, now.Unix())
	if err != nil {
		return fmt.Errorf("inserting strategy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading strategy id: %w", err)
	}
	st.ID = id
	st.CreatedAt = now
	return nil
}

// GetStrategy retrieves a strategy by ID, recomputing its derived grid
// levels and cells from the stored definition.
func (s *SQLiteStore) GetStrategy(ctx context.Context, id int64) (*domain.Strategy, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, lower_price, upper_price, num_grids, investment_amount, created_at
		 FROM strategies WHERE id = ?`, id)
	st, err := scanStrategy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: strategy %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading strategy %d: %w", id, err)
	}
	return st, nil
}

// ListStrategies returns all strategies, newest first.
func (s *SQLiteStore) ListStrategies(ctx context.Context) ([]domain.Strategy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, lower_price, upper_price, num_grids, investment_amount, created_at
		 FROM strategies ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing strategies: %w", err)
	}
	defer rows.Close()

	var out []domain.Strategy
	for rows.Next() {
		st, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning strategy: %w", err)
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStrategy(r rowScanner) (*domain.Strategy, error) {
	var st domain.Strategy
	var createdAt int64
	if err := r.Scan(&st.ID, &st.Grid.Symbol, &st.Grid.LowerPrice, &st.Grid.UpperPrice,
		&st.Grid.NumGrids, &st.InvestmentAmount, &createdAt); err != nil {
		return nil, err
	}
	st.CreatedAt = time.Unix(createdAt, 0).UTC()

	levels, err := grid.Levels(st.Grid)
	if err != nil {
		return nil, fmt.Errorf("rebuilding levels: %w", err)
	}
	cells, err := grid.Cells(levels, st.InvestmentAmount)
	if err != nil {
		return nil, fmt.Errorf("rebuilding cells: %w", err)
	}
	st.GridLevels = levels
	st.Cells = cells
	return &st, nil
}

// ---------------------------------------------------------------------------
// BacktestStore implementation
// ---------------------------------------------------------------------------

// SaveBacktest inserts a new backtest result. The full result is stored as
// JSON alongside queryable period columns.
func (s *SQLiteStore) SaveBacktest(ctx context.Context, r *domain.BacktestResult) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding backtest result: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO backtests (strategy_id, start_date, end_date, days, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.StrategyID, r.Period.Start.Unix(), r.Period.End.Unix(), r.Period.Days,
		string(payload), now.Unix())
	if err != nil {
		return fmt.Errorf("inserting backtest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading backtest id: %w", err)
	}
	r.ID = id
	return nil
}

// GetBacktest retrieves a backtest result by ID.
func (s *SQLiteStore) GetBacktest(ctx context.Context, id int64) (*domain.BacktestResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM backtests WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: backtest %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("reading backtest %d: %w", id, err)
	}
	var r domain.BacktestResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decoding backtest %d: %w", id, err)
	}
	r.ID = id
	return &r, nil
}
