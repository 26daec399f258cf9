package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"barfeed/internal/model"
)

// DB is the subset of *pgx.Conn the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var columns = []string{
	"symbol", "exchange", "interval", "datetime",
	"open", "high", "low", "close", "volume", "open_interest", "source",
}

// BarStore persists bars to a Postgres table.
type BarStore struct {
	db    DB
	table string
}

// Connect opens a connection to url.
func Connect(ctx context.Context, url string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return conn, nil
}

func New(db DB, table string) *BarStore {
	if table == "" {
		table = "bars"
	}
	return &BarStore{db: db, table: table}
}

// EnsureSchema creates the bars table if it does not exist.
func (s *BarStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	symbol        text             NOT NULL,
	exchange      text             NOT NULL,
	interval      text             NOT NULL,
	datetime      timestamptz      NOT NULL,
	open          double precision NOT NULL,
	high          double precision NOT NULL,
	low           double precision NOT NULL,
	close         double precision NOT NULL,
	volume        double precision NOT NULL,
	open_interest double precision NOT NULL DEFAULT 0,
	source        text             NOT NULL,
	PRIMARY KEY (symbol, exchange, interval, datetime)
)`, pgx.Identifier{s.table}.Sanitize()))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

// SaveBars bulk-copies bars into the table and returns the number of rows
// written. Bars already stored for the same slot violate the primary key and
// fail the whole copy.
func (s *BarStore) SaveBars(ctx context.Context, bars []model.Bar) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	n, err := s.db.CopyFrom(ctx, pgx.Identifier{s.table}, columns, pgx.CopyFromSlice(len(bars), func(i int) ([]any, error) {
		b := bars[i]
		return []any{
			b.Symbol, string(b.Exchange), string(b.Interval), b.Datetime,
			b.OpenPrice, b.HighPrice, b.LowPrice, b.ClosePrice, b.Volume, b.OpenInterest, b.Source,
		}, nil
	}))
	if err != nil {
		return n, fmt.Errorf("copying bars into %s: %w", s.table, err)
	}
	return n, nil
}

// LatestBar returns the timestamp of the most recent stored bar for the
// instrument and interval. If none is found, a zero time.Time is returned and
// err is nil.
func (s *BarStore) LatestBar(ctx context.Context, symbol string, exchange model.Exchange, interval model.Interval) (time.Time, error) {
	var ts time.Time
	err := s.db.QueryRow(ctx,
		fmt.Sprintf("SELECT datetime FROM %s WHERE symbol = $1 AND exchange = $2 AND interval = $3 ORDER BY datetime DESC LIMIT 1",
			pgx.Identifier{s.table}.Sanitize()),
		symbol, string(exchange), string(interval),
	).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying latest bar: %w", err)
	}
	return ts, nil
}
