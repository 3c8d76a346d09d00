package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Gangster26/airflow-stock-dag/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Warehouse is for connecting and full refreshing the price table of a sql warehouse.
type Warehouse struct {
	DB     *sql.DB
	Cfg    *config.Warehouse
	Target Target

	deleteSQL string
	insertSQL string
}

// LoadResult is the outcome of a full refresh.
// Err is set only when the transaction was rolled back or never committed.
type LoadResult struct {
	Inserted int
	Err      error
}

// Failed tells whether the load did not commit.
func (r LoadResult) Failed() bool {
	return r.Err != nil
}

// Column order of the target table. Insert arguments are always bound in this order.
const priceColumns = "symbol, date, open, close, high, low, volume"

// InitWarehouse opens the warehouse connection pool with configured values and pings it.
func InitWarehouse(cfg *config.Warehouse, dsn string, target Target) (*Warehouse, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if cfg.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Second * time.Duration(cfg.ConnMaxLifetimeSec))
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	w := NewWarehouse(db, cfg, target)
	ctx, cancel := w.reqCtx(context.Background())
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// NewWarehouse wraps an already opened database.
func NewWarehouse(db *sql.DB, cfg *config.Warehouse, target Target) *Warehouse {
	name := target.QualifiedName()
	placeholders := make([]string, 7)
	for i := range placeholders {
		placeholders[i] = placeholder(cfg.Driver, i+1)
	}
	return &Warehouse{
		DB:        db,
		Cfg:       cfg,
		Target:    target,
		deleteSQL: "DELETE FROM " + name,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, priceColumns, strings.Join(placeholders, ", ")),
	}
}

// placeholder returns the n-th bind parameter marker of the driver.
func placeholder(driver string, n int) string {
	if driver == "pgx" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// reqCtx applies the configured request timeout on top of the app context.
func (w *Warehouse) reqCtx(appCtx context.Context) (context.Context, context.CancelFunc) {
	if w.Cfg.ReqTimeoutSec > 0 {
		return context.WithTimeout(appCtx, time.Duration(w.Cfg.ReqTimeoutSec)*time.Second)
	}
	return context.WithCancel(appCtx)
}

// Load replaces the whole content of the target table with the input records inside a single transaction.
// On any delete or insert error the transaction is rolled back and the original error is returned,
// so the table keeps the pre-run rows. Empty input leaves the table empty.
func (w *Warehouse) Load(appCtx context.Context, records []PriceRecord) LoadResult {
	ctx, cancel := w.reqCtx(appCtx)
	defer cancel()

	conn, err := w.DB.Conn(ctx)
	if err != nil {
		return LoadResult{Err: errors.Wrap(err, "acquire warehouse connection")}
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Str("table", w.Target.QualifiedName()).Msg("release warehouse connection")
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return LoadResult{Err: errors.Wrap(err, "begin transaction")}
	}

	inserted, err := w.refresh(ctx, tx, records)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Str("table", w.Target.QualifiedName()).Msg("rollback")
		}
		return LoadResult{Err: err}
	}

	if err = tx.Commit(); err != nil {
		return LoadResult{Err: errors.Wrap(err, "commit")}
	}
	log.Debug().Str("table", w.Target.QualifiedName()).Int("records", inserted).Msg("full refresh committed")
	return LoadResult{Inserted: inserted}
}

// refresh runs the delete and the inserts of a full refresh on the transaction.
func (w *Warehouse) refresh(ctx context.Context, tx *sql.Tx, records []PriceRecord) (int, error) {
	if _, err := tx.ExecContext(ctx, w.deleteSQL); err != nil {
		return 0, errors.Wrapf(err, "delete from %s", w.Target.QualifiedName())
	}
	for i, record := range records {
		if _, err := tx.ExecContext(ctx, w.insertSQL, record.insertArgs()...); err != nil {
			return 0, errors.Wrapf(err, "insert record %d (%s %s) into %s", i+1, record.Symbol, record.Date, w.Target.QualifiedName())
		}
	}
	return len(records), nil
}

// CreateTable creates the target table if it does not exist yet.
func (w *Warehouse) CreateTable(appCtx context.Context) error {
	ctx, cancel := w.reqCtx(appCtx)
	defer cancel()

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		symbol VARCHAR(16) NOT NULL,
		date   DATE NOT NULL,
		open   DOUBLE PRECISION NOT NULL,
		close  DOUBLE PRECISION NOT NULL,
		high   DOUBLE PRECISION NOT NULL,
		low    DOUBLE PRECISION NOT NULL,
		volume BIGINT NOT NULL
	)`, w.Target.QualifiedName())
	if _, err := w.DB.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(err, "create table %s", w.Target.QualifiedName())
	}
	return nil
}

// Snapshot returns the current rows of the target table ordered by symbol and date.
func (w *Warehouse) Snapshot(appCtx context.Context) ([]PriceRecord, error) {
	ctx, cancel := w.reqCtx(appCtx)
	defer cancel()

	query := "SELECT symbol, date, open, high, low, close, volume FROM " + w.Target.QualifiedName() + " ORDER BY symbol, date"
	rows, err := w.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PriceRecord
	for rows.Next() {
		var (
			r    PriceRecord
			date interface{}
		)
		if err = rows.Scan(&r.Symbol, &date, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, err
		}
		if r.Date, err = formatDate(date); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// formatDate brings the different driver representations of a DATE column back to YYYY-MM-DD.
func formatDate(v interface{}) (string, error) {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02"), nil
	case string:
		return d, nil
	case []byte:
		return string(d), nil
	default:
		return "", errors.Errorf("unexpected date column type %T", v)
	}
}

// Close closes the connection pool.
func (w *Warehouse) Close() error {
	return w.DB.Close()
}
