package storage

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// PriceRecord represents final form of a daily price bar received from the market data provider
// ready to store.
type PriceRecord struct {
	Symbol string
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// insertArgs returns record values in the target column order:
// symbol, date, open, close, high, low, volume.
func (r PriceRecord) insertArgs() []interface{} {
	return []interface{}{r.Symbol, r.Date, r.Open, r.Close, r.High, r.Low, r.Volume}
}

// Target is the database / schema / table triple of the full refresh table.
// Database and Schema may be blank, in which case they are left out of the qualified name.
type Target struct {
	Database string
	Schema   string
	Table    string
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Validate checks that every set part is a plain sql identifier, table is mandatory.
func (t Target) Validate() error {
	if t.Table == "" {
		return errors.New("target table is empty")
	}
	if t.Database != "" && t.Schema == "" {
		return errors.New("target schema is required when database is set")
	}
	for _, part := range []string{t.Database, t.Schema, t.Table} {
		if part != "" && !identRe.MatchString(part) {
			return errors.Errorf("target identifier %q is not valid", part)
		}
	}
	return nil
}

// QualifiedName joins the set parts, like STOCK.RAW.STOCK_PRICES.
func (t Target) QualifiedName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{t.Database, t.Schema, t.Table} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ".")
}
