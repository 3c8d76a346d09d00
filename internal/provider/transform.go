package provider

import (
	"fmt"
	"math"
	"time"

	"github.com/Gangster26/airflow-stock-dag/internal/config"
	"github.com/Gangster26/airflow-stock-dag/internal/storage"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DailySeriesKey is the top level field holding the per date bars.
const DailySeriesKey = "Time Series (Daily)"

const dateLayout = "2006-01-02"

// ErrEmptySeries is returned when the daily series has no dated entries and the policy asks for an error.
var ErrEmptySeries = errors.New("daily series has no entries")

// Transformer converts a raw daily series response to price records.
type Transformer struct {
	// EmptySeries is config.EmptySeriesSkip or config.EmptySeriesError.
	EmptySeries string
}

// Transform returns the latest dated bar of the response as a single price record.
// A response without the daily series yields no records and no error.
// Any malformed value fails the whole transform, nothing partial is returned.
func (t *Transformer) Transform(raw RawResponse, symbol string) ([]storage.PriceRecord, error) {
	field, ok := raw[DailySeriesKey]
	if !ok {
		return []storage.PriceRecord{}, nil
	}
	series, ok := field.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("%q is %T, not an object", DailySeriesKey, field)
	}
	if len(series) == 0 {
		if t.EmptySeries == config.EmptySeriesError {
			return nil, ErrEmptySeries
		}
		return []storage.PriceRecord{}, nil
	}

	latest, err := latestDate(series)
	if err != nil {
		return nil, err
	}
	values, ok := series[latest].(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("bar of %s is not an object", latest)
	}

	record := storage.PriceRecord{Symbol: symbol}
	if record.Date, err = normalizeDate(latest); err != nil {
		return nil, err
	}
	prices := []struct {
		key string
		dst *float64
	}{
		{"1. open", &record.Open},
		{"2. high", &record.High},
		{"3. low", &record.Low},
		{"4. close", &record.Close},
	}
	for _, p := range prices {
		d, err := number(values, p.key)
		if err != nil {
			return nil, errors.Wrapf(err, "bar of %s", latest)
		}
		*p.dst = d.InexactFloat64()
	}
	vol, err := number(values, "5. volume")
	if err != nil {
		return nil, errors.Wrapf(err, "bar of %s", latest)
	}
	if !vol.IsInteger() {
		return nil, errors.Errorf("bar of %s: volume %s is not an integer", latest, vol)
	}
	if vol.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return nil, errors.Errorf("bar of %s: volume %s overflows", latest, vol)
	}
	record.Volume = vol.IntPart()

	return []storage.PriceRecord{record}, nil
}

// latestDate returns the series key with the maximum calendar date.
// For zero padded keys this is the same as the lexicographic maximum,
// parsing keeps it right when the provider pads inconsistently.
// A key which is not a date is rejected on purpose, it fails the transform instead of being skipped.
func latestDate(series map[string]interface{}) (string, error) {
	var (
		latestKey  string
		latestTime time.Time
	)
	for key := range series {
		d, err := parseDate(key)
		if err != nil {
			return "", err
		}
		if latestKey == "" || d.After(latestTime) || (d.Equal(latestTime) && key > latestKey) {
			latestKey = key
			latestTime = d
		}
	}
	return latestKey, nil
}

// parseDate accepts YYYY-MM-DD, with or without zero padding of month and day.
func parseDate(key string) (time.Time, error) {
	d, err := time.Parse(dateLayout, key)
	if err == nil {
		return d, nil
	}
	d, lerr := time.Parse("2006-1-2", key)
	if lerr == nil {
		return d, nil
	}
	return time.Time{}, errors.Wrapf(err, "series key %q is not a date", key)
}

func normalizeDate(key string) (string, error) {
	d, err := parseDate(key)
	if err != nil {
		return "", err
	}
	return d.Format(dateLayout), nil
}

// number reads a string or json number subfield as a non-negative decimal.
func number(values map[string]interface{}, key string) (decimal.Decimal, error) {
	v, ok := values[key]
	if !ok {
		return decimal.Decimal{}, errors.Errorf("field %q is missing", key)
	}
	var (
		d   decimal.Decimal
		err error
	)
	switch n := v.(type) {
	case string:
		d, err = decimal.NewFromString(n)
	case float64:
		d = decimal.NewFromFloat(n)
	case fmt.Stringer:
		d, err = decimal.NewFromString(n.String())
	default:
		err = errors.Errorf("unexpected type %T", v)
	}
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "field %q is not numeric", key)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errors.Errorf("field %q is negative: %s", key, d)
	}
	return d, nil
}
