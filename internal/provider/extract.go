package provider

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/Gangster26/airflow-stock-dag/internal/connector"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RawResponse is the decoded body of the market data API, kept schema less.
type RawResponse map[string]interface{}

// Advisory keys alpha vantage sends instead of the series, like on rate limit or a bad symbol.
var advisoryKeys = []string{"Error Message", "Note", "Information"}

// Extract queries the provider for the daily time series of the symbol.
// The body is returned as is, without checking for the series field.
func Extract(ctx context.Context, rest *connector.REST, baseURL string, symbol string, apiKey string) (RawResponse, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, errors.New("symbol is empty")
	}

	req, err := rest.Request(ctx, baseURL+"query")
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Add("function", "TIME_SERIES_DAILY")
	q.Add("symbol", symbol)
	q.Add("apikey", apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := rest.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "daily series request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.Errorf("daily series request, code : %v, status : %v", resp.StatusCode, resp.Status)
	}

	raw := RawResponse{}
	if err = jsoniter.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "convert daily series response")
	}

	for _, key := range advisoryKeys {
		if msg, ok := raw[key]; ok {
			log.Warn().Str("symbol", symbol).Str("key", key).Interface("msg", msg).Msg("provider advisory")
		}
	}
	return raw, nil
}
