package pipeline

import (
	"context"
	"time"

	"github.com/Gangster26/airflow-stock-dag/internal/connector"
	"github.com/Gangster26/airflow-stock-dag/internal/provider"
	"github.com/Gangster26/airflow-stock-dag/internal/storage"
	"github.com/rs/zerolog/log"
)

// Loader commits price records to the target table as a full refresh.
type Loader interface {
	Load(ctx context.Context, records []storage.PriceRecord) storage.LoadResult
}

// Deps holds everything a run needs. All of it is resolved before the run starts.
type Deps struct {
	Symbol      string
	BaseURL     string
	APIKey      string
	REST        *connector.REST
	Transformer *provider.Transformer
	Loader      Loader
	Terminal    *storage.Terminal
}

// Run executes extract, transform and load for the symbol, strictly in sequence.
// It returns the number of committed records. Any stage failure stops the run
// and is returned as ExtractionError, TransformationError or LoadError.
func Run(ctx context.Context, deps *Deps) (int, error) {
	start := time.Now()
	logger := log.With().Str("symbol", deps.Symbol).Logger()
	logger.Info().Msg("run started")

	raw, err := provider.Extract(ctx, deps.REST, deps.BaseURL, deps.Symbol, deps.APIKey)
	if err != nil {
		err = &ExtractionError{Err: err}
		logErrStack(err)
		deps.Terminal.RunFailure(err)
		return 0, err
	}
	logger.Debug().Str("stage", "extract").Int("keys", len(raw)).Msg("stage done")

	records, err := deps.Transformer.Transform(raw, deps.Symbol)
	if err != nil {
		err = &TransformationError{Err: err}
		logErrStack(err)
		deps.Terminal.RunFailure(err)
		return 0, err
	}
	if len(records) == 0 {
		logger.Warn().Str("stage", "transform").Msg("no daily series in response, table will be emptied")
	}
	logger.Debug().Str("stage", "transform").Int("records", len(records)).Msg("stage done")

	res := deps.Loader.Load(ctx, records)
	if res.Failed() {
		err = &LoadError{Err: res.Err}
		logErrStack(err)
		deps.Terminal.LoadFailure(res.Err)
		return 0, err
	}
	deps.Terminal.CommitPrices(records)
	deps.Terminal.Success(res.Inserted)

	logger.Info().Int("records", res.Inserted).Dur("duration", time.Since(start)).Msg("run finished")
	return res.Inserted, nil
}
