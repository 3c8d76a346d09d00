package initializer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Gangster26/airflow-stock-dag/internal/config"
	"github.com/Gangster26/airflow-stock-dag/internal/connector"
	"github.com/Gangster26/airflow-stock-dag/internal/pipeline"
	"github.com/Gangster26/airflow-stock-dag/internal/provider"
	"github.com/Gangster26/airflow-stock-dag/internal/scheduler"
	"github.com/Gangster26/airflow-stock-dag/internal/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"golang.org/x/sync/errgroup"
)

// Options changes how Start executes the app.
type Options struct {
	// Once runs the pipeline a single time and returns its error, otherwise the cron schedule is used.
	Once bool
	// Out is the terminal output, os.Stdout when nil.
	Out io.Writer
	// Variables is the secret provider, environment and config variables file when nil.
	Variables config.Variables
}

// Start will initialize various required systems and then execute the app.
func Start(mainCtx context.Context, cfg *config.Config, opts Options) error {

	// Setting up logger.
	// If the path given in the config for logging ends with .log then create a log file with the same name and
	// write log messages to it. Otherwise, create a new log file with a timestamp attached to it's name in the given path.
	// Without a path, log messages go to stderr.
	var (
		logOut io.Writer = os.Stderr
		err    error
	)
	if cfg.Log.FilePath != "" {
		var logFile *os.File
		if strings.HasSuffix(cfg.Log.FilePath, ".log") {
			logFile, err = os.OpenFile(cfg.Log.FilePath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
			if err != nil {
				return fmt.Errorf("not able to open or create log file: %v", cfg.Log.FilePath)
			}
		} else {
			logFile, err = os.Create(cfg.Log.FilePath + "_" + strconv.Itoa(int(time.Now().Unix())) + ".log")
			if err != nil {
				return fmt.Errorf("not able to create log file: %v", cfg.Log.FilePath+"_"+strconv.Itoa(int(time.Now().Unix()))+".log")
			}
		}
		defer logFile.Close()
		logOut = logFile
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	switch cfg.Log.Level {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = zerolog.New(logOut).With().Timestamp().Logger()
	log.Info().Msg("logger setup is done")

	if err = cfg.Validate(); err != nil {
		log.Error().Stack().Err(errors.WithStack(err)).Msg("")
		return err
	}

	// Resolve secrets once, components only get plain values.
	vars := opts.Variables
	if vars == nil {
		chain := config.ChainVariables{config.EnvVariables{Prefix: config.DefaultEnvPrefix}}
		if cfg.Variables != "" {
			fileVars, err := config.LoadFileVariables(cfg.Variables)
			if err != nil {
				log.Error().Stack().Err(errors.WithStack(err)).Msg("")
				return err
			}
			chain = append(chain, fileVars)
		}
		vars = chain
	}
	apiKey, err := vars.Get(cfg.Provider.APIKeyVariable)
	if err != nil {
		err = errors.Wrap(err, "provider api key")
		log.Error().Stack().Err(errors.WithStack(err)).Msg("")
		return err
	}
	dsn := cfg.Connection.Warehouse.DSN
	if dsn == "" {
		dsn, err = vars.Get(cfg.Connection.Warehouse.DSNVariable)
		if err != nil {
			err = errors.Wrap(err, "warehouse connection")
			log.Error().Stack().Err(errors.WithStack(err)).Msg("")
			return err
		}
	}

	// Establish connections to the provider and the warehouse.
	rest := connector.NewREST(&cfg.Connection.REST)
	log.Info().Msg("REST connection setup is done")

	target := storage.Target{Database: cfg.Target.Database, Schema: cfg.Target.Schema, Table: cfg.Target.Table}
	warehouse, err := storage.InitWarehouse(&cfg.Connection.Warehouse, dsn, target)
	if err != nil {
		err = errors.Wrap(err, "warehouse connection")
		log.Error().Stack().Err(errors.WithStack(err)).Msg("")
		return err
	}
	defer warehouse.Close()
	log.Info().Str("driver", cfg.Connection.Warehouse.Driver).Str("table", target.QualifiedName()).Msg("warehouse connected")

	if cfg.Connection.Warehouse.CreateTable {
		if err = warehouse.CreateTable(mainCtx); err != nil {
			log.Error().Stack().Err(errors.WithStack(err)).Msg("")
			return err
		}
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	deps := &pipeline.Deps{
		Symbol:      cfg.Pipeline.Symbol,
		BaseURL:     cfg.Provider.BaseURL,
		APIKey:      apiKey,
		REST:        rest,
		Transformer: &provider.Transformer{EmptySeries: cfg.Pipeline.EmptySeries},
		Loader:      warehouse,
		Terminal:    storage.NewTerminal(out, cfg.Connection.Terminal.DisplayRecords),
	}

	if opts.Once {
		_, err = pipeline.Run(mainCtx, deps)
		return err
	}

	// Keep running the schedule till the main context is canceled.
	// Run on start goes through the same overlap guard as the scheduled triggers.
	appErrGroup, appCtx := errgroup.WithContext(mainCtx)

	sched, err := scheduler.New(appCtx, cfg.Schedule.Cron, func(ctx context.Context) error {
		_, err := pipeline.Run(ctx, deps)
		return err
	})
	if err != nil {
		log.Error().Stack().Err(errors.WithStack(err)).Msg("")
		return err
	}
	appErrGroup.Go(sched.Start)
	if cfg.Schedule.RunOnStart {
		appErrGroup.Go(func() error {
			sched.Trigger()
			return nil
		})
	}

	err = appErrGroup.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Msg("exiting the app")
		return err
	}
	log.Info().Msg("exiting the app")
	return nil
}
