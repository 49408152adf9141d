// Command co2forecast fetches the Mauna Loa monthly CO2 record, fits a
// seasonal ARIMA model, and writes a forecast report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohincu/co2-forecasting/co2"
	"github.com/ohincu/co2-forecasting/report"
	"github.com/ohincu/co2-forecasting/sarima"
	"github.com/ohincu/co2-forecasting/stats"
	"github.com/ohincu/co2-forecasting/timeseries"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("analysis failed")
	}
}

func newLogger(cfg *Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("logging.level %q: %w", cfg.Logging.Level, err)
	}

	var out io.Writer = os.Stderr
	if cfg.Logging.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func run(ctx context.Context, cfg *Config, logger zerolog.Logger) error {
	series, err := loadSeries(ctx, cfg, logger)
	if err != nil {
		return err
	}

	r := &report.Report{
		Title:  "Mauna Loa Atmospheric CO2 Forecast",
		Series: series,
	}

	train := series
	var test *timeseries.Series
	if cfg.Split.Year > 0 {
		train, test, err = series.SplitYear(cfg.Split.Year)
		if err != nil {
			return fmt.Errorf("splitting at %d: %w", cfg.Split.Year, err)
		}
		r.Train, r.Test = train, test
		logger.Info().
			Int("train", train.Len()).
			Int("test", test.Len()).
			Int("year", cfg.Split.Year).
			Msg("split series")
	}

	diagnose(r, train, cfg, logger)

	model, err := fitModel(train, cfg, logger)
	if err != nil {
		return err
	}
	r.Model = model.Summary()

	horizon := cfg.Forecast.Horizon
	if test != nil && test.Len() > horizon {
		horizon = test.Len()
	}
	fc, err := model.Forecast(horizon, cfg.Forecast.Confidence)
	if err != nil {
		return fmt.Errorf("forecasting: %w", err)
	}
	r.Forecast = fc
	logger.Info().Int("horizon", horizon).Msg("forecast complete")

	if test != nil {
		acc, err := report.Evaluate(test, fc)
		if err != nil {
			return fmt.Errorf("evaluating holdout: %w", err)
		}
		r.Accuracy = acc
		logger.Info().
			Float64("rmse", acc.RMSE).
			Float64("mae", acc.MAE).
			Float64("mape", acc.MAPE).
			Msg("holdout accuracy")
	}

	return writeReport(r, cfg.Report.Output)
}

func loadSeries(ctx context.Context, cfg *Config, logger zerolog.Logger) (*timeseries.Series, error) {
	if cfg.Data.File != "" {
		logger.Info().Str("file", cfg.Data.File).Msg("loading co2 record from file")
		return co2.LoadFile(cfg.Data.File)
	}

	client := co2.NewClient(co2.WithURL(cfg.Data.URL), co2.WithLogger(logger))
	return client.FetchMonthly(ctx)
}

// diagnose fills the report's stationarity and correlation sections. These
// are descriptive; failures are logged and skipped rather than aborting the
// run.
func diagnose(r *report.Report, train *timeseries.Series, cfg *Config, logger zerolog.Logger) {
	var err error

	if r.ADF, err = stats.ADF(train, 0); err != nil {
		logger.Warn().Err(err).Msg("skipping adf test")
	}
	if r.KPSS, err = stats.KPSS(train, "c", 0); err != nil {
		logger.Warn().Err(err).Msg("skipping kpss test")
	}

	period := cfg.Model.Period
	if period >= 2 {
		if r.Decomposition, err = stats.Decompose(train, period, stats.Additive); err != nil {
			logger.Warn().Err(err).Msg("skipping decomposition")
		}
	}

	diffed, err := train.Difference(1, 1)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping correlograms")
		return
	}
	maxLag := 24
	if diffed.Len() <= maxLag {
		maxLag = diffed.Len() - 1
	}
	if r.ACF, err = stats.ACFCorrelogram(diffed, maxLag); err != nil {
		logger.Warn().Err(err).Msg("skipping acf")
	}
	if r.PACF, err = stats.PACFCorrelogram(diffed, maxLag); err != nil {
		logger.Warn().Err(err).Msg("skipping pacf")
	}
}

func fitModel(train *timeseries.Series, cfg *Config, logger zerolog.Logger) (*sarima.Model, error) {
	order := sarima.Order{
		P: cfg.Model.P, D: cfg.Model.D, Q: cfg.Model.Q,
		SP: cfg.Model.SP, SD: cfg.Model.SD, SQ: cfg.Model.SQ,
		Period: cfg.Model.Period,
	}

	bc, err := cfg.boxCoxLambda()
	if err != nil {
		return nil, err
	}
	tr := sarima.NoTransform()
	switch {
	case bc.auto:
		tr = sarima.BoxCoxAuto()
	case bc.fixed:
		tr = sarima.BoxCox(bc.lambda)
	}

	logger.Info().Stringer("order", order).Msg("fitting model")
	start := time.Now()

	model := sarima.NewWithTransform(order, tr)
	if err := model.Fit(train); err != nil {
		return nil, fmt.Errorf("fitting %s: %w", order, err)
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Float64("aic", model.AIC).
		Float64("bic", model.BIC).
		Msg("model fitted")
	return model, nil
}

func writeReport(r *report.Report, output string) error {
	if output == "" || output == "-" {
		return r.Render(os.Stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := r.Render(f); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}
