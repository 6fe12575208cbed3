package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/precify/pricing-engine/internal/config"
	"github.com/precify/pricing-engine/internal/scheduler"
	"github.com/precify/pricing-engine/pkg/breakeven"
	"github.com/precify/pricing-engine/pkg/constants"
	"github.com/precify/pricing-engine/pkg/output"
	"github.com/precify/pricing-engine/pkg/pricing"
	"github.com/precify/pricing-engine/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	taxRate, taxSummary, err := conf.ResolveTaxRate()
	if err != nil {
		logger.Fatal("failed to resolve tax configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Debug("tax rate resolved",
		zap.String("op", "main"),
		zap.Float64("totalRate", taxRate),
		zap.Any("breakdown", taxSummary.Breakdown),
	)

	sched := scheduler.New(logger, scheduler.Config{})
	defer sched.Close()

	batchResult, err := runBatch(logger, sched, conf, taxRate)
	if err != nil {
		logger.Fatal("failed to compute catalog pricing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	var scenariosResult *scheduler.ScenariosResult
	if len(conf.Scenarios) > 0 && len(conf.Catalog) > 0 {
		scenariosResult, err = runScenarios(logger, sched, conf)
		if err != nil {
			logger.Fatal("failed to compute scenarios",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	var breakEvenResult *breakeven.Result
	if conf.BreakEven != nil && len(conf.Catalog) > 0 {
		first := conf.Catalog[0]
		breakEvenResult, err = breakeven.ComputeBreakEven(breakeven.Input{
			Costs:                 conf.CostsFor(first),
			Rates:                 conf.RatesFor(first, taxRate),
			MonthlyFixedCosts:     conf.BreakEven.MonthlyFixedCosts,
			AverageDailySales:     conf.BreakEven.AverageDailySales,
			ProjectedMonthlyUnits: conf.BreakEven.ProjectedMonthlyUnits,
			InitialInvestment:     conf.BreakEven.InitialInvestment,
			TargetMonthlyProfit:   conf.BreakEven.TargetMonthlyProfit,
		})
		if err != nil {
			logger.Fatal("failed to compute break-even analysis",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(batchResult)
		if scenariosResult != nil {
			output.PrettyScenarios(scenariosResult)
		}
		if breakEvenResult != nil {
			output.PrettyBreakEven(breakEvenResult)
		}
	case constants.OutputFormatCSV:
		output.CsvFormat(batchResult)
	}
}

// runBatch dispatches the catalog as a single CALCULATE_BATCH task and waits
// for the ordered result.
func runBatch(logger *zap.Logger, sched *scheduler.Scheduler, conf *config.Configuration, taxRate float64) (*scheduler.BatchResult, error) {
	items := make([]scheduler.BatchItem, len(conf.Catalog))
	for i, product := range conf.Catalog {
		items[i] = scheduler.BatchItem{
			Name:         product.Name,
			Costs:        conf.CostsFor(product),
			Rates:        conf.RatesFor(product, taxRate),
			SellingPrice: product.SellingPrice,
		}
	}

	pending := sched.Dispatch(scheduler.Task{
		ID:      "cli-batch",
		Kind:    scheduler.KindBatch,
		Payload: scheduler.BatchPayload{Items: items},
	}, func(progress float64) {
		logger.Debug("catalog pricing progress",
			zap.String("op", "main.runBatch"),
			zap.Float64("progress", progress),
		)
	})

	data, err := pending.Wait(context.Background())
	if err != nil {
		return nil, err
	}
	return data.(*scheduler.BatchResult), nil
}

// runScenarios compares the configured rate variations against the first
// catalog item's cost base.
func runScenarios(logger *zap.Logger, sched *scheduler.Scheduler, conf *config.Configuration) (*scheduler.ScenariosResult, error) {
	scenarios := make([]scheduler.Scenario, len(conf.Scenarios))
	for i, sc := range conf.Scenarios {
		scenarios[i] = scheduler.Scenario{
			Name: sc.Name,
			Rates: pricing.ChargeRates{
				MarginPercent:  sc.MarginPercent,
				TaxPercent:     sc.TaxPercent,
				CardFeePercent: sc.CardFeePercent,
			},
		}
	}

	pending := sched.Dispatch(scheduler.Task{
		ID:      "cli-scenarios",
		Kind:    scheduler.KindScenarios,
		Payload: scheduler.ScenariosPayload{Costs: conf.CostsFor(conf.Catalog[0]), Scenarios: scenarios},
	}, nil)

	data, err := pending.Wait(context.Background())
	if err != nil {
		return nil, err
	}
	return data.(*scheduler.ScenariosResult), nil
}
