package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"

	"github.com/daconrilcy/horoscope-front-sub002/internal/adapters/secondary/swisseph"
	"github.com/daconrilcy/horoscope-front-sub002/internal/domain"
	"github.com/daconrilcy/horoscope-front-sub002/internal/pkg/logger"
	"github.com/daconrilcy/horoscope-front-sub002/internal/services/golden"
)

const appName = "golden_validator"

// Ручной прогон golden-валидации на живых эфемеридах.
// В CI бинарь отказывается работать.
func main() {
	datasetPath := flag.String("dataset", "", "path to golden dataset JSON (default: embedded dataset)")
	outPath := flag.String("out", "golden_report.json", "path to write JSON report")
	mdPath := flag.String("md", "", "optional path to write Markdown report")
	flag.Parse()

	if err := golden.RefuseInCI(nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.New(appName, nil)

	var epheCfg swisseph.Config
	if err := envconfig.Process("SWISSEPH", &epheCfg); err != nil {
		log.Error("failed to load swisseph config", "error", err)
		os.Exit(1)
	}
	if epheCfg.EphePath == "" {
		log.Error("SWISSEPH_EPHE_PATH is required for golden validation")
		os.Exit(1)
	}

	dataset, err := loadDataset(*datasetPath)
	if err != nil {
		log.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine := swisseph.New(&epheCfg, log)
	defer engine.Close()

	validator := golden.NewValidator(engine, log)
	report, err := validator.Run(ctx, dataset)
	if err != nil {
		log.Error("golden validation aborted", "error", err)
		os.Exit(1)
	}

	raw, err := golden.MarshalReport(report)
	if err != nil {
		log.Error("failed to marshal report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, raw, 0o644); err != nil {
		log.Error("failed to write report", "error", err, "path", *outPath)
		os.Exit(1)
	}

	if *mdPath != "" {
		if err := os.WriteFile(*mdPath, []byte(golden.RenderMarkdown(report)), 0o644); err != nil {
			log.Error("failed to write markdown report", "error", err, "path", *mdPath)
			os.Exit(1)
		}
	}

	log.Info("golden validation finished",
		"dataset", report.DatasetID,
		"cases", report.Summary.CasesCount,
		"passed", report.Summary.PassedCases,
		"failed", report.Summary.FailedCases,
		"max_delta_deg", report.Summary.MaxDeltaDegrees,
	)

	if report.Summary.FailedCases > 0 {
		log.Error("golden validation failed", "failed_cases", golden.FailedCaseIDs(report))
		os.Exit(1)
	}
}

func loadDataset(path string) (*domain.GoldenDataset, error) {
	if path == "" {
		return golden.LoadDefaultDataset()
	}
	return golden.LoadDataset(path)
}
