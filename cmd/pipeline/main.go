package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"projlens/internal/analyzer"
	"projlens/internal/config"
	"projlens/internal/dataset"
	"projlens/internal/domain"
	"projlens/internal/github"
	"projlens/internal/llm"
	"projlens/internal/logger"
	"projlens/internal/repository"
	"projlens/internal/service"
	"projlens/internal/storage"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "projlens-pipeline",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	inputPath := flag.String("input", "", "Input CSV with a project_url column")
	outputPath := flag.String("output", "", "Output CSV path (defaults to overwriting the input)")
	course := flag.String("course", "", "Course identifier used to pick the valid deployment types")
	workers := flag.Int("workers", 0, "Concurrent project workers (overrides config)")
	limit := flag.Int("limit", 0, "Process only the first N rows (testing knob)")
	clean := flag.Bool("clean", false, "Clean and deduplicate the URL column before processing")
	publish := flag.Bool("publish", false, "Publish the finished dataset to object storage")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *inputPath == "" {
		appLogger.Fatal("Missing required flag: -input")
	}
	if *outputPath == "" {
		*outputPath = *inputPath
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Missing credentials must fail before any work is dispatched
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid configuration")
	}

	if *workers > 0 {
		cfg.Pipeline.Workers = *workers
	}

	validTypes := cfg.DeploymentTypesFor(*course)
	appLogger.WithFields(logger.Fields{
		"input":   *inputPath,
		"output":  *outputPath,
		"course":  *course,
		"workers": cfg.Pipeline.Workers,
		"types":   validTypes,
	}).Info("Starting pipeline")

	// Load the dataset
	table, err := dataset.Load(*inputPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load dataset")
	}
	if *clean {
		table.CleanAndDeduplicate()
	}
	if *limit > 0 {
		table.Limit(*limit)
		appLogger.WithField(logger.FieldCount, *limit).Warn("Limited input rows for testing")
	}

	// Initialize the run ledger
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	runRepo := repository.NewRunRepository(db)

	// Wire the pipeline
	githubClient := github.NewClient(&github.Config{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
	})
	repoAnalyzer := analyzer.New(githubClient, &analyzer.Config{
		MaxFiles:     cfg.Pipeline.MaxFiles,
		FetchWorkers: cfg.Pipeline.FetchWorkers,
	})
	llmClient := llm.NewClient(&llm.Config{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	})
	pipeline := service.NewPipeline(
		repoAnalyzer,
		service.NewClassifier(llmClient),
		service.NewTitleGenerator(llmClient),
		&service.PipelineConfig{Workers: cfg.Pipeline.Workers},
	)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Record the run
	now := time.Now()
	run := &domain.PipelineRun{
		ID:         uuid.New().String(),
		Course:     *course,
		InputPath:  *inputPath,
		OutputPath: *outputPath,
		Status:     domain.RunStatusRunning,
		TotalItems: table.Len(),
		StartedAt:  &now,
	}
	if err := runRepo.Create(ctx, run); err != nil {
		appLogger.WithError(err).Fatal("Failed to record run")
	}

	ctx = logger.SetRunID(ctx, run.ID)
	if *course != "" {
		ctx = logger.SetCourse(ctx, *course)
	}

	// Run
	stats := pipeline.Run(ctx, table, validTypes)

	// Persist the enriched dataset
	saveErr := table.Save(*outputPath)

	// Close out the ledger entry
	done := time.Now()
	run.Succeeded = stats.Success
	run.Skipped = stats.Skipped
	run.Errored = stats.Errored
	run.CompletedAt = &done
	run.Status = domain.RunStatusCompleted
	if saveErr != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorLog = saveErr.Error()
	}
	if err := runRepo.Update(context.Background(), run); err != nil {
		appLogger.WithError(err).Error("Failed to update run record")
	}
	if saveErr != nil {
		appLogger.WithError(saveErr).Fatal("Failed to save dataset")
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldRunID: run.ID,
		"success":         stats.Success,
		"skipped":         stats.Skipped,
		"errors":          stats.Errored,
		"elapsed_s":       stats.Elapsed.Seconds(),
	}).Info("Pipeline completed")
	appLogger.WithField("deployment_types", table.ValueCounts(dataset.ColDeployment)).Info("Deployment type distribution")
	appLogger.WithField("cloud_providers", table.ValueCounts(dataset.ColCloud)).Info("Cloud provider distribution")

	// Optional dataset publishing
	if *publish && cfg.Storage.Enabled {
		store, err := storage.NewS3Storage(&storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		key := "datasets/" + run.ID + ".csv"
		url, err := storage.PublishFile(context.Background(), store, *outputPath, key, "text/csv")
		if err != nil {
			appLogger.WithError(err).Error("Failed to publish dataset")
		} else {
			appLogger.WithField("url", url).Info("Dataset published")
		}
	}
}
