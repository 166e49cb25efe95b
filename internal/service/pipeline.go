package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"projlens/internal/dataset"
	"projlens/internal/domain"
	"projlens/internal/logger"
)

const errorReasonMaxChars = 100

// RepoAnalyzer is the repository side of per-project processing. Satisfied
// by *analyzer.Analyzer; tests substitute a fake.
type RepoAnalyzer interface {
	AnalyzeRepo(ctx context.Context, projectURL string) (*domain.RepoContext, error)
}

// PipelineConfig holds orchestrator settings.
type PipelineConfig struct {
	Workers int
}

// Pipeline fans one unit of work per dataset row across a bounded worker
// pool and merges results back into the shared table.
type Pipeline struct {
	analyzer   RepoAnalyzer
	classifier *Classifier
	titles     *TitleGenerator
	workers    int
}

// NewPipeline creates a Pipeline. A nil config uses 5 workers.
func NewPipeline(analyzer RepoAnalyzer, classifier *Classifier, titles *TitleGenerator, cfg *PipelineConfig) *Pipeline {
	workers := 5
	if cfg != nil && cfg.Workers > 0 {
		workers = cfg.Workers
	}
	return &Pipeline{
		analyzer:   analyzer,
		classifier: classifier,
		titles:     titles,
		workers:    workers,
	}
}

// RunStats aggregates per-run tallies for the summary report.
type RunStats struct {
	Total   int
	Success int
	Skipped int
	Errored int
	Elapsed time.Duration
}

// counter tracks success/skip/error tallies under its own lock, kept
// separate from the table lock so progress accounting never contends with
// row merges.
type counter struct {
	mu      sync.Mutex
	success int
	skip    int
	errored int
}

func (c *counter) incSuccess() {
	c.mu.Lock()
	c.success++
	c.mu.Unlock()
}

func (c *counter) incSkip() {
	c.mu.Lock()
	c.skip++
	c.mu.Unlock()
}

func (c *counter) incError() {
	c.mu.Lock()
	c.errored++
	c.mu.Unlock()
}

func (c *counter) snapshot() (success, skip, errored int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.success, c.skip, c.errored
}

// Run processes every row of the table concurrently and merges results by
// row index, then applies the mojibake and title cleanup passes. Results
// may arrive in any order; row positions never change.
func (p *Pipeline) Run(ctx context.Context, table *dataset.Table, validDeploymentTypes []string) *RunStats {
	start := time.Now()

	table.EnsureColumns(dataset.ColTitle, dataset.ColDeployment, dataset.ColReason, dataset.ColCloud)

	records := table.Records()
	total := len(records)
	logger.CtxInfo(ctx, "Processing %d projects with %d workers", total, p.workers)

	recordsChan := make(chan domain.ProjectRecord, total)
	for _, rec := range records {
		recordsChan <- rec
	}
	close(recordsChan)

	var tableMu sync.Mutex
	cnt := &counter{}

	workers := p.workers
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range recordsChan {
				itemCtx := logger.SetProjectURL(ctx, rec.ProjectURL)
				result := p.ProcessSingleProject(itemCtx, rec, validDeploymentTypes)

				// Hold the table lock for the merge only, never for I/O.
				tableMu.Lock()
				table.ApplyResult(result)
				tableMu.Unlock()

				switch result.Status {
				case domain.StatusSuccess:
					cnt.incSuccess()
				case domain.StatusSkipped:
					cnt.incSkip()
				default:
					cnt.incError()
				}
			}
		}()
	}
	wg.Wait()

	table.FixMojibakeColumns(dataset.ColTitle, dataset.ColReason)
	table.CleanTitles()

	success, skip, errored := cnt.snapshot()
	stats := &RunStats{
		Total:   total,
		Success: success,
		Skipped: skip,
		Errored: errored,
		Elapsed: time.Since(start),
	}
	logger.CtxInfo(ctx, "Run complete: %d success, %d skipped, %d errors in %.1fs",
		stats.Success, stats.Skipped, stats.Errored, stats.Elapsed.Seconds())
	return stats
}

// ProcessSingleProject is the per-row unit of work. It evaluates the skip
// predicate before any network call, short-circuits repositories with no
// fetchable files, classifies and titles only the fields still missing, and
// maps every fault into an explicit status. Nothing it does can fail the
// batch.
func (p *Pipeline) ProcessSingleProject(ctx context.Context, rec domain.ProjectRecord, validDeploymentTypes []string) (result domain.ProcessResult) {
	result = domain.ProcessResult{
		Index:          rec.Index,
		ProjectTitle:   rec.ProjectTitle,
		DeploymentType: rec.DeploymentType,
		Reason:         rec.Reason,
		Cloud:          rec.Cloud,
		Status:         domain.StatusSuccess,
	}

	if rec.FullyProcessed() {
		result.Status = domain.StatusSkipped
		return result
	}

	// Outermost safety net: a panic in any component marks this row as an
	// error instead of killing the worker.
	defer func() {
		if r := recover(); r != nil {
			result = errorResult(result, fmt.Errorf("%v", r))
		}
	}()

	repoCtx, err := p.analyzer.AnalyzeRepo(ctx, rec.ProjectURL)
	if err != nil {
		logger.CtxError(ctx, "Error processing %s: %v", rec.ProjectURL, err)
		return errorResult(result, err)
	}

	if repoCtx.Empty() {
		logger.CtxWarn(ctx, "No files fetched for %s", rec.ProjectURL)
		result.ProjectTitle = domain.ValueUnknown
		result.DeploymentType = domain.ValueUnknown
		result.Reason = "No files fetched"
		result.Cloud = domain.ValueUnknown
		result.Status = domain.StatusSkipped
		return result
	}

	// Classify first so title generation can honor the streaming/batch
	// vocabulary constraint.
	deploymentType := rec.DeploymentType
	if rec.NeedsClassification() {
		classification := p.classifier.Classify(ctx, rec.ProjectURL, repoCtx, validDeploymentTypes)
		deploymentType = classification.DeploymentType
		result.DeploymentType = classification.DeploymentType
		result.Reason = classification.DeploymentReason
		result.Cloud = classification.CloudProvider
	}

	if rec.NeedsTitle() {
		result.ProjectTitle = p.generateTitle(ctx, rec.ProjectURL, repoCtx, deploymentType)
	}

	result.Status = domain.StatusSuccess
	return result
}

func (p *Pipeline) generateTitle(ctx context.Context, projectURL string, repoCtx *domain.RepoContext, deploymentType string) string {
	combined := CombineFileContent(repoCtx.Files, repoCtx.Order)
	if combined == "" {
		return domain.ValueUnknown
	}

	summary := p.titles.GenerateSummary(ctx, combined)
	if summary == "" {
		return domain.ValueUnknown
	}

	candidates := p.titles.GenerateTitles(ctx, projectURL, summary, deploymentType)
	if len(candidates) == 0 {
		return domain.ValueUnknown
	}

	_, best := p.titles.EvaluateAndReviseTitles(ctx, candidates, projectURL, summary)
	if best == "" {
		return domain.ValueUnknown
	}
	return best
}

func errorResult(result domain.ProcessResult, err error) domain.ProcessResult {
	if result.ProjectTitle == "" {
		result.ProjectTitle = domain.ValueError
	}
	msg := err.Error()
	if len(msg) > errorReasonMaxChars {
		msg = msg[:errorReasonMaxChars]
	}
	result.DeploymentType = domain.ValueError
	result.Reason = msg
	result.Cloud = domain.ValueError
	result.Status = domain.StatusError
	return result
}
