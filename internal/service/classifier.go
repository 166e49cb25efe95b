package service

import (
	"context"
	"strings"

	"projlens/internal/analyzer"
	"projlens/internal/domain"
	"projlens/internal/llm"
	"projlens/internal/logger"
	"projlens/internal/prompts"
)

const (
	classifyPerFileChars = 3000
	classifyTotalChars   = 12000
	classifyMaxTokens    = 300
)

// completer is the single LLM call every service component needs. Satisfied
// by *llm.Client; tests substitute a fake.
type completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, *llm.Usage, error)
}

// Classifier determines the deployment architecture and cloud provider of a
// project from its fetched key files.
type Classifier struct {
	llm completer
}

// NewClassifier creates a Classifier.
func NewClassifier(c completer) *Classifier {
	return &Classifier{llm: c}
}

// Classify builds the constrained-vocabulary prompt, calls the LLM and
// parses the response. Any failure yields the default Unknown result; a
// classification never fails a project.
func (c *Classifier) Classify(ctx context.Context, projectURL string, repoCtx *domain.RepoContext, validDeploymentTypes []string) domain.ClassificationResult {
	filesBlock := analyzer.FormatForPrompt(repoCtx.Files, repoCtx.Order, classifyPerFileChars, classifyTotalChars)
	prompt := prompts.BuildClassificationPrompt(projectURL, filesBlock, validDeploymentTypes)

	text, _, err := c.llm.Complete(ctx, prompt, classifyMaxTokens, 0.0)
	if err != nil {
		logger.CtxWarn(ctx, "Classification call failed for %s: %v", projectURL, err)
		return defaultClassification()
	}

	return parseClassificationResponse(text)
}

func defaultClassification() domain.ClassificationResult {
	return domain.ClassificationResult{
		DeploymentType:   domain.ValueUnknown,
		DeploymentReason: "Could not classify",
		CloudProvider:    domain.ValueUnknown,
		CloudReason:      "Could not classify",
	}
}

// parseClassificationResponse extracts the 4-line keyed format from model
// output. It tolerates extra prose, reordered lines and case drift; values
// are normalized by substring so verbose answers still land in the taxonomy.
func parseClassificationResponse(text string) domain.ClassificationResult {
	result := defaultClassification()

	var rawDeployment, rawCloud string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		switch {
		// The longer prefixes must win over their "DEPLOYMENT:"/"CLOUD:" stems.
		case strings.HasPrefix(upper, "DEPLOYMENT_REASON:"):
			result.DeploymentReason = strings.TrimSpace(line[len("DEPLOYMENT_REASON:"):])
		case strings.HasPrefix(upper, "DEPLOYMENT:"):
			rawDeployment = strings.TrimSpace(line[len("DEPLOYMENT:"):])
		case strings.HasPrefix(upper, "CLOUD_REASON:"):
			result.CloudReason = strings.TrimSpace(line[len("CLOUD_REASON:"):])
		case strings.HasPrefix(upper, "CLOUD:"):
			rawCloud = strings.TrimSpace(line[len("CLOUD:"):])
		}
	}

	result.DeploymentType = normalizeDeployment(rawDeployment)
	result.CloudProvider = normalizeCloud(rawCloud)
	return result
}

// normalizeDeployment maps a freeform deployment answer onto the taxonomy.
// Multiple matches are comma-joined in a fixed order so "Streaming and
// Batch" and "Batch, Streaming" normalize identically.
func normalizeDeployment(raw string) string {
	lower := strings.ToLower(raw)

	var matched []string
	if strings.Contains(lower, "batch") {
		matched = append(matched, domain.DeploymentBatch)
	}
	if strings.Contains(lower, "stream") {
		matched = append(matched, domain.DeploymentStreaming)
	}
	if strings.Contains(lower, "web") || strings.Contains(lower, "service") {
		matched = append(matched, domain.DeploymentWebService)
	}

	if len(matched) == 0 {
		return domain.ValueUnknown
	}
	return strings.Join(matched, ", ")
}

// normalizeCloud maps provider aliases onto the taxonomy. Unmapped non-empty
// answers pass through raw rather than being guessed at.
func normalizeCloud(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return domain.ValueUnknown
	case strings.Contains(lower, "gcp"), strings.Contains(lower, "google"):
		return domain.CloudGCP
	case strings.Contains(lower, "aws"), strings.Contains(lower, "amazon"):
		return domain.CloudAWS
	case strings.Contains(lower, "azure"):
		return domain.CloudAzure
	case strings.Contains(lower, "unknown"):
		return domain.ValueUnknown
	}
	return raw
}
