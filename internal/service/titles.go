package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"projlens/internal/logger"
	"projlens/internal/prompts"
)

const (
	summaryPerFileChars = 2000
	summaryTotalChars   = 6000
	summaryMaxTokens    = 100
	titlesMaxTokens     = 200

	// regenerateThreshold triggers one extra generation round when even the
	// best candidate scores below it.
	regenerateThreshold = 3
)

// TitleGenerator produces a short human-readable title for a project via a
// summarize / generate / score / revise protocol.
type TitleGenerator struct {
	llm completer
}

// NewTitleGenerator creates a TitleGenerator.
func NewTitleGenerator(c completer) *TitleGenerator {
	return &TitleGenerator{llm: c}
}

// CombineFileContent renders fetched files into the compact block the
// summary call works from.
func CombineFileContent(files map[string]string, order []string) string {
	var b strings.Builder
	for _, path := range order {
		content := files[path]
		if len(content) > summaryPerFileChars {
			content = content[:summaryPerFileChars]
		}
		fmt.Fprintf(&b, "\n=== %s ===\n%s", path, content)
	}
	combined := b.String()
	if len(combined) > summaryTotalChars {
		combined = combined[:summaryTotalChars]
	}
	return combined
}

// GenerateSummary condenses combined file content into one sentence.
// Returns "" on any failure, which short-circuits the title flow.
func (g *TitleGenerator) GenerateSummary(ctx context.Context, content string) string {
	text, _, err := g.llm.Complete(ctx, prompts.BuildSummaryPrompt(content), summaryMaxTokens, 0.0)
	if err != nil {
		logger.CtxWarn(ctx, "Summary call failed: %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// GenerateTitles asks for five candidate titles and parses them out of the
// response, stripping list markers and deduplicating. Returns nil on any
// failure.
func (g *TitleGenerator) GenerateTitles(ctx context.Context, projectURL, summary, deploymentType string) []string {
	text, _, err := g.llm.Complete(ctx, prompts.BuildTitlePrompt(projectURL, summary, deploymentType), titlesMaxTokens, 0.7)
	if err != nil {
		logger.CtxWarn(ctx, "Title call failed for %s: %v", projectURL, err)
		return nil
	}
	return parseTitleList(text)
}

// parseTitleList splits model output into candidate titles, stripping
// numeric and dash/asterisk bullets plus surrounding quotes.
func parseTitleList(text string) []string {
	seen := make(map[string]bool)
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		title := strings.TrimSpace(line)
		// "1. Title" / "2) Title" bullets; bare leading digits stay.
		if trimmed := strings.TrimLeft(title, "0123456789"); trimmed != title &&
			(strings.HasPrefix(trimmed, ".") || strings.HasPrefix(trimmed, ")")) {
			title = trimmed[1:]
		}
		title = strings.TrimSpace(title)
		title = strings.TrimPrefix(title, "- ")
		title = strings.TrimPrefix(title, "* ")
		title = strings.Trim(title, `"' `)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
	}
	return titles
}

// EvaluateTitle scores one candidate: +2 for a 3-5 word length (else -1),
// +1 per word that also appears among URL or summary tokens, -1 per
// occurrence of a generic stoplist term, +1 for a colon or dash.
func EvaluateTitle(title, projectURL, summary string) int {
	score := 0

	words := tokenize(title)
	if len(words) >= 3 && len(words) <= 5 {
		score += 2
	} else {
		score--
	}

	known := make(map[string]bool)
	for _, tok := range tokenize(projectURL) {
		known[tok] = true
	}
	for _, tok := range tokenize(summary) {
		known[tok] = true
	}
	for _, w := range words {
		if known[w] {
			score++
		}
	}

	titleLower := strings.ToLower(title)
	for _, term := range prompts.GenericTitleTerms {
		score -= strings.Count(titleLower, term)
	}

	if strings.ContainsAny(title, ":-") {
		score++
	}

	return score
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// EvaluateAndReviseTitles scores all candidates and picks the best. When
// even the best scores below the threshold, one extra generation round is
// requested and the max is recomputed over the union. Exactly one retry,
// whatever the resulting score.
func (g *TitleGenerator) EvaluateAndReviseTitles(ctx context.Context, titles []string, projectURL, summary string) (feedback, best string) {
	best, bestScore := pickBest(titles, projectURL, summary)

	if bestScore < regenerateThreshold {
		logger.CtxDebug(ctx, "Best title %q scored %d, regenerating", best, bestScore)
		extra := g.GenerateTitles(ctx, projectURL, summary, "")
		if len(extra) > 0 {
			best, bestScore = pickBest(append(titles, extra...), projectURL, summary)
		}
	}

	feedback = fmt.Sprintf("Best title: %q (score %d)", best, bestScore)
	return feedback, best
}

func pickBest(titles []string, projectURL, summary string) (string, int) {
	best := ""
	bestScore := 0
	for i, title := range titles {
		score := EvaluateTitle(title, projectURL, summary)
		if i == 0 || score > bestScore {
			best, bestScore = title, score
		}
	}
	return best, bestScore
}
