package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"projlens/internal/domain"
	"projlens/internal/github"
	"projlens/internal/logger"
)

const (
	defaultMaxFiles     = 10
	defaultFetchWorkers = 5
)

// Config holds repository analyzer settings.
type Config struct {
	MaxFiles     int // files fetched per repository
	FetchWorkers int // parallel content fetches
}

// Analyzer resolves a project URL and fetches the key files that give the
// LLM enough context to classify and title the project.
type Analyzer struct {
	github       *github.Client
	maxFiles     int
	fetchWorkers int
}

// New creates an Analyzer. A nil config uses the defaults.
func New(gh *github.Client, cfg *Config) *Analyzer {
	a := &Analyzer{
		github:       gh,
		maxFiles:     defaultMaxFiles,
		fetchWorkers: defaultFetchWorkers,
	}
	if cfg != nil {
		if cfg.MaxFiles > 0 {
			a.maxFiles = cfg.MaxFiles
		}
		if cfg.FetchWorkers > 0 {
			a.fetchWorkers = cfg.FetchWorkers
		}
	}
	return a
}

// AnalyzeRepo resolves a project URL and fetches its key files. An
// unparseable URL or an unreachable repository yields an empty context,
// never an error; the caller decides what an empty context means.
func (a *Analyzer) AnalyzeRepo(ctx context.Context, projectURL string) (*domain.RepoContext, error) {
	owner, repo, subpath := ParseGitHubURL(projectURL)
	if owner == "" || repo == "" {
		logger.CtxWarn(ctx, "Could not parse GitHub URL: %s", projectURL)
		return &domain.RepoContext{Files: map[string]string{}}, nil
	}

	files, order := a.FetchKeyFiles(ctx, owner, repo, subpath)

	return &domain.RepoContext{
		Owner:   owner,
		Repo:    repo,
		Subpath: subpath,
		Files:   files,
		Order:   order,
	}, ctx.Err()
}

// FetchKeyFiles lists the repository tree, selects the candidate files and
// fetches their contents with a bounded worker pool. Files that fail to
// fetch are dropped; the returned order preserves selection order for the
// paths that survived.
func (a *Analyzer) FetchKeyFiles(ctx context.Context, owner, repo, subpath string) (map[string]string, []string) {
	tree := a.github.GetRepoTree(ctx, owner, repo)
	if len(tree) == 0 {
		logger.CtxWarn(ctx, "Could not fetch tree for %s/%s", owner, repo)
		return map[string]string{}, nil
	}

	selected := SelectFiles(tree, subpath, a.maxFiles)

	files := make(map[string]string, len(selected))
	var mu sync.Mutex
	var wg sync.WaitGroup

	pathsChan := make(chan string, len(selected))
	for _, path := range selected {
		pathsChan <- path
	}
	close(pathsChan)

	workers := a.fetchWorkers
	if workers > len(selected) {
		workers = len(selected)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathsChan {
				content := a.github.FetchFileContent(ctx, owner, repo, path)
				if content == "" {
					continue
				}
				mu.Lock()
				files[path] = content
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	order := make([]string, 0, len(files))
	for _, path := range selected {
		if _, ok := files[path]; ok {
			order = append(order, path)
		}
	}
	return files, order
}

// FormatForPrompt renders fetched files as delimited blocks for a prompt,
// capping each file and the overall size. Truncation is marked so the model
// knows the context is partial.
func FormatForPrompt(files map[string]string, order []string, perFileChars, totalChars int) string {
	var b strings.Builder
	for _, path := range order {
		content := files[path]
		if len(content) > perFileChars {
			content = content[:perFileChars]
		}
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", path, content)

		if b.Len() > totalChars {
			return b.String()[:totalChars] + "\n[truncated...]"
		}
	}
	return b.String()
}
