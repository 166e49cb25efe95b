package github

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"projlens/internal/logger"
)

const (
	defaultBaseURL = "https://api.github.com"

	treeTimeout = 15 * time.Second
	fileTimeout = 10 * time.Second

	// maxContentChars caps decoded file content before it is handed to
	// prompt building. Enough for manifests and READMEs.
	maxContentChars = 8000
)

// Config holds GitHub API client configuration.
type Config struct {
	Token   string
	BaseURL string
}

// Client talks to the GitHub content API. All fetch methods degrade to empty
// results on failure so one bad repository never aborts a batch.
type Client struct {
	client *resty.Client
}

// NewClient creates a GitHub API client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/vnd.github.v3+json")

	if cfg.Token != "" {
		client.SetHeader("Authorization", "token "+cfg.Token)
	}

	return &Client{client: client}
}

type treeResponse struct {
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type contentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// GetRepoTree fetches the recursive file listing of a repository, trying
// branch main first and falling back to master. Returns blob paths only;
// an empty slice when neither branch resolves.
func (c *Client) GetRepoTree(ctx context.Context, owner, repo string) []string {
	for _, branch := range []string{"main", "master"} {
		paths, ok := c.fetchTree(ctx, owner, repo, branch)
		if ok {
			return paths
		}
	}
	logger.CtxDebug(ctx, "No tree found for %s/%s on main or master", owner, repo)
	return nil
}

func (c *Client) fetchTree(ctx context.Context, owner, repo, branch string) ([]string, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, treeTimeout)
	defer cancel()

	var result treeResponse
	resp, err := c.client.R().
		SetContext(reqCtx).
		SetResult(&result).
		Get("/repos/" + owner + "/" + repo + "/git/trees/" + branch + "?recursive=1")
	if err != nil {
		logger.CtxDebug(ctx, "Tree request failed for %s/%s@%s: %v", owner, repo, branch, err)
		return nil, false
	}
	if resp.IsError() {
		return nil, false
	}

	paths := make([]string, 0, len(result.Tree))
	for _, entry := range result.Tree {
		if entry.Type == "blob" {
			paths = append(paths, entry.Path)
		}
	}
	return paths, true
}

// FetchFileContent fetches one file via the contents API, decodes the base64
// payload and truncates it. Returns "" on any failure.
func (c *Client) FetchFileContent(ctx context.Context, owner, repo, path string) string {
	reqCtx, cancel := context.WithTimeout(ctx, fileTimeout)
	defer cancel()

	var result contentResponse
	resp, err := c.client.R().
		SetContext(reqCtx).
		SetResult(&result).
		Get("/repos/" + owner + "/" + repo + "/contents/" + path)
	if err != nil {
		logger.CtxDebug(ctx, "Content request failed for %s/%s %s: %v", owner, repo, path, err)
		return ""
	}
	if resp.IsError() {
		return ""
	}
	if result.Type != "file" || result.Content == "" {
		return ""
	}

	decoded, err := base64.StdEncoding.DecodeString(stripWhitespace(result.Content))
	if err != nil {
		logger.CtxDebug(ctx, "Base64 decode failed for %s/%s %s: %v", owner, repo, path, err)
		return ""
	}

	content := string(decoded)
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	return content
}

// The contents API wraps base64 payloads with newlines.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
}
