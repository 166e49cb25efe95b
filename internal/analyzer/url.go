package analyzer

import (
	"fmt"
	"strings"
)

// ParseGitHubURL resolves a submitted project URL into owner, repo and an
// optional subpath (for projects living in a subdirectory, submitted as
// /tree/<branch>/<path> links). All three come back empty when the URL is
// not a usable GitHub repository reference.
func ParseGitHubURL(rawURL string) (owner, repo, subpath string) {
	url := strings.TrimRight(rawURL, "/")

	// /tree/branch/path and /blob/branch/path URLs point inside the
	// repository. The branch name is dropped; the path keeps its
	// original case.
	for _, marker := range []string{"/tree/", "/blob/"} {
		if !strings.Contains(url, marker) {
			continue
		}
		base, treePart, _ := strings.Cut(url, marker)
		if _, rest, ok := strings.Cut(treePart, "/"); ok && rest != "" {
			subpath = rest
		}
		url = base
		break
	}

	url = strings.TrimSuffix(url, ".git")

	parts := strings.Split(strings.TrimPrefix(url, "https://github.com/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ""
	}
	return parts[0], parts[1], subpath
}

// ReadmeCandidateURLs returns the GitHub API URLs to try, in order, when
// checking a project for a README: the subpath contents URL when the project
// lives in a subdirectory, then the repository-root readme endpoint.
func ReadmeCandidateURLs(projectURL string) []string {
	owner, repo, subpath := ParseGitHubURL(projectURL)
	if owner == "" || repo == "" {
		return nil
	}

	var urls []string
	if subpath != "" {
		urls = append(urls, fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/%s/README.md", owner, repo, subpath))
	}
	urls = append(urls, fmt.Sprintf("https://api.github.com/repos/%s/%s/readme", owner, repo))
	return urls
}
