package analyzer

import (
	"testing"
)

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		wantOwner   string
		wantRepo    string
		wantSubpath string
	}{
		{
			name:      "plain repository URL",
			url:       "https://github.com/user/repo",
			wantOwner: "user",
			wantRepo:  "repo",
		},
		{
			name:      "trailing slash stripped",
			url:       "https://github.com/user/repo/",
			wantOwner: "user",
			wantRepo:  "repo",
		},
		{
			name:      "dot git suffix stripped",
			url:       "https://github.com/user/repo.git",
			wantOwner: "user",
			wantRepo:  "repo",
		},
		{
			name:        "tree URL yields subpath without branch",
			url:         "https://github.com/user/repo/tree/main/projects/capstone",
			wantOwner:   "user",
			wantRepo:    "repo",
			wantSubpath: "projects/capstone",
		},
		{
			name:        "subpath keeps original case",
			url:         "https://github.com/user/repo/tree/master/My-Project",
			wantOwner:   "user",
			wantRepo:    "repo",
			wantSubpath: "My-Project",
		},
		{
			name:        "blob URL treated like tree",
			url:         "https://github.com/user/repo/blob/main/projects/capstone",
			wantOwner:   "user",
			wantRepo:    "repo",
			wantSubpath: "projects/capstone",
		},
		{
			name:      "tree URL with branch only has no subpath",
			url:       "https://github.com/user/repo/tree/main",
			wantOwner: "user",
			wantRepo:  "repo",
		},
		{
			name: "not a url",
			url:  "not-a-url",
		},
		{
			name: "empty string",
			url:  "",
		},
		{
			name: "owner only",
			url:  "https://github.com/user",
		},
		{
			name: "empty path segments",
			url:  "https://github.com//repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, subpath := ParseGitHubURL(tt.url)
			if owner != tt.wantOwner {
				t.Errorf("owner: expected %q, got %q", tt.wantOwner, owner)
			}
			if repo != tt.wantRepo {
				t.Errorf("repo: expected %q, got %q", tt.wantRepo, repo)
			}
			if subpath != tt.wantSubpath {
				t.Errorf("subpath: expected %q, got %q", tt.wantSubpath, subpath)
			}
		})
	}
}

func TestReadmeCandidateURLs(t *testing.T) {
	t.Run("repo root", func(t *testing.T) {
		urls := ReadmeCandidateURLs("https://github.com/user/repo")
		if len(urls) != 1 {
			t.Fatalf("expected 1 URL, got %d", len(urls))
		}
		if urls[0] != "https://api.github.com/repos/user/repo/readme" {
			t.Errorf("unexpected URL: %s", urls[0])
		}
	})

	t.Run("subpath tried before repo readme", func(t *testing.T) {
		urls := ReadmeCandidateURLs("https://github.com/user/repo/tree/main/sub/dir")
		if len(urls) != 2 {
			t.Fatalf("expected 2 URLs, got %d", len(urls))
		}
		if urls[0] != "https://api.github.com/repos/user/repo/contents/sub/dir/README.md" {
			t.Errorf("unexpected first URL: %s", urls[0])
		}
		if urls[1] != "https://api.github.com/repos/user/repo/readme" {
			t.Errorf("unexpected second URL: %s", urls[1])
		}
	})

	t.Run("unparseable URL", func(t *testing.T) {
		if urls := ReadmeCandidateURLs("not-a-url"); urls != nil {
			t.Errorf("expected nil, got %v", urls)
		}
	})
}
