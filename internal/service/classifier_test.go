package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"projlens/internal/domain"
	"projlens/internal/llm"
)

// fakeCompleter scripts LLM responses for tests. With respond set, the
// response is chosen per prompt; otherwise responses are consumed in order
// and the last one repeats.
type fakeCompleter struct {
	mu        sync.Mutex
	respond   func(prompt string) string
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, *llm.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", nil, f.err
	}
	if f.respond != nil {
		return f.respond(prompt), &llm.Usage{TotalTokens: 10}, nil
	}
	if len(f.responses) == 0 {
		return "", &llm.Usage{TotalTokens: 10}, nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, &llm.Usage{TotalTokens: 10}, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testRepoContext() *domain.RepoContext {
	return &domain.RepoContext{
		Owner: "user",
		Repo:  "repo",
		Files: map[string]string{"README.md": "An Airflow pipeline loading taxi data into BigQuery"},
		Order: []string{"README.md"},
	}
}

func TestClassify(t *testing.T) {
	t.Run("parses well formed response", func(t *testing.T) {
		fake := &fakeCompleter{responses: []string{
			"DEPLOYMENT: Batch\nDEPLOYMENT_REASON: Airflow DAGs in dags/\nCLOUD: GCP\nCLOUD_REASON: BigQuery tables",
		}}
		c := NewClassifier(fake)

		got := c.Classify(context.Background(), "https://github.com/user/repo", testRepoContext(), []string{"Batch", "Streaming", "Web Service"})
		if got.DeploymentType != domain.DeploymentBatch {
			t.Errorf("expected deployment %q, got %q", domain.DeploymentBatch, got.DeploymentType)
		}
		if got.DeploymentReason != "Airflow DAGs in dags/" {
			t.Errorf("unexpected deployment reason %q", got.DeploymentReason)
		}
		if got.CloudProvider != domain.CloudGCP {
			t.Errorf("expected cloud %q, got %q", domain.CloudGCP, got.CloudProvider)
		}
		if got.CloudReason != "BigQuery tables" {
			t.Errorf("unexpected cloud reason %q", got.CloudReason)
		}
	})

	t.Run("LLM failure yields default", func(t *testing.T) {
		fake := &fakeCompleter{err: errors.New("boom")}
		c := NewClassifier(fake)

		got := c.Classify(context.Background(), "https://github.com/user/repo", testRepoContext(), []string{"Batch"})
		if got.DeploymentType != domain.ValueUnknown || got.CloudProvider != domain.ValueUnknown {
			t.Errorf("expected Unknown classification, got %+v", got)
		}
		if got.DeploymentReason != "Could not classify" {
			t.Errorf("unexpected reason %q", got.DeploymentReason)
		}
	})

	t.Run("prompt carries files and valid types", func(t *testing.T) {
		fake := &fakeCompleter{}
		c := NewClassifier(fake)

		c.Classify(context.Background(), "https://github.com/user/repo", testRepoContext(), []string{"Batch", "Streaming"})
		if len(fake.prompts) != 1 {
			t.Fatalf("expected 1 call, got %d", len(fake.prompts))
		}
		prompt := fake.prompts[0]
		if !strings.Contains(prompt, "README.md") {
			t.Error("prompt missing file block")
		}
		if !strings.Contains(prompt, "- Batch:") || !strings.Contains(prompt, "- Streaming:") {
			t.Error("prompt missing valid deployment types")
		}
		if strings.Contains(prompt, "- Web Service:") {
			t.Error("prompt offers a deployment type outside the course vocabulary")
		}
	})
}

func TestParseClassificationResponse(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		wantDeployment   string
		wantDeployReason string
		wantCloud        string
		wantCloudReason  string
	}{
		{
			name:             "canonical four lines",
			text:             "DEPLOYMENT: Batch\nDEPLOYMENT_REASON: Uses Airflow\nCLOUD: GCP\nCLOUD_REASON: Uses BigQuery",
			wantDeployment:   "Batch",
			wantDeployReason: "Uses Airflow",
			wantCloud:        "GCP",
			wantCloudReason:  "Uses BigQuery",
		},
		{
			name:             "combined deployment joined in fixed order",
			text:             "DEPLOYMENT: Streaming and Batch\nDEPLOYMENT_REASON: Kafka plus DAGs\nCLOUD: AWS\nCLOUD_REASON: Kinesis",
			wantDeployment:   "Batch, Streaming",
			wantDeployReason: "Kafka plus DAGs",
			wantCloud:        "AWS",
			wantCloudReason:  "Kinesis",
		},
		{
			name:             "verbose cloud answers normalized",
			text:             "DEPLOYMENT: web service\nDEPLOYMENT_REASON: FastAPI app\nCLOUD: Google Cloud Platform\nCLOUD_REASON: GCS bucket",
			wantDeployment:   "Web Service",
			wantDeployReason: "FastAPI app",
			wantCloud:        "GCP",
			wantCloudReason:  "GCS bucket",
		},
		{
			name:             "amazon alias",
			text:             "DEPLOYMENT: Batch\nDEPLOYMENT_REASON: cron\nCLOUD: Amazon Web Services\nCLOUD_REASON: S3",
			wantDeployment:   "Batch",
			wantDeployReason: "cron",
			wantCloud:        "AWS",
			wantCloudReason:  "S3",
		},
		{
			name:             "unmapped cloud passes through raw",
			text:             "DEPLOYMENT: Batch\nDEPLOYMENT_REASON: cron\nCLOUD: DigitalOcean\nCLOUD_REASON: droplet",
			wantDeployment:   "Batch",
			wantDeployReason: "cron",
			wantCloud:        "DigitalOcean",
			wantCloudReason:  "droplet",
		},
		{
			name:             "surrounding prose tolerated",
			text:             "Sure, here is the classification:\n\ndeployment: Streaming\ndeployment_reason: Flink job\ncloud: unknown\ncloud_reason: runs locally\n\nLet me know if you need more.",
			wantDeployment:   "Streaming",
			wantDeployReason: "Flink job",
			wantCloud:        "Unknown",
			wantCloudReason:  "runs locally",
		},
		{
			name:             "garbage falls back to defaults",
			text:             "I cannot tell what this project is.",
			wantDeployment:   "Unknown",
			wantDeployReason: "Could not classify",
			wantCloud:        "Unknown",
			wantCloudReason:  "Could not classify",
		},
		{
			name:             "empty response",
			text:             "",
			wantDeployment:   "Unknown",
			wantDeployReason: "Could not classify",
			wantCloud:        "Unknown",
			wantCloudReason:  "Could not classify",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseClassificationResponse(tt.text)
			if got.DeploymentType != tt.wantDeployment {
				t.Errorf("deployment: expected %q, got %q", tt.wantDeployment, got.DeploymentType)
			}
			if got.DeploymentReason != tt.wantDeployReason {
				t.Errorf("deployment reason: expected %q, got %q", tt.wantDeployReason, got.DeploymentReason)
			}
			if got.CloudProvider != tt.wantCloud {
				t.Errorf("cloud: expected %q, got %q", tt.wantCloud, got.CloudProvider)
			}
			if got.CloudReason != tt.wantCloudReason {
				t.Errorf("cloud reason: expected %q, got %q", tt.wantCloudReason, got.CloudReason)
			}
		})
	}
}

func TestNormalizeDeployment(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Batch", "Batch"},
		{"batch processing", "Batch"},
		{"Streaming", "Streaming"},
		{"Web Service", "Web Service"},
		{"web service", "Web Service"},
		{"Batch, Streaming", "Batch, Streaming"},
		{"Streaming and Batch", "Batch, Streaming"},
		{"", "Unknown"},
		{"no idea", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := normalizeDeployment(tt.raw); got != tt.want {
				t.Errorf("normalizeDeployment(%q) = %q, expected %q", tt.raw, got, tt.want)
			}
		})
	}
}
