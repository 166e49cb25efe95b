package prompts

import (
	"fmt"
	"strings"
)

// ============================================================================
// Shared Lexicons
// ============================================================================

// GenericTitleTerms are overused title words that get penalized during
// scoring. Titles stuffed with these say nothing about the project.
var GenericTitleTerms = []string{
	"smart", "intelligent", "assistant", "hub", "companion",
}

// BannedTitleVocabulary is course/institutional vocabulary that must never
// appear in a generated title.
var BannedTitleVocabulary = []string{
	"zoomcamp", "bootcamp", "capstone", "final project", "course", "homework",
}

// deploymentSignals describes the canonical indicators of each deployment
// type, embedded into the classification prompt.
var deploymentSignals = map[string]string{
	"Batch":       "scheduled/orchestrated jobs (Airflow DAGs, Kestra, Prefect, Mage, cron, dbt runs)",
	"Streaming":   "message brokers and stream processors (Kafka, Flink, Kinesis, Pub/Sub consumers)",
	"Web Service": "API-serving frameworks (FastAPI, Flask, Django, Streamlit, Gradio, uvicorn/gunicorn)",
}

// ============================================================================
// Classification Prompt
// ============================================================================

// BuildClassificationPrompt renders the deployment/cloud classification
// prompt for one repository. Only the course-valid deployment types (plus
// Unknown) are offered to the model.
func BuildClassificationPrompt(projectURL, filesBlock string, validDeploymentTypes []string) string {
	var types strings.Builder
	for _, t := range validDeploymentTypes {
		signal, ok := deploymentSignals[t]
		if !ok {
			signal = "no canonical signals"
		}
		fmt.Fprintf(&types, "- %s: %s\n", t, signal)
	}
	types.WriteString("- Unknown: use when no clear indicators are present\n")

	return fmt.Sprintf(`Analyze this GitHub project and classify its deployment architecture and cloud provider.

Repository: %s

Repository files:
%s

Deployment type must be one of the following (or a comma-separated combination, e.g. "Batch, Streaming", when multiple architectures clearly coexist):
%s
Cloud provider must be one of GCP, AWS, Azure, Other, Unknown. Signals:
- GCP: BigQuery, Dataproc, Cloud Storage buckets, terraform provider "google"
- AWS: S3, Redshift, Kinesis, Lambda, terraform provider "aws"
- Azure: Synapse, Data Factory, Blob Storage, terraform provider "azurerm"
- Other: a concrete non-big-three platform (e.g. DigitalOcean, Heroku)
- Unknown: runs locally or no cloud indicators

Answer in exactly this format:
DEPLOYMENT: <type or comma-separated combination>
DEPLOYMENT_REASON: <one sentence citing the files that show it>
CLOUD: <provider>
CLOUD_REASON: <one sentence citing the evidence>`, projectURL, filesBlock, types.String())
}

// ============================================================================
// Title Prompts
// ============================================================================

// BuildSummaryPrompt asks for a one-sentence summary of the combined file
// content, used as grounding for title generation.
func BuildSummaryPrompt(content string) string {
	return "Summarize what the following project does in one sentence. Be concrete about the domain and the data involved:\n" + content
}

// BuildTitlePrompt asks for five candidate titles. The deployment type
// steers the streaming vocabulary: batch projects must not be titled
// "Real-Time", streaming projects should be.
func BuildTitlePrompt(projectURL, summary, deploymentType string) string {
	var b strings.Builder

	b.WriteString("Generate 5 distinct short titles (3-5 words each) for this project.\n\n")
	fmt.Fprintf(&b, "Project URL: %s\nSummary: %s\n\n", projectURL, summary)

	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Never use course words: %s\n", strings.Join(BannedTitleVocabulary, ", "))
	b.WriteString("- Name the actual domain and data, not generic buzzwords\n")
	b.WriteString("- Do not invent technology names that are absent from the summary\n")

	switch {
	case strings.Contains(strings.ToLower(deploymentType), "streaming"):
		b.WriteString("- This is a STREAMING project: prefer words like Real-Time or Streaming in the titles\n")
	case deploymentType != "" && deploymentType != "Unknown":
		fmt.Fprintf(&b, "- This is a %s project, NOT streaming: never use \"Real-Time\", \"Streaming\" or \"Live\" in the titles\n", strings.ToUpper(deploymentType))
	}

	b.WriteString("\nReturn only the 5 titles, one per line.")
	return b.String()
}
