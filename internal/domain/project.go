package domain

// Deployment type taxonomy. Combinations are comma-joined in this order,
// e.g. "Batch, Streaming".
const (
	DeploymentBatch      = "Batch"
	DeploymentStreaming  = "Streaming"
	DeploymentWebService = "Web Service"
)

// Cloud provider taxonomy.
const (
	CloudGCP   = "GCP"
	CloudAWS   = "AWS"
	CloudAzure = "Azure"
)

// Sentinel values shared by all classification fields.
const (
	ValueUnknown = "Unknown"
	ValueError   = "Error"
)

// ProjectRecord is one row of the dataset: a submitted project URL plus the
// enrichment fields the pipeline fills in. Empty strings mean "not yet set".
type ProjectRecord struct {
	Index          int
	ProjectURL     string
	ProjectTitle   string
	DeploymentType string
	Reason         string
	Cloud          string
}

// FullyProcessed reports whether the record already has both a usable title
// and a usable deployment type, in which case a re-run skips it entirely.
func (r ProjectRecord) FullyProcessed() bool {
	return usable(r.ProjectTitle) && usable(r.DeploymentType)
}

// NeedsClassification reports whether the deployment fields still have to be
// produced.
func (r ProjectRecord) NeedsClassification() bool {
	return r.DeploymentType == "" || r.DeploymentType == ValueUnknown
}

// NeedsTitle reports whether a title still has to be generated.
func (r ProjectRecord) NeedsTitle() bool {
	return r.ProjectTitle == ""
}

func usable(v string) bool {
	return v != "" && v != ValueUnknown && v != ValueError
}

// RepoContext is the bounded slice of a repository handed to the LLM:
// resolved coordinates plus the fetched key files. Files preserves the
// selection order of the paths in Order.
type RepoContext struct {
	Owner   string
	Repo    string
	Subpath string
	Files   map[string]string
	Order   []string
}

// Empty reports whether resolution failed or nothing could be fetched.
func (rc *RepoContext) Empty() bool {
	return rc == nil || len(rc.Files) == 0
}

// ClassificationResult is the parsed outcome of one classification call.
type ClassificationResult struct {
	DeploymentType   string
	DeploymentReason string
	CloudProvider    string
	CloudReason      string
}

// ProcessStatus is the per-project outcome category.
type ProcessStatus string

const (
	StatusSuccess ProcessStatus = "success"
	StatusSkipped ProcessStatus = "skipped"
	StatusError   ProcessStatus = "error"
)

// ProcessResult carries one worker's output back to the merge step. Empty
// field values mean "leave the cell as it was".
type ProcessResult struct {
	Index          int
	ProjectTitle   string
	DeploymentType string
	Reason         string
	Cloud          string
	Status         ProcessStatus
}
