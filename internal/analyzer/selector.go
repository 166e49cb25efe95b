package analyzer

import (
	"sort"
	"strings"
)

// keyFiles are filenames with high value for classification and title
// generation. Matched as substrings of the lowercased basename, so
// "README.md" also catches "README.dev.md".
var keyFiles = []string{
	"readme.md",
	"readme",
	"docker-compose.yml",
	"docker-compose.yaml",
	"requirements.txt",
	"pyproject.toml",
	"dockerfile",
	"makefile",
	"setup.py",
}

// keyPatterns are path substrings that indicate the deployment architecture:
// Terraform for cloud, dags/airflow/kestra/prefect/mage for batch
// orchestration, kafka/flink for streaming.
var keyPatterns = []string{
	".tf",
	"dags/",
	"terraform/",
	"airflow/",
	"kafka",
	"flink",
	"kestra",
	"prefect",
	"mage",
}

// excludedExtensions are binary, media and data files that carry no signal.
var excludedExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
	".pdf", ".zip", ".gz", ".tar", ".rar",
	".csv", ".parquet", ".pkl", ".h5", ".bin",
	".exe", ".dll", ".so",
	".lock", ".log",
	".mp3", ".mp4", ".wav", ".avi",
}

var excludedDirs = []string{
	"/node_modules/", "/__pycache__/", "/.git/", "/venv/", "/.venv/",
}

// shouldFetch reports whether a repository file is worth fetching. With a
// subpath set, only files under it pass, except root-level config files.
func shouldFetch(filepath, subpath string) bool {
	fpLower := strings.ToLower(filepath)

	if subpath != "" {
		subpathLower := strings.ToLower(subpath)
		if !strings.HasPrefix(fpLower, subpathLower+"/") && fpLower != subpathLower {
			if strings.Contains(filepath, "/") {
				return false
			}
		}
	}

	for _, ext := range excludedExtensions {
		if strings.HasSuffix(fpLower, ext) {
			return false
		}
	}

	for _, dir := range excludedDirs {
		if strings.Contains(fpLower, dir) {
			return false
		}
	}

	filename := fpLower
	if idx := strings.LastIndex(fpLower, "/"); idx != -1 {
		filename = fpLower[idx+1:]
	}
	for _, kf := range keyFiles {
		if strings.Contains(filename, kf) {
			return true
		}
	}

	for _, pattern := range keyPatterns {
		if strings.Contains(fpLower, pattern) {
			return true
		}
	}

	return false
}

// SelectFiles filters a repository tree down to the candidate files and
// orders them: subpath files first, then shallower paths, then lexically.
// At most maxFiles paths are returned.
func SelectFiles(tree []string, subpath string, maxFiles int) []string {
	selected := make([]string, 0, maxFiles)
	for _, path := range tree {
		if shouldFetch(path, subpath) {
			selected = append(selected, path)
		}
	}

	subpathLower := strings.ToLower(subpath)
	rank := func(path string) int {
		if subpath != "" && strings.HasPrefix(strings.ToLower(path), subpathLower+"/") {
			return -1
		}
		return 0
	}

	sort.Slice(selected, func(i, j int) bool {
		ri, rj := rank(selected[i]), rank(selected[j])
		if ri != rj {
			return ri < rj
		}
		di, dj := strings.Count(selected[i], "/"), strings.Count(selected[j], "/")
		if di != dj {
			return di < dj
		}
		return selected[i] < selected[j]
	})

	if len(selected) > maxFiles {
		selected = selected[:maxFiles]
	}
	return selected
}
