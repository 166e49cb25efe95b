package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"projlens/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := writeCSV(t, "project_url,cohort,notes\nhttps://github.com/a/b,2025,first\nhttps://github.com/c/d,2025,\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}

	table.EnsureColumns(ColTitle, ColDeployment, ColReason, ColCloud)
	table.ApplyResult(domain.ProcessResult{
		Index:          0,
		ProjectTitle:   "Taxi Pipeline",
		DeploymentType: "Batch",
		Reason:         "Airflow DAGs",
		Cloud:          "GCP",
	})

	out := filepath.Join(t.TempDir(), "out.csv")
	if err := table.Save(out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := Load(out)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	wantHeaders := []string{"project_url", "cohort", "notes", ColTitle, ColDeployment, ColReason, ColCloud}
	if !reflect.DeepEqual(reloaded.Headers(), wantHeaders) {
		t.Errorf("expected headers %v, got %v", wantHeaders, reloaded.Headers())
	}
	// Unknown columns round-trip untouched
	if got := reloaded.Get(0, "cohort"); got != "2025" {
		t.Errorf("expected cohort 2025, got %q", got)
	}
	if got := reloaded.Get(0, ColTitle); got != "Taxi Pipeline" {
		t.Errorf("expected applied title, got %q", got)
	}
	if got := reloaded.Get(1, ColTitle); got != "" {
		t.Errorf("expected untouched row to stay empty, got %q", got)
	}
}

func TestLoadShortRowsPadded(t *testing.T) {
	path := writeCSV(t, "project_url,project_title\nhttps://github.com/a/b\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := table.Get(0, ColTitle); got != "" {
		t.Errorf("expected padded cell, got %q", got)
	}
}

func TestEnsureColumnsIdempotent(t *testing.T) {
	table := New([]string{ColProjectURL})
	table.AppendRow(map[string]string{ColProjectURL: "https://github.com/a/b"})

	table.EnsureColumns(ColTitle, ColTitle)
	table.EnsureColumns(ColTitle)

	want := []string{ColProjectURL, ColTitle}
	if !reflect.DeepEqual(table.Headers(), want) {
		t.Errorf("expected headers %v, got %v", want, table.Headers())
	}
}

func TestRecord(t *testing.T) {
	table := New([]string{ColProjectURL, ColTitle, ColDeployment, ColReason, ColCloud})
	table.AppendRow(map[string]string{
		ColProjectURL: "https://github.com/a/b",
		ColDeployment: "Batch",
	})

	rec := table.Record(0)
	if rec.Index != 0 || rec.ProjectURL != "https://github.com/a/b" || rec.DeploymentType != "Batch" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.ProjectTitle != "" {
		t.Errorf("expected empty title, got %q", rec.ProjectTitle)
	}
}

func TestCleanAndDeduplicate(t *testing.T) {
	table := New([]string{ColProjectURL, "notes"})
	table.AppendRow(map[string]string{ColProjectURL: "  https://github.com/a/b  ", "notes": "x"})
	table.AppendRow(map[string]string{ColProjectURL: "https://github.com/a/b", "notes": "y"})
	table.AppendRow(map[string]string{ColProjectURL: "", "notes": "blank"})
	table.AppendRow(map[string]string{ColProjectURL: "https://github.com/c/d"})

	table.CleanAndDeduplicate()

	if !reflect.DeepEqual(table.Headers(), []string{ColProjectURL}) {
		t.Errorf("expected single URL column, got %v", table.Headers())
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if got := table.Get(0, ColProjectURL); got != "https://github.com/a/b" {
		t.Errorf("expected trimmed first occurrence, got %q", got)
	}
	if got := table.Get(1, ColProjectURL); got != "https://github.com/c/d" {
		t.Errorf("unexpected second row %q", got)
	}
}

func TestCleanTitles(t *testing.T) {
	table := New([]string{ColProjectURL, ColTitle})
	table.AppendRow(map[string]string{ColTitle: `Title: "Taxi Pipeline"`})
	table.AppendRow(map[string]string{ColTitle: "Plain Title"})

	table.CleanTitles()

	if got := table.Get(0, ColTitle); got != "Taxi Pipeline" {
		t.Errorf("expected cleaned title, got %q", got)
	}
	if got := table.Get(1, ColTitle); got != "Plain Title" {
		t.Errorf("expected untouched title, got %q", got)
	}
}

func TestFixMojibakeColumns(t *testing.T) {
	table := New([]string{ColTitle, ColReason})
	table.AppendRow(map[string]string{ColTitle: "SÃ£o Paulo Pipeline", ColReason: "uses KrakÃ³w data"})

	table.FixMojibakeColumns(ColTitle, ColReason)

	if got := table.Get(0, ColTitle); got != "São Paulo Pipeline" {
		t.Errorf("expected repaired title, got %q", got)
	}
	if got := table.Get(0, ColReason); got != "uses Kraków data" {
		t.Errorf("expected repaired reason, got %q", got)
	}
}

func TestValueCountsAndLimit(t *testing.T) {
	table := New([]string{ColDeployment})
	for _, v := range []string{"Batch", "Batch", "Streaming", ""} {
		table.AppendRow(map[string]string{ColDeployment: v})
	}

	counts := table.ValueCounts(ColDeployment)
	if counts["Batch"] != 2 || counts["Streaming"] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
	if _, ok := counts[""]; ok {
		t.Error("empty cells must not be counted")
	}

	table.Limit(2)
	if table.Len() != 2 {
		t.Errorf("expected 2 rows after limit, got %d", table.Len())
	}
	table.Limit(10)
	if table.Len() != 2 {
		t.Errorf("limit above length must not grow the table, got %d", table.Len())
	}
}

func TestGetSetBounds(t *testing.T) {
	table := New([]string{ColProjectURL})
	table.AppendRow(map[string]string{ColProjectURL: "https://github.com/a/b"})

	if got := table.Get(5, ColProjectURL); got != "" {
		t.Errorf("expected empty for out-of-range row, got %q", got)
	}
	if got := table.Get(0, "missing"); got != "" {
		t.Errorf("expected empty for unknown column, got %q", got)
	}
	table.Set(5, ColProjectURL, "x")
	table.Set(0, "missing", "x")
	if got := table.Get(0, ColProjectURL); got != "https://github.com/a/b" {
		t.Errorf("out-of-range writes must be ignored, got %q", got)
	}
}
