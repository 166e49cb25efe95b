package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"projlens/internal/domain"
)

// Column names of the enrichment contract. The dataset may carry arbitrary
// extra columns; they round-trip untouched.
const (
	ColProjectURL = "project_url"
	ColTitle      = "project_title"
	ColDeployment = "Deployment Type"
	ColReason     = "Reason"
	ColCloud      = "Cloud"
)

// Table is an in-memory CSV dataset that preserves column order, unknown
// columns and row order across a load/enrich/save cycle. It is not
// goroutine-safe; the pipeline serializes writes through its own lock.
type Table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty table with the given columns.
func New(headers []string) *Table {
	t := &Table{headers: append([]string(nil), headers...)}
	t.reindex()
	return t
}

// Load reads a CSV file with a header row.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s has no header row", path)
	}

	t := New(records[0])
	for _, row := range records[1:] {
		padded := make([]string, len(t.headers))
		copy(padded, row)
		t.rows = append(t.rows, padded)
	}
	return t, nil
}

// Save writes the table back as CSV with a header row and no index column.
func (t *Table) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(t.headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.headers))
	for i, h := range t.headers {
		t.index[h] = i
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// EnsureColumns appends any missing columns, padding existing rows with
// empty cells.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		if _, ok := t.index[name]; ok {
			continue
		}
		t.headers = append(t.headers, name)
		t.index[name] = len(t.headers) - 1
		for i := range t.rows {
			t.rows[i] = append(t.rows[i], "")
		}
	}
}

// Get returns one cell; "" for an unknown column or out-of-range row.
func (t *Table) Get(row int, col string) string {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) || i >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][i]
}

// Set writes one cell. Unknown columns and out-of-range rows are ignored.
func (t *Table) Set(row int, col, value string) {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) || i >= len(t.rows[row]) {
		return
	}
	t.rows[row][i] = value
}

// AppendRow adds a row from a column-to-value mapping.
func (t *Table) AppendRow(values map[string]string) {
	row := make([]string, len(t.headers))
	for col, val := range values {
		if i, ok := t.index[col]; ok {
			row[i] = val
		}
	}
	t.rows = append(t.rows, row)
}

// Record extracts one row as a ProjectRecord.
func (t *Table) Record(row int) domain.ProjectRecord {
	return domain.ProjectRecord{
		Index:          row,
		ProjectURL:     t.Get(row, ColProjectURL),
		ProjectTitle:   t.Get(row, ColTitle),
		DeploymentType: t.Get(row, ColDeployment),
		Reason:         t.Get(row, ColReason),
		Cloud:          t.Get(row, ColCloud),
	}
}

// Records extracts all rows in order.
func (t *Table) Records() []domain.ProjectRecord {
	records := make([]domain.ProjectRecord, len(t.rows))
	for i := range t.rows {
		records[i] = t.Record(i)
	}
	return records
}

// ApplyResult merges one worker result into its row by index.
func (t *Table) ApplyResult(res domain.ProcessResult) {
	t.Set(res.Index, ColTitle, res.ProjectTitle)
	t.Set(res.Index, ColDeployment, res.DeploymentType)
	t.Set(res.Index, ColReason, res.Reason)
	t.Set(res.Index, ColCloud, res.Cloud)
}

// Limit truncates the table to its first n rows. Used as a testing knob.
func (t *Table) Limit(n int) {
	if n > 0 && n < len(t.rows) {
		t.rows = t.rows[:n]
	}
}

// ValueCounts tallies the distinct values of one column.
func (t *Table) ValueCounts(col string) map[string]int {
	counts := make(map[string]int)
	for i := range t.rows {
		if v := t.Get(i, col); v != "" {
			counts[v]++
		}
	}
	return counts
}

// CleanAndDeduplicate collapses a raw scraped table down to its URL column:
// blank rows dropped, whitespace trimmed, duplicates removed keeping the
// first occurrence.
func (t *Table) CleanAndDeduplicate() {
	urlIdx, ok := t.index[ColProjectURL]
	if !ok {
		return
	}

	seen := make(map[string]bool)
	var cleaned [][]string
	for _, row := range t.rows {
		url := ""
		if urlIdx < len(row) {
			url = strings.TrimSpace(row[urlIdx])
		}
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		cleaned = append(cleaned, []string{url})
	}

	t.headers = []string{ColProjectURL}
	t.rows = cleaned
	t.reindex()
}

// FixMojibakeColumns repairs encoding artifacts in the given text columns.
func (t *Table) FixMojibakeColumns(cols ...string) {
	for _, col := range cols {
		for i := range t.rows {
			t.Set(i, col, FixMojibake(t.Get(i, col)))
		}
	}
}

// CleanTitles strips stray double quotes and "Title: " prefixes the model
// sometimes leaves on generated titles.
func (t *Table) CleanTitles() {
	for i := range t.rows {
		title := t.Get(i, ColTitle)
		title = strings.ReplaceAll(title, `"`, "")
		title = strings.ReplaceAll(title, "Title: ", "")
		t.Set(i, ColTitle, title)
	}
}
