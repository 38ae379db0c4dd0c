package analyze

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"tsecli/internal/errors"
)

// Dataset is the row-wise union of every normalized table in the data lake.
// Columns are discovered at load time from the first table; they are not
// fixed at compile time. The dataset is ephemeral and rebuilt fully on every
// analysis run.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// LoadLake concatenates every CSV table found in lakeDir into one Dataset.
// Files are read in name order, which for date-keyed tables is chronological
// order, so row order inside the dataset is a usable time axis for the
// first/last price computation. Every table must share the schema of the
// first one.
func LoadLake(lakeDir string) (*Dataset, error) {
	files, err := filepath.Glob(filepath.Join(lakeDir, "*.csv"))
	if err != nil {
		return nil, errors.NewStorageError("failed to scan lake directory "+lakeDir, err)
	}
	if len(files) == 0 {
		return nil, errors.NewNoInputError("no table in data lake " + lakeDir)
	}
	sort.Strings(files)

	ds := &Dataset{}
	for _, file := range files {
		header, rows, err := readLakeTable(file)
		if err != nil {
			return nil, err
		}

		if ds.Columns == nil {
			ds.Columns = header
		} else if !equalColumns(ds.Columns, header) {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("table %s does not share the lake schema", filepath.Base(file)))
		}
		ds.Rows = append(ds.Rows, rows...)
	}

	return ds, nil
}

func readLakeTable(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewStorageError("failed to open table "+path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, errors.NewParsingError("failed to parse table "+path, err)
	}
	if len(records) == 0 {
		return nil, nil, errors.NewParsingError("table "+path+" has no header", nil)
	}
	return records[0], records[1:], nil
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// columnIndex locates a named column, failing with a schema error when the
// lake tables lack a column the aggregation depends on.
func (d *Dataset) columnIndex(name string) (int, error) {
	for i, col := range d.Columns {
		if col == name {
			return i, nil
		}
	}
	return 0, errors.NewSchemaError(fmt.Sprintf("required column %q is absent from the dataset", name))
}
