// Package convert implements the conversion stage: each staged market-watch
// spreadsheet becomes one normalized CSV table in the data lake, keyed by the
// same business date. Existence of the CSV is the only marker of "already
// converted", making re-runs a safe no-op.
package convert

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"tsecli/internal/errors"
)

// Converter turns staged spreadsheets into normalized lake tables.
type Converter struct {
	logger *slog.Logger
}

// New creates a Converter.
func New(logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{logger: logger}
}

// Summary reports what a ConvertAll run did.
type Summary struct {
	Converted       int
	SkippedExisting int
	DeletedEmpty    int
}

// ConvertAll converts every staged spreadsheet in stageDir into a CSV table
// in lakeDir. A spreadsheet whose converted table already exists is skipped.
// A spreadsheet with zero data rows produces no table and is deleted from the
// stage. When deleteSource is set, each source is removed after its table has
// been written successfully; the write always completes before the delete so
// a write failure cannot lose data. Any read or parse failure is fatal to the
// run.
func (c *Converter) ConvertAll(ctx context.Context, stageDir, lakeDir string, deleteSource bool) (*Summary, error) {
	staged, err := filepath.Glob(filepath.Join(stageDir, "*.xlsx"))
	if err != nil {
		return nil, errors.NewStorageError("failed to scan stage directory "+stageDir, err)
	}
	if len(staged) == 0 {
		return nil, errors.NewNoInputError("no staged spreadsheet in " + stageDir)
	}
	if err := os.MkdirAll(lakeDir, 0o755); err != nil {
		return nil, errors.NewStorageError("failed to create lake directory "+lakeDir, err)
	}

	// File names are date identifiers, so name order is chronological order.
	sort.Strings(staged)

	summary := &Summary{}
	for _, src := range staged {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := dateIdentifier(src)
		dest := filepath.Join(lakeDir, name+".csv")

		if _, err := os.Stat(dest); err == nil {
			summary.SkippedExisting++
			c.logger.Info("already converted, skipping",
				slog.String("date", name),
				slog.String("path", dest))
			continue
		}

		if err := c.convertOne(src, dest, name, deleteSource, summary); err != nil {
			return summary, err
		}
	}

	c.logger.Info("conversion finished",
		slog.Int("converted", summary.Converted),
		slog.Int("skipped_existing", summary.SkippedExisting),
		slog.Int("deleted_empty", summary.DeletedEmpty))

	return summary, nil
}

func (c *Converter) convertOne(src, dest, name string, deleteSource bool, summary *Summary) error {
	header, data, err := readTable(src)
	if err != nil {
		return err
	}

	if len(data) == 0 {
		// An empty report from upstream means "nothing to convert", not an
		// error; drop the source so a re-run does not reconsider it.
		if err := os.Remove(src); err != nil {
			return errors.NewStorageError("failed to delete empty spreadsheet "+src, err)
		}
		summary.DeletedEmpty++
		c.logger.Info("empty spreadsheet deleted",
			slog.String("date", name),
			slog.String("path", src))
		return nil
	}

	if err := writeCSV(dest, header, data); err != nil {
		return err
	}
	summary.Converted++
	c.logger.Info("table saved",
		slog.String("date", name),
		slog.String("path", dest),
		slog.Int("rows", len(data)))

	if deleteSource {
		if err := os.Remove(src); err != nil {
			return errors.NewStorageError("failed to delete converted spreadsheet "+src, err)
		}
		c.logger.Info("spreadsheet deleted after conversion",
			slog.String("date", name),
			slog.String("path", src))
	}

	return nil
}

// readTable loads the first sheet of a staged spreadsheet. The first physical
// row is a title banner and is discarded; the second row carries the column
// labels and everything after it is data. Trailing all-blank rows are
// dropped.
func readTable(path string) (header []string, data [][]string, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, errors.NewParsingError("failed to open spreadsheet "+path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.NewParsingError("no sheet in spreadsheet "+path, nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, errors.NewParsingError("failed to read sheet of "+path, err)
	}

	if len(rows) < 2 {
		return nil, nil, nil
	}

	header = rows[1]
	for _, row := range rows[2:] {
		if isBlank(row) {
			continue
		}
		// Pad short rows so every record matches the header width.
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		data = append(data, row)
	}
	return header, data, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func writeCSV(dest string, header []string, data [][]string) error {
	out, err := os.Create(dest)
	if err != nil {
		return errors.NewStorageError("failed to create "+dest, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return errors.NewStorageError("failed to write header of "+dest, err)
	}
	for i, row := range data {
		if err := w.Write(row); err != nil {
			return errors.NewStorageError(
				fmt.Sprintf("failed to write row %d of %s", i+1, dest), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewStorageError("failed to flush "+dest, err)
	}
	return nil
}

// dateIdentifier strips directory and extension from a staged file path,
// leaving the business-date key shared with the lake table.
func dateIdentifier(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
