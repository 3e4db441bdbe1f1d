package export

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"

	"macroagg/internal/etlerr"
	"macroagg/internal/source/csvfile"
	"macroagg/internal/table"
)

// CSVWriter writes a header row and one comma-separated line per row.
type CSVWriter struct {
	Path string
}

func (w CSVWriter) Name() string { return "csv" }

func (w CSVWriter) Write(ctx context.Context, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ensureParent(w.Path); err != nil {
		return err
	}
	f, err := os.Create(w.Path)
	if err != nil {
		return etlerr.NewIOError(w.Path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Columns()); err != nil {
		return etlerr.NewIOError(w.Path, err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return etlerr.NewIOError(w.Path, err)
	}
	if err := f.Close(); err != nil {
		return etlerr.NewIOError(w.Path, err)
	}
	return nil
}

// ReadCSV reads a file written by CSVWriter. Cells that parse as numbers
// come back as Float, the rest as String; empty cells are Null.
func ReadCSV(path string) (*table.Table, error) {
	raw, err := csvfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([][]table.Value, raw.Len())
	for i := range rows {
		row := raw.Row(i)
		for j, v := range row {
			s, ok := v.Text()
			if !ok {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				row[j] = table.Num(f)
			}
		}
		rows[i] = row
	}
	return table.New(raw.Columns(), rows)
}
