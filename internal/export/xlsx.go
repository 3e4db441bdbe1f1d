package export

import (
	"context"

	"github.com/xuri/excelize/v2"

	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

// XLSXWriter writes the wide table to a single worksheet.
type XLSXWriter struct {
	Path  string
	Sheet string
}

func (w XLSXWriter) Name() string { return "xlsx" }

func (w XLSXWriter) Write(ctx context.Context, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sheet := w.Sheet
	if sheet == "" {
		sheet = "result"
	}
	if err := ensureParent(w.Path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return etlerr.NewIOError(w.Path, err)
	}

	header := make([]any, 0, t.Width())
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return etlerr.NewIOError(w.Path, err)
	}
	for i := 0; i < t.Len(); i++ {
		cells := make([]any, 0, t.Width())
		for _, v := range t.Row(i) {
			switch v.Kind() {
			case table.Float:
				n, _ := v.Float()
				cells = append(cells, n)
			case table.String:
				cells = append(cells, v.String())
			default:
				cells = append(cells, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return etlerr.NewIOError(w.Path, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return etlerr.NewIOError(w.Path, err)
		}
	}
	if err := f.SaveAs(w.Path); err != nil {
		return etlerr.NewIOError(w.Path, err)
	}
	return nil
}
