package export

import (
	"context"

	"github.com/parquet-go/parquet-go"

	"macroagg/internal/dataset"
	"macroagg/internal/etlerr"
	"macroagg/internal/table"
)

// WideRow is the columnar layout of the wide table.
type WideRow struct {
	Quarter                     string   `parquet:"quarter"`
	FXRateEURToUSD              *float64 `parquet:"fx_rate_eur_to_usd,optional"`
	SP500USD                    *float64 `parquet:"sp500_usd,optional"`
	USGDPUSDBillions            *float64 `parquet:"us_gdp_usd_billions,optional"`
	USTotalDebtUSDMillions      *float64 `parquet:"us_total_debt_usd_millions,optional"`
	USInflationPerc             *float64 `parquet:"us_inflation_perc,optional"`
	EUInflationPerc             *float64 `parquet:"eu_inflation_perc,optional"`
	EUGovernmentDebtUSDMillions *float64 `parquet:"eu_government_debt_usd_millions,optional"`
	EUGDPUSDMillions            *float64 `parquet:"eu_gdp_usd_millions,optional"`
}

func (r *WideRow) fields() []**float64 {
	return []**float64{
		&r.FXRateEURToUSD,
		&r.SP500USD,
		&r.USGDPUSDBillions,
		&r.USTotalDebtUSDMillions,
		&r.USInflationPerc,
		&r.EUInflationPerc,
		&r.EUGovernmentDebtUSDMillions,
		&r.EUGDPUSDMillions,
	}
}

// ParquetWriter writes the wide table as a Snappy-compressed parquet file.
type ParquetWriter struct {
	Path string
}

func (w ParquetWriter) Name() string { return "parquet" }

func (w ParquetWriter) Write(ctx context.Context, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := wideRows(t)
	if err != nil {
		return err
	}
	if err := ensureParent(w.Path); err != nil {
		return err
	}
	if err := parquet.WriteFile(w.Path, rows, parquet.Compression(&parquet.Snappy)); err != nil {
		return etlerr.NewIOError(w.Path, err)
	}
	return nil
}

func wideRows(t *table.Table) ([]WideRow, error) {
	cols := dataset.OutputColumns()
	idx := make([]int, len(cols))
	for i, c := range cols {
		if idx[i] = t.Index(c); idx[i] < 0 {
			return nil, etlerr.NewFormatError("parquet: table has no column %q", c)
		}
	}
	out := make([]WideRow, t.Len())
	for i := range out {
		row := t.Row(i)
		out[i].Quarter = row[idx[0]].String()
		for j, field := range out[i].fields() {
			v := row[idx[j+1]]
			if v.IsNull() {
				continue
			}
			f, ok := v.Float()
			if !ok {
				return nil, etlerr.NewParseError(cols[j+1], v.String(), nil)
			}
			*field = &f
		}
	}
	return out, nil
}

// ReadParquet loads a file written by ParquetWriter.
func ReadParquet(path string) (*table.Table, error) {
	rows, err := parquet.ReadFile[WideRow](path)
	if err != nil {
		return nil, etlerr.NewIOError(path, err)
	}
	out := make([][]table.Value, len(rows))
	for i := range rows {
		vals := []table.Value{table.Str(rows[i].Quarter)}
		for _, field := range rows[i].fields() {
			if *field == nil {
				vals = append(vals, table.NullValue())
				continue
			}
			vals = append(vals, table.Num(**field))
		}
		out[i] = vals
	}
	return table.New(dataset.OutputColumns(), out)
}
