package aggregate

import (
    "macroagg/internal/dataset"
    "macroagg/internal/etlerr"
    "macroagg/internal/table"
)

// Convert turns every currency-denominated dataset into USD using the FX
// dataset named fxName. The join is a left join on quarter: quarters with
// no rate get a null. The converted table is [quarter, ConvertedMetric()];
// other datasets pass through unmodified.
func Convert(in []dataset.Dataset, fxName string) ([]dataset.Dataset, error) {
    var fx *dataset.Dataset
    for i := range in {
        if in[i].Name() == fxName { fx = &in[i]; break }
    }
    if fx == nil { return nil, etlerr.NewJoinError("exchange rate dataset %q not present", fxName) }

    fxCol, err := metricPair(fx.Name(), fx.Table)
    if err != nil { return nil, err }
    rates := make(map[string]float64, fx.Table.Len())
    for i := 0; i < fx.Table.Len(); i++ {
        row := fx.Table.Row(i)
        r, ok, err := number(fxCol, row[1])
        if err != nil { return nil, err }
        if ok { rates[row[0].String()] = r }
    }

    out := make([]dataset.Dataset, len(in))
    for i, d := range in {
        if !d.Descriptor.CurrencyDenominated { out[i] = d; continue }
        metric, err := metricPair(d.Name(), d.Table)
        if err != nil { return nil, err }

        rows := make([][]table.Value, d.Table.Len())
        for j := 0; j < d.Table.Len(); j++ {
            row := d.Table.Row(j)
            conv := table.NullValue()
            v, ok, err := number(metric, row[1])
            if err != nil { return nil, err }
            if r, hit := rates[row[0].String()]; ok && hit { conv = table.Num(v * r) }
            rows[j] = []table.Value{row[0], conv}
        }
        t, err := table.New([]string{dataset.QuarterColumn, d.Descriptor.ConvertedMetric()}, rows)
        if err != nil { return nil, err }
        out[i] = dataset.Dataset{Descriptor: d.Descriptor, Table: t}
    }
    return out, nil
}
