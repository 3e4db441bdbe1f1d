package aggregate

import (
    "macroagg/internal/dataset"
    "macroagg/internal/etlerr"
    "macroagg/internal/table"
)

// DropNulls returns t without the rows that hold a null in any column.
func DropNulls(t *table.Table) (*table.Table, error) {
    rows := make([][]table.Value, 0, t.Len())
    for i := 0; i < t.Len(); i++ {
        row := t.Row(i)
        keep := true
        for _, v := range row {
            if v.IsNull() { keep = false; break }
        }
        if keep { rows = append(rows, row) }
    }
    return table.New(t.Columns(), rows)
}

// InnerJoin keeps the rows whose key appears on both sides. Output columns
// are left's columns followed by right's non-key columns; rows follow
// left's order.
func InnerJoin(left, right *table.Table, key string) (*table.Table, error) {
    li := left.Index(key)
    if li < 0 { return nil, etlerr.NewJoinError("left side has no %q column", key) }
    ri := right.Index(key)
    if ri < 0 { return nil, etlerr.NewJoinError("right side has no %q column", key) }

    cols := append([]string{}, left.Columns()...)
    for j, c := range right.Columns() {
        if j == ri { continue }
        if left.Index(c) >= 0 { return nil, etlerr.NewJoinError("column %q present on both sides", c) }
        cols = append(cols, c)
    }

    index := make(map[string][]int, right.Len())
    for j := 0; j < right.Len(); j++ {
        k := right.Row(j)[ri].String()
        index[k] = append(index[k], j)
    }

    var rows [][]table.Value
    for i := 0; i < left.Len(); i++ {
        lrow := left.Row(i)
        for _, j := range index[lrow[li].String()] {
            rrow := right.Row(j)
            row := make([]table.Value, 0, len(cols))
            row = append(row, lrow...)
            for c, v := range rrow {
                if c != ri { row = append(row, v) }
            }
            rows = append(rows, row)
        }
    }
    return table.New(cols, rows)
}

// JoinAll drops null rows from every dataset, folds inner joins on quarter
// in input order and sorts the result by quarter. An empty result is a
// JoinError.
func JoinAll(in []dataset.Dataset) (*table.Table, error) {
    if len(in) == 0 { return nil, etlerr.NewJoinError("no datasets to join") }
    var acc *table.Table
    for _, d := range in {
        t, err := DropNulls(d.Table)
        if err != nil { return nil, err }
        if acc == nil { acc = t; continue }
        acc, err = InnerJoin(acc, t, dataset.QuarterColumn)
        if err != nil { return nil, etlerr.NewDatasetError(d.Name(), "join", err) }
    }
    if acc.Len() == 0 { return nil, etlerr.NewJoinError("no quarter is common to all %d datasets", len(in)) }
    return acc.SortBy(dataset.QuarterColumn)
}
