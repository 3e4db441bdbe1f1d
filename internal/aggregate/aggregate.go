// Package aggregate turns raw per-dataset tables into one quarterly wide
// table: quarterly averaging, column unification, currency conversion and
// the inner join on quarter.
package aggregate

import (
    "strconv"
    "strings"

    "macroagg/internal/dataset"
    "macroagg/internal/etlerr"
    "macroagg/internal/table"
)

// missingMarker is how FRED spells an absent observation.
const missingMarker = "."

// number reads a cell as a float. ok is false for nulls and for the
// missing-value marker; other text that does not parse is a ParseError.
func number(field string, v table.Value) (f float64, ok bool, err error) {
    switch v.Kind() {
    case table.Float:
        f, _ = v.Float()
        return f, true, nil
    case table.String:
        raw, _ := v.Text()
        s := strings.TrimSpace(raw)
        if s == "" || s == missingMarker { return 0, false, nil }
        f, err := strconv.ParseFloat(s, 64)
        if err != nil { return 0, false, etlerr.NewParseError(field, raw, err) }
        return f, true, nil
    default:
        return 0, false, nil
    }
}

// metricPair checks that t is exactly [quarter, <metric>] and returns the
// metric column name.
func metricPair(name string, t *table.Table) (string, error) {
    cols := t.Columns()
    if len(cols) != 2 || cols[0] != dataset.QuarterColumn {
        return "", etlerr.NewFormatError("%s: want columns [%s, <metric>], got %v", name, dataset.QuarterColumn, cols)
    }
    return cols[1], nil
}
