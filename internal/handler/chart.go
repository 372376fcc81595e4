package handler

import (
    "math"
    "strconv"
    "strings"

    "github.com/iliyamo/csvboard/internal/tabular"
)

// chartDataset and chartData match the "data" object of a Chart.js config.
type chartDataset struct {
    Label string     `json:"label"`
    Data  []*float64 `json:"data"`
}

type chartData struct {
    Labels   []string       `json:"labels"`
    Datasets []chartDataset `json:"datasets"`
}

// buildChart plots every numeric column of t against the first column.
// A single-column table is plotted against row numbers. Empty cells become
// gaps. It returns nil when there is nothing numeric to plot.
func buildChart(t tabular.Table) *chartData {
    if len(t.Columns) == 0 || len(t.Rows) == 0 {
        return nil
    }

    valueCols := t.Columns[1:]
    labels := make([]string, len(t.Rows))
    for i, row := range t.Rows {
        if len(t.Columns) == 1 {
            labels[i] = strconv.Itoa(i + 1)
        } else {
            labels[i] = row[t.Columns[0]]
        }
    }
    if len(t.Columns) == 1 {
        valueCols = t.Columns
    }

    out := &chartData{Labels: labels}
    for _, col := range valueCols {
        if ds, ok := numericColumn(t, col); ok {
            out.Datasets = append(out.Datasets, ds)
        }
    }
    if len(out.Datasets) == 0 {
        return nil
    }
    return out
}

// numericColumn converts col to numbers. A column qualifies when it has at
// least one value and every non-empty cell parses as a finite float.
func numericColumn(t tabular.Table, col string) (chartDataset, bool) {
    ds := chartDataset{Label: col, Data: make([]*float64, len(t.Rows))}
    seen := false
    for i, row := range t.Rows {
        v := strings.TrimSpace(row[col])
        if v == "" {
            continue
        }
        f, err := strconv.ParseFloat(v, 64)
        if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
            return chartDataset{}, false
        }
        ds.Data[i] = &f
        seen = true
    }
    return ds, seen
}
