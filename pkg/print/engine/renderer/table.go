package renderer

import (
	"encoding/csv"
	"io"

	model "github.com/tigerroll/labelpress/pkg/print/core/domain/model"
)

// collectFieldNames collects field names from the row set in first-occurrence
// order. This order is the observable column layout of the intermediate
// table and must not be replaced with an alphabetical or schema-declared
// ordering.
func collectFieldNames(rows []model.Row) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, row := range rows {
		for _, f := range row {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			order = append(order, f.Name)
		}
	}
	return order
}

// writeTable encodes the row set as a delimited table with a header row.
// Columns follow first-occurrence field order; fields absent from a row are
// written as empty strings. It returns the column order used.
func writeTable(w io.Writer, rows []model.Row) ([]string, error) {
	fieldNames := collectFieldNames(rows)

	cw := csv.NewWriter(w)
	if err := cw.Write(fieldNames); err != nil {
		return nil, err
	}
	record := make([]string, len(fieldNames))
	for _, row := range rows {
		for i, name := range fieldNames {
			value, _ := row.Get(name)
			record[i] = value
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return fieldNames, cw.Error()
}
