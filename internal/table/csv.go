package table

import (
	"encoding/csv"
	"io"
	"sort"
)

// DefaultCSVName is the file name offered for CSV downloads.
const DefaultCSVName = "methods_table.csv"

// WriteCSV writes rows as comma-separated values with a header row matching
// Columns(rows). Absent values become empty cells.
func WriteCSV(w io.Writer, rows []Row) error {
	cols := Columns(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i], _ = r.Get(c)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Count is the number of rows sharing one column value.
type Count struct {
	Value string
	N     int
}

// Counts tallies the values of column, most frequent first. Ties are ordered
// by value. Rows with an absent or empty value are skipped.
func Counts(rows []Row, column string) []Count {
	tally := make(map[string]int)
	for _, r := range rows {
		v, ok := r.Get(column)
		if !ok || v == "" {
			continue
		}
		tally[v]++
	}
	counts := make([]Count, 0, len(tally))
	for v, n := range tally {
		counts = append(counts, Count{Value: v, N: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].N != counts[j].N {
			return counts[i].N > counts[j].N
		}
		return counts[i].Value < counts[j].Value
	})
	return counts
}
