package table

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// WriteCSV writes the header and every row, without an index column.
// Identical tables always produce identical bytes.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.columns); err != nil {
		return eris.Wrap(err, "table: write csv header")
	}

	record := make([]string, len(t.columns))
	for i, row := range t.rows {
		for j, v := range row {
			record[j] = v.String()
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrapf(err, "table: write csv row %d", i)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "table: flush csv")
	}
	return nil
}
