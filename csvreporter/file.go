package csvreporter

import (
	"encoding/csv"
	"os"
)

// writeRow appends row to fileName, creating the file and writing header
// first if isNew is true.
func writeRow(fileName string, isNew bool, header, row []string) error {
	f, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
