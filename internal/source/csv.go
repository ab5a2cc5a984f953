package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// FromCSV reads a CSV file into a Table. The first record is the header and
// fixes column order. sampleLimit > 0 caps the number of data rows read;
// inference only needs a sample, not the whole file.
func FromCSV(name, path string, sampleLimit int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(name, f, sampleLimit)
}

// ReadCSV is FromCSV over an arbitrary reader.
func ReadCSV(name string, r io.Reader, sampleLimit int) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows, missing cells become nulls

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv %q is empty", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header for %q: %w", name, err)
	}

	values := make([][]string, len(header))
	rows := 0
	for sampleLimit <= 0 || rows < sampleLimit {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d of %q: %w", rows+2, name, err)
		}
		for i := range header {
			v := ""
			if i < len(record) {
				v = record[i]
			}
			values[i] = append(values[i], v)
		}
		rows++
	}

	table := New(name)
	for i, col := range header {
		if err := table.AddColumn(col, values[i]); err != nil {
			return nil, err
		}
	}
	return table, nil
}
