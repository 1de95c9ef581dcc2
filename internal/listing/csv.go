package listing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// Columns is the persisted schema, preceded by an unnamed index column.
var Columns = []string{
	"Manufacturer",
	"ProductName",
	"ReleaseYear",
	"ReleaseMonth",
	"ReleaseDay",
	"DDR_ver",
	"Bandwidth",
}

var ErrMalformed = errors.New("malformed listing table")

func malformed(line int, column, value string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: line %d column %s: %q: %v", ErrMalformed, line, column, value, err)
	}
	return fmt.Errorf("%w: line %d column %s: %q", ErrMalformed, line, column, value)
}

// WriteCSV writes the header and one line per row, a nil product name is
// written as an empty field.
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)

	header := append([]string{""}, Columns...)
	err := writer.Write(header)
	if err != nil {
		return err
	}

	for _, r := range table.Rows {
		err := writer.Write([]string{
			strconv.Itoa(r.Index),
			r.Manufacturer,
			r.Name(),
			strconv.Itoa(r.ReleaseYear),
			strconv.Itoa(r.ReleaseMonth),
			strconv.Itoa(r.ReleaseDay),
			strconv.Itoa(r.DDRVersion),
			strconv.Itoa(r.Bandwidth),
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// parseInt accepts plain integers and integral floats ("2020.0"), the latter
// appear when a snapshot went through a spreadsheet or dataframe tool.
func parseInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(value, 64)
	if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, err
	}
	return int(f), nil
}

// ReadCSV reads a table written by WriteCSV. The leading index column is
// optional, when it is absent rows are indexed from 0.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, err
	}
	return decodeRecords(records)
}

// decodeRecords turns a header line followed by data lines into a table.
func decodeRecords(records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	header := records[0]

	offset := 0
	switch len(header) {
	case len(Columns) + 1:
		offset = 1
	case len(Columns):
	default:
		return Table{}, fmt.Errorf("%w: expected %d columns, got %d", ErrMalformed, len(Columns), len(header))
	}
	for i, name := range Columns {
		if header[i+offset] != name {
			return Table{}, malformed(1, name, header[i+offset], nil)
		}
	}

	table := Table{Rows: make([]Row, 0, len(records)-1)}
	for n, record := range records[1:] {
		line := n + 2
		if len(record) != len(header) {
			return Table{}, fmt.Errorf("%w: line %d has %d fields, expected %d", ErrMalformed, line, len(record), len(header))
		}

		var err error
		row := Row{Index: n}
		if offset == 1 {
			row.Index, err = parseInt(record[0])
			if err != nil {
				return Table{}, malformed(line, "index", record[0], err)
			}
		}

		fields := record[offset:]
		row.Manufacturer = fields[0]
		if fields[1] != "" {
			row.ProductName = StringPtr(fields[1])
		}

		ints := []*int{&row.ReleaseYear, &row.ReleaseMonth, &row.ReleaseDay, &row.DDRVersion, &row.Bandwidth}
		for i, target := range ints {
			value := fields[i+2]
			*target, err = parseInt(value)
			if err != nil {
				return Table{}, malformed(line, Columns[i+2], value, err)
			}
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// SaveCSV writes the table to `path` through a temporary file in the same
// directory so a failed write never leaves a partial snapshot behind.
func SaveCSV(path string, table Table) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	err = WriteCSV(tmp, table)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadCSV reads a table from `path`.
func LoadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	table, err := ReadCSV(f)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}
