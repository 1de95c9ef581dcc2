package listing

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "listing"

// WriteXLSX writes the table into a single sheet workbook with the same
// layout as the csv snapshot. Numeric columns are stored as numbers.
func WriteXLSX(path string, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName("Sheet1", sheetName)
	if err != nil {
		return err
	}

	header := []any{""}
	for _, c := range Columns {
		header = append(header, c)
	}
	err = f.SetSheetRow(sheetName, "A1", &header)
	if err != nil {
		return err
	}

	for i, r := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.Index,
			r.Manufacturer,
			r.Name(),
			r.ReleaseYear,
			r.ReleaseMonth,
			r.ReleaseDay,
			r.DDRVersion,
			r.Bandwidth,
		}
		err = f.SetSheetRow(sheetName, cell, &values)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	return f.SaveAs(path)
}

// ReadXLSX reads a workbook written by WriteXLSX.
func ReadXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return Table{}, err
	}
	// GetRows drops trailing empty cells
	for i, row := range rows {
		for len(row) < len(Columns)+1 && i > 0 {
			row = append(row, "")
		}
		rows[i] = row
	}
	return decodeRecords(rows)
}
