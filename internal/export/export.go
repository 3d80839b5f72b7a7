// Package export writes merged tables as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	internalmodels "eatery/internal/models"
)

// WriteCSV writes table with its header. Missing values are empty cells.
func WriteCSV(w io.Writer, table internalmodels.MergedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns()); err != nil {
		return err
	}
	if err := cw.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("write csv %q: %w", table.Location.Name, err)
	}
	return nil
}

// WriteXLSX saves one sheet per location, in mapping order.
func WriteXLSX(path string, tables *internalmodels.ByLocation[internalmodels.MergedTable]) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, tables.Len())
	first := ""
	err := tables.Each(func(name string, table internalmodels.MergedTable) error {
		sheet := SheetName(name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if first == "" {
			first = sheet
		}
		return writeSheet(f, sheet, table)
	})
	if err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}

	if first != "" {
		if !used["sheet1"] {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				return err
			}
		}
		// indexes shift once the default sheet is gone
		index, err := f.GetSheetIndex(first)
		if err != nil {
			return err
		}
		f.SetActiveSheet(index)
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, table internalmodels.MergedTable) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	cols := table.Columns()
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	// missing values are nil and left blank
	for i, row := range table.Values() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

const maxSheetName = 31

// SheetName turns a location name into a unique, valid worksheet name. used
// is keyed by lower-cased names since Excel compares them case-insensitively.
func SheetName(name string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Sheet"
	}
	base = truncate(base, maxSheetName)

	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
