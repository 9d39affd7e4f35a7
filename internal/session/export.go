package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Klachten"

var exportHeader = []string{"id", "klacht", "wijk", "categorie", "prioriteitsscore", "dreigend", "aangemaakt"}

// WriteCSV writes entries as CSV with a header row. Text cells that start
// like a formula are escaped with a leading quote.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			csvCell(e.ID),
			csvCell(e.Complaint),
			csvCell(e.Neighborhood),
			csvCell(e.Category),
			strconv.Itoa(e.PriorityScore),
			strconv.FormatBool(e.IsThreat),
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formulaPrefixes are leading characters that spreadsheets evaluate as a
// formula when a CSV file is opened.
const formulaPrefixes = "=+-@\t\r"

// csvCell prefixes a single quote to text that a spreadsheet would otherwise
// run as a formula. Complaint text comes from citizens.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune(formulaPrefixes, rune(s[0])) {
		return "'" + s
	}
	return s
}

// WriteXLSX writes entries as a single-sheet Excel workbook. Priority is a
// numeric cell so the sheet can be sorted in Excel.
func WriteXLSX(w io.Writer, entries []Entry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			e.ID,
			e.Complaint,
			e.Neighborhood,
			e.Category,
			e.PriorityScore,
			e.IsThreat,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err = f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
