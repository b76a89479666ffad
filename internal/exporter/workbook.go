package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WorkbookExporter renders the merged summary rows into a single Excel
// workbook, one data row per processed date.
type WorkbookExporter struct{}

// NewWorkbookExporter creates a workbook exporter.
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// Export writes headers and rows to the given sheet of a new workbook at
// path, overwriting any existing file.
func (w *WorkbookExporter) Export(path, sheet string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// ExportMergedSummary renders the cumulative merged summary file from outDir
// into a workbook at path. Produces an empty (header-only) sheet when no
// dates have been merged yet.
func ExportMergedSummary(outDir, path string) error {
	rows, err := NewCSVWriter(outDir).ReadRows(mergedFilename(KindSummary))
	if err != nil {
		return fmt.Errorf("failed to read merged summary: %w", err)
	}
	return NewWorkbookExporter().Export(path, "Market Summary", SummaryHeaders(), rows)
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
