package workbook

import (
	"fmt"
	"io"

	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/xuri/excelize/v2"
)

// TemplateFilename is the download name of the blank input workbook.
const TemplateFilename = "GST_Reco_Template.xlsx"

// TemplateColumns are the headers placed on both template sheets.
var TemplateColumns = []string{
	domain.ColSupplierName,
	domain.ColGSTIN,
	domain.ColInvoiceNo,
	"Invoice_Date",
	domain.ColIGST,
	domain.ColCGST,
	domain.ColSGST,
}

// WriteTemplate writes a blank input workbook with the GSTR_2B and BOOKS sheets.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range []string{domain.SheetGSTR2B, domain.SheetBooks} {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		header := make([]interface{}, len(TemplateColumns))
		for j, c := range TemplateColumns {
			header[j] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", sheet, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(TemplateColumns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, "A", "G", 18); err != nil {
			return fmt.Errorf("failed to size columns of %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
