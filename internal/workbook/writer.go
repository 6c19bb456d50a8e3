package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/xuri/excelize/v2"
)

// WriteLedgers writes one sheet per ledger to path. The workbook is written to a
// temporary file in the same directory and renamed into place.
func WriteLedgers(path string, ledgers ...*domain.Ledger) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".reconciled-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary output file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, ledgers...); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary output file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

// Encode writes the ledgers as an .xlsx document to w.
func Encode(w io.Writer, ledgers ...*domain.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, l := range ledgers {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), l.Name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", l.Name, err)
			}
		} else if _, err := f.NewSheet(l.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", l.Name, err)
		}
		if err := writeLedger(f, l, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeLedger(f *excelize.File, l *domain.Ledger, headerStyle int) error {
	sw, err := f.NewStreamWriter(l.Name)
	if err != nil {
		return fmt.Errorf("failed to open sheet %s for writing: %w", l.Name, err)
	}

	cols := l.OutputColumns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", l.Name, err)
	}

	for r, rec := range l.Records {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			row[i] = outputValue(rec, c)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, l.Name, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", l.Name, err)
	}
	return nil
}

// outputValue keeps canonical fields typed and writes passthrough cells as numbers
// only when their displayed text is a plain number.
func outputValue(rec *domain.Record, column string) interface{} {
	if isCanonicalColumn(column) {
		return rec.Value(column)
	}
	s := rec.Cells[column].Text
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}

func isCanonicalColumn(c string) bool {
	switch c {
	case domain.ColSupplierName, domain.ColInvoiceNo, domain.ColGSTIN,
		domain.ColIGST, domain.ColCGST, domain.ColSGST, domain.ColRecoRemark:
		return true
	}
	return false
}
