// Package workbook reads uploaded spreadsheets into grids and writes reconciled ledgers back.
package workbook

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/shakinm/xlsReader/xls"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Book is an opened workbook.
type Book interface {
	SheetNames() []string
	// ReadSheet returns the named sheet, or *domain.SheetNotFoundError.
	ReadSheet(name string) (domain.Grid, error)
	Close() error
}

// Open reads the workbook stored at path.
func Open(path string) (Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return OpenReader(f)
}

// OpenReader reads a workbook from r. The .xlsx format is tried first, then legacy .xls.
func OpenReader(r io.Reader) (Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	f, errX := excelize.OpenReader(bytes.NewReader(data))
	if errX == nil {
		return &xlsxBook{f: f}, nil
	}

	wb, errL := openXLS(data)
	if errL == nil {
		return &xlsBook{wb: wb}, nil
	}

	return nil, fmt.Errorf("%w: xlsx: %v; xls: %v", domain.ErrUnsupportedWorkbook, errX, errL)
}

// openXLS guards against the legacy reader panicking on malformed compound documents.
func openXLS(data []byte) (wb xls.Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed xls document: %v", r)
		}
	}()
	return xls.OpenReader(bytes.NewReader(data))
}

// ReadSheets reads the named sheets in order. The first missing sheet aborts.
func ReadSheets(b Book, names ...string) ([]domain.Grid, error) {
	grids := make([]domain.Grid, 0, len(names))
	for _, name := range names {
		g, err := b.ReadSheet(name)
		if err != nil {
			return nil, err
		}
		grids = append(grids, g)
	}
	return grids, nil
}

type xlsxBook struct {
	f *excelize.File
}

func (b *xlsxBook) SheetNames() []string {
	return b.f.GetSheetList()
}

func (b *xlsxBook) ReadSheet(name string) (domain.Grid, error) {
	if !contains(b.SheetNames(), name) {
		return nil, &domain.SheetNotFoundError{Sheet: name}
	}

	raw, err := b.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	text, err := b.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	n := len(raw)
	if len(text) > n {
		n = len(text)
	}
	grid := make(domain.Grid, n)
	for i := 0; i < n; i++ {
		var rawRow, textRow []string
		if i < len(raw) {
			rawRow = raw[i]
		}
		if i < len(text) {
			textRow = text[i]
		}
		width := len(rawRow)
		if len(textRow) > width {
			width = len(textRow)
		}
		row := make([]domain.Cell, width)
		for j := 0; j < width; j++ {
			if j < len(rawRow) {
				row[j].Raw = rawRow[j]
			}
			if j < len(textRow) {
				row[j].Text = textRow[j]
			}
		}
		grid[i] = row
	}
	return grid, nil
}

func (b *xlsxBook) Close() error {
	return b.f.Close()
}

type xlsBook struct {
	wb xls.Workbook
}

func (b *xlsBook) SheetNames() []string {
	var names []string
	for i := 0; i < b.wb.GetNumberSheets(); i++ {
		sheet, err := b.wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		names = append(names, sheet.GetName())
	}
	return names
}

func (b *xlsBook) ReadSheet(name string) (domain.Grid, error) {
	for i := 0; i < b.wb.GetNumberSheets(); i++ {
		sheet, err := b.wb.GetSheet(i)
		if err != nil || sheet == nil || sheet.GetName() != name {
			continue
		}

		var grid domain.Grid
		for _, row := range sheet.GetRows() {
			var cells []domain.Cell
			for _, col := range row.GetCols() {
				v := ""
				if col != nil {
					v = col.GetString()
				}
				cells = append(cells, domain.Cell{Raw: v, Text: v})
			}
			grid = append(grid, cells)
		}
		return grid, nil
	}
	return nil, &domain.SheetNotFoundError{Sheet: name}
}

func (b *xlsBook) Close() error { return nil }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
