package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedWorkbook is returned when a document is neither a readable .xlsx nor .xls workbook.
var ErrUnsupportedWorkbook = errors.New("unsupported workbook file format")

// SheetNotFoundError is returned when a required sheet is absent from the uploaded document.
type SheetNotFoundError struct {
	Sheet string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("Sheet '%s' not found in the uploaded file.", e.Sheet)
}

// InvalidNumericValueError describes an amount cell that could not be parsed.
// It never leaves the cleaning stage: the value is read as zero and the error is counted.
type InvalidNumericValueError struct {
	Column string
	Row    int
	Value  string
}

func (e *InvalidNumericValueError) Error() string {
	return fmt.Sprintf("invalid numeric value %q in column %s, row %d", e.Value, e.Column, e.Row)
}
