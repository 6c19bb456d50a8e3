package reconciliation

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxAmountExponent bounds the decimal exponent of a parsed amount. Arithmetic on
// decimals rescales to a shared exponent, so an unbounded one is unbounded work.
const maxAmountExponent = 20

// supplierNoise is removed from supplier names, in this order.
var supplierNoise = []string{"PVT", "LTD", "LIMITED", "LLP", "."}

// CleanInvoice uppercases an invoice number and keeps only A-Z and 0-9. Uppercasing
// uses full case mapping, so "ß" becomes "SS".
func CleanInvoice(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, upper(s))
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// CleanSupplier uppercases a supplier name and strips legal-form noise. Removal repeats
// until nothing changes, so "PPVTVT" cannot leave a "PVT" behind.
func CleanSupplier(s string) string {
	out := upper(s)
	for {
		prev := out
		for _, w := range supplierNoise {
			out = strings.ReplaceAll(out, w, "")
		}
		if out == prev {
			break
		}
	}
	return strings.TrimSpace(out)
}

// ParseAmount reads a tax amount. Blank input is zero. Grouping commas are ignored.
// Anything else that is not a finite decimal number, or whose exponent is out of
// range, yields zero and an error.
func ParseAmount(s string) (decimal.Decimal, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return decimal.Zero, nil
	}
	t = strings.ReplaceAll(t, ",", "")

	lower := strings.ToLower(t)
	if strings.Contains(lower, "nan") || strings.Contains(lower, "inf") {
		return decimal.Zero, &domain.InvalidNumericValueError{Value: s}
	}

	d, err := decimal.NewFromString(t)
	if err != nil || d.Exponent() > maxAmountExponent || d.Exponent() < -maxAmountExponent {
		return decimal.Zero, &domain.InvalidNumericValueError{Value: s}
	}
	return d, nil
}

// CleanLedger makes sure every canonical column exists, fills the typed fields of each
// record, derives the comparison keys and resets the match annotation. Amount cells that
// could not be parsed are read as zero and returned.
func CleanLedger(l *domain.Ledger) []*domain.InvalidNumericValueError {
	for _, col := range domain.TextColumns {
		l.AddColumn(col)
	}
	for _, col := range domain.AmountColumns {
		l.AddColumn(col)
	}

	var invalid []*domain.InvalidNumericValueError
	amount := func(r *domain.Record, col string) decimal.Decimal {
		d, err := ParseAmount(r.Cells[col].Raw)
		if err != nil {
			nerr := err.(*domain.InvalidNumericValueError)
			nerr.Column = col
			nerr.Row = r.Row
			invalid = append(invalid, nerr)
		}
		return d
	}

	for _, r := range l.Records {
		r.InvoiceNo = r.Cells[domain.ColInvoiceNo].Raw
		r.SupplierName = r.Cells[domain.ColSupplierName].Raw
		r.GSTIN = r.Cells[domain.ColGSTIN].Raw

		r.IGST = amount(r, domain.ColIGST)
		r.CGST = amount(r, domain.ColCGST)
		r.SGST = amount(r, domain.ColSGST)

		r.InvoiceNoClean = CleanInvoice(r.InvoiceNo)
		r.SupplierNameClean = CleanSupplier(r.SupplierName)
		r.Remark = domain.RemarkNotMatched
		r.Used = false
	}

	l.InvalidNumerics = len(invalid)
	return invalid
}
