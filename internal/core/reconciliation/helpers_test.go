package reconciliation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
)

func textGrid(rows ...[]string) domain.Grid {
	grid := make(domain.Grid, len(rows))
	for i, row := range rows {
		cells := make([]domain.Cell, len(row))
		for j, v := range row {
			cells[j] = domain.Cell{Raw: v, Text: v}
		}
		grid[i] = cells
	}
	return grid
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

type line struct {
	supplier string
	invoice  string
	igst     string
	cgst     string
	sgst     string
}

// testLedger builds a cleaned and classified ledger without going through a grid.
func testLedger(t *testing.T, name string, lines ...line) *domain.Ledger {
	t.Helper()
	l := &domain.Ledger{Name: name}
	for i, ln := range lines {
		r := &domain.Record{
			Row:          i + 2,
			Cells:        map[string]domain.Cell{},
			SupplierName: ln.supplier,
			InvoiceNo:    ln.invoice,
			Amounts: domain.Amounts{
				IGST: dec(t, ln.igst),
				CGST: dec(t, ln.cgst),
				SGST: dec(t, ln.sgst),
			},
			Remark: domain.RemarkNotMatched,
		}
		r.InvoiceNoClean = CleanInvoice(r.InvoiceNo)
		r.SupplierNameClean = CleanSupplier(r.SupplierName)
		r.TaxStructure = Classify(r.Amounts)
		l.Records = append(l.Records, r)
	}
	return l
}

func remarks(l *domain.Ledger) []domain.Remark {
	out := make([]domain.Remark, len(l.Records))
	for i, r := range l.Records {
		out[i] = r.Remark
	}
	return out
}

func equalRemarks(a, b []domain.Remark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
