package reconciliation

import (
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
)

// Classify labels an invoice line by how its tax is split.
func Classify(a domain.Amounts) domain.TaxStructure {
	switch {
	case a.IGST.IsPositive() && a.CGST.IsZero() && a.SGST.IsZero():
		return domain.TaxIGST
	case a.IGST.IsZero() && a.CGST.IsPositive() && a.SGST.IsPositive():
		return domain.TaxCGSTSGST
	default:
		return domain.TaxOther
	}
}

// ClassifyLedger sets TaxStructure on every record.
func ClassifyLedger(l *domain.Ledger) {
	for _, r := range l.Records {
		r.TaxStructure = Classify(r.Amounts)
	}
}
