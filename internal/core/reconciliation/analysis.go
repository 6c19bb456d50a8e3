package reconciliation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/schollz/closestmatch"
	"github.com/shopspring/decimal"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeText strips accents and punctuation so supplier names from both ledgers
// can be compared loosely.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// supplierIndex suggests the closest supplier among the unmatched records of a ledger.
type supplierIndex struct {
	cm      *closestmatch.ClosestMatch
	display map[string]string
}

func newSupplierIndex(l *domain.Ledger) *supplierIndex {
	idx := &supplierIndex{display: make(map[string]string)}
	var keys []string
	for _, r := range l.Records {
		if r.Remark == domain.RemarkMatched {
			continue
		}
		key := normalizeText(r.SupplierNameClean)
		if key == "" {
			continue
		}
		if _, ok := idx.display[key]; !ok {
			idx.display[key] = r.SupplierName
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		idx.cm = closestmatch.New(keys, []int{2, 3})
	}
	return idx
}

func (s *supplierIndex) suggest(supplierClean string) string {
	query := normalizeText(supplierClean)
	if s.cm == nil || query == "" {
		return ""
	}
	return s.display[s.cm.Closest(query)]
}

// analyze explains every record left NOT MATCHED. It never changes match state.
func analyze(books, gstr2b *domain.Ledger, tolerance decimal.Decimal) []domain.Finding {
	findings := make([]domain.Finding, 0)
	findings = append(findings, explain(books, gstr2b, domain.StatusMissingInGSTR2B, tolerance)...)
	findings = append(findings, explain(gstr2b, books, domain.StatusMissingInBooks, tolerance)...)
	return findings
}

func explain(side, other *domain.Ledger, missing domain.FindingStatus, tolerance decimal.Decimal) []domain.Finding {
	var findings []domain.Finding
	suppliers := newSupplierIndex(other)

	for _, r := range side.Records {
		if r.Remark == domain.RemarkMatched {
			continue
		}
		f := domain.Finding{
			Sheet:        side.Name,
			Row:          r.Row,
			InvoiceNo:    r.InvoiceNo,
			SupplierName: r.SupplierName,
			GSTIN:        r.GSTIN,
			TaxStructure: r.TaxStructure,
			Amounts:      r.Amounts,
			Status:       missing,
			Alerts:       []string{},
		}

		counterpart, consumed := findCounterpart(r, other)
		switch {
		case counterpart != nil:
			delta := r.Amounts.Sub(counterpart.Amounts)
			f.Status = domain.StatusAmountMismatch
			f.CounterpartRow = counterpart.Row
			f.Delta = &delta
			f.Alerts = append(f.Alerts, mismatchAlerts(r, counterpart, tolerance)...)
		case consumed != nil:
			f.Alerts = append(f.Alerts, fmt.Sprintf("Invoice %s in %s row %d is already matched to another record", r.InvoiceNoClean, other.Name, consumed.Row))
		}

		if f.Status != domain.StatusAmountMismatch {
			f.SuggestedSupplier = suppliers.suggest(r.SupplierNameClean)
		}
		findings = append(findings, f)
	}
	return findings
}

// findCounterpart looks for a record in other with the same clean invoice number.
// An unmatched one is preferred; otherwise the first already matched one is reported.
func findCounterpart(r *domain.Record, other *domain.Ledger) (unmatched, matched *domain.Record) {
	if r.InvoiceNoClean == "" {
		return nil, nil
	}
	for _, o := range other.Records {
		if o.InvoiceNoClean != r.InvoiceNoClean {
			continue
		}
		if o.Remark != domain.RemarkMatched {
			return o, nil
		}
		if matched == nil {
			matched = o
		}
	}
	return nil, matched
}

func mismatchAlerts(r, counterpart *domain.Record, tolerance decimal.Decimal) []string {
	var alerts []string
	if r.TaxStructure != counterpart.TaxStructure {
		alerts = append(alerts, fmt.Sprintf("Tax structure differs: %s vs %s", r.TaxStructure, counterpart.TaxStructure))
	}
	d := r.Amounts.Sub(counterpart.Amounts)
	for _, c := range []struct {
		name string
		diff decimal.Decimal
	}{
		{domain.ColIGST, d.IGST},
		{domain.ColCGST, d.CGST},
		{domain.ColSGST, d.SGST},
	} {
		if c.diff.Abs().GreaterThan(tolerance) {
			alerts = append(alerts, fmt.Sprintf("%s differs by %s", c.name, c.diff.String()))
		}
	}
	if len(alerts) == 0 {
		alerts = append(alerts, "Amounts agree within tolerance but the invoice group did not match as a whole")
	}
	return alerts
}
