package reconciliation

import (
	"github.com/shopspring/decimal"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
)

// DefaultTolerance is the largest per-component difference still considered equal.
var DefaultTolerance = decimal.NewFromInt(1)

// Matcher pairs BOOKS records with GSTR_2B records in two greedy passes.
type Matcher struct {
	Tolerance decimal.Decimal
	Selector  CandidateSelector
}

// NewMatcher returns a matcher. A nil selector means FirstSelector.
func NewMatcher(tolerance decimal.Decimal, selector CandidateSelector) *Matcher {
	if selector == nil {
		selector = FirstSelector{}
	}
	return &Matcher{Tolerance: tolerance, Selector: selector}
}

// availability tracks which records of one ledger can still be claimed.
type availability []bool

func newAvailability(records []*domain.Record) availability {
	a := make(availability, len(records))
	for i, r := range records {
		a[i] = !r.Used
	}
	return a
}

type invoiceGroup struct {
	key       string
	members   []int
	sum       domain.Amounts
	structure domain.TaxStructure
}

// Match runs the invoice-key pass and then the fallback numeric pass, marking every
// claimed record MATCHED and used. Records already used are never considered.
func (m *Matcher) Match(books, gstr2b *domain.Ledger) []domain.Match {
	booksFree := newAvailability(books.Records)
	gstrFree := newAvailability(gstr2b.Records)

	var matches []domain.Match
	claim := func(phase domain.MatchPhase, bookIdx []int, gstrIdx int) {
		for _, bi := range bookIdx {
			booksFree[bi] = false
			markMatched(books.Records[bi])
		}
		gstrFree[gstrIdx] = false
		markMatched(gstr2b.Records[gstrIdx])
		matches = append(matches, domain.Match{Phase: phase, Books: bookIdx, GSTR2B: gstrIdx})
	}

	for _, g := range groupByInvoice(books, booksFree) {
		idx := m.pick(g.sum, gstr2b, gstrFree, func(r *domain.Record) bool {
			return r.InvoiceNoClean == g.key && r.TaxStructure == g.structure
		})
		if idx >= 0 {
			claim(domain.PhaseInvoice, g.members, idx)
		}
	}

	for bi, b := range books.Records {
		if !booksFree[bi] {
			continue
		}
		idx := m.pick(b.Amounts, gstr2b, gstrFree, func(r *domain.Record) bool {
			return r.TaxStructure == b.TaxStructure
		})
		if idx >= 0 {
			claim(domain.PhaseFallback, []int{bi}, idx)
		}
	}
	return matches
}

// pick returns the ledger index of the selected GSTR_2B record, or -1.
func (m *Matcher) pick(target domain.Amounts, gstr2b *domain.Ledger, free availability, eligible func(*domain.Record) bool) int {
	var (
		candidates []*domain.Record
		indexes    []int
	)
	for gi, g := range gstr2b.Records {
		if !free[gi] || !eligible(g) || !g.Amounts.Within(target, m.Tolerance) {
			continue
		}
		candidates = append(candidates, g)
		indexes = append(indexes, gi)
	}
	sel := m.Selector.Select(target, candidates)
	if sel < 0 || sel >= len(indexes) {
		return -1
	}
	return indexes[sel]
}

// groupByInvoice groups available records with a non-empty clean invoice number,
// in order of first appearance.
func groupByInvoice(l *domain.Ledger, free availability) []*invoiceGroup {
	var order []*invoiceGroup
	byKey := make(map[string]*invoiceGroup)
	for i, r := range l.Records {
		if !free[i] || r.InvoiceNoClean == "" {
			continue
		}
		g, ok := byKey[r.InvoiceNoClean]
		if !ok {
			g = &invoiceGroup{key: r.InvoiceNoClean, structure: r.TaxStructure, sum: zeroAmounts()}
			byKey[r.InvoiceNoClean] = g
			order = append(order, g)
		}
		g.members = append(g.members, i)
		g.sum = g.sum.Add(r.Amounts)
	}
	return order
}

func markMatched(r *domain.Record) {
	r.Remark = domain.RemarkMatched
	r.Used = true
}

func zeroAmounts() domain.Amounts {
	return domain.Amounts{IGST: decimal.Zero, CGST: decimal.Zero, SGST: decimal.Zero}
}
