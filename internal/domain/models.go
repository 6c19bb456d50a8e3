// package domain/models.go
package domain

import (
	"github.com/shopspring/decimal"
)

// Sheet names expected in every uploaded workbook.
const (
	SheetGSTR2B = "GSTR_2B"
	SheetBooks  = "BOOKS"
)

// Canonical column names.
const (
	ColSupplierName = "Supplier_Name"
	ColInvoiceNo    = "Invoice_No"
	ColGSTIN        = "GSTIN"
	ColIGST         = "IGST"
	ColCGST         = "CGST"
	ColSGST         = "SGST"
	ColRecoRemark   = "RECO_REMARK"
)

// TextColumns are the canonical string columns, in the order they are created when absent.
var TextColumns = []string{ColInvoiceNo, ColSupplierName, ColGSTIN}

// AmountColumns are the canonical tax amount columns, in the order they are created when absent.
var AmountColumns = []string{ColIGST, ColCGST, ColSGST}

// TaxStructure classifies how the tax on an invoice line is split.
type TaxStructure string

// Tax structures.
const (
	TaxIGST     TaxStructure = "IGST"
	TaxCGSTSGST TaxStructure = "CGST_SGST"
	TaxOther    TaxStructure = "OTHER"
)

// Remark is the reconciliation status written to RECO_REMARK.
type Remark string

// Remarks.
const (
	RemarkNotMatched Remark = "NOT MATCHED"
	RemarkMatched    Remark = "MATCHED"
)

// Cell is a single spreadsheet cell. Raw holds the stored value (numbers without
// formatting), Text holds the value as displayed in the spreadsheet.
type Cell struct {
	Raw  string
	Text string
}

// Grid is a sheet as read from the workbook: ordered rows of ordered cells.
type Grid [][]Cell

// Amounts groups the three tax components of an invoice line.
type Amounts struct {
	IGST decimal.Decimal `json:"igst"`
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
}

// Add returns the component-wise sum.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		IGST: a.IGST.Add(b.IGST),
		CGST: a.CGST.Add(b.CGST),
		SGST: a.SGST.Add(b.SGST),
	}
}

// Sub returns the component-wise difference a - b.
func (a Amounts) Sub(b Amounts) Amounts {
	return Amounts{
		IGST: a.IGST.Sub(b.IGST),
		CGST: a.CGST.Sub(b.CGST),
		SGST: a.SGST.Sub(b.SGST),
	}
}

// Within reports whether every component differs from b by no more than tolerance.
func (a Amounts) Within(b Amounts, tolerance decimal.Decimal) bool {
	d := a.Sub(b)
	return d.IGST.Abs().LessThanOrEqual(tolerance) &&
		d.CGST.Abs().LessThanOrEqual(tolerance) &&
		d.SGST.Abs().LessThanOrEqual(tolerance)
}

// Distance is the summed absolute difference between a and b.
func (a Amounts) Distance(b Amounts) decimal.Decimal {
	d := a.Sub(b)
	return d.IGST.Abs().Add(d.CGST.Abs()).Add(d.SGST.Abs())
}

// Record is one invoice line of a ledger.
type Record struct {
	// Row is the 1-based row number in the source sheet.
	Row int

	// Cells holds every source cell keyed by its normalized column name.
	Cells map[string]Cell

	SupplierName string
	InvoiceNo    string
	GSTIN        string
	Amounts

	InvoiceNoClean    string
	SupplierNameClean string
	TaxStructure      TaxStructure

	Remark Remark
	// Used is set once the record takes part in a match and is never cleared afterwards.
	Used bool
}

// Value returns the output value of the record for the given column.
func (r *Record) Value(column string) interface{} {
	switch column {
	case ColSupplierName:
		return r.SupplierName
	case ColInvoiceNo:
		return r.InvoiceNo
	case ColGSTIN:
		return r.GSTIN
	case ColIGST:
		return r.IGST.InexactFloat64()
	case ColCGST:
		return r.CGST.InexactFloat64()
	case ColSGST:
		return r.SGST.InexactFloat64()
	case ColRecoRemark:
		return string(r.Remark)
	}
	return r.Cells[column].Text
}

// HeaderInfo records where and how the header row of a sheet was found.
type HeaderInfo struct {
	Row   int    `json:"row"`
	Rule  string `json:"rule"`
	Found bool   `json:"found"`
}

// Ledger is one of the two statements being reconciled.
type Ledger struct {
	Name    string
	Columns []string
	Records []*Record
	Header  HeaderInfo

	// InvalidNumerics counts amount cells that could not be parsed and were read as zero.
	InvalidNumerics int
}

// HasColumn reports whether the ledger schema contains the column.
func (l *Ledger) HasColumn(name string) bool {
	for _, c := range l.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the schema if it is not there yet.
func (l *Ledger) AddColumn(name string) {
	if !l.HasColumn(name) {
		l.Columns = append(l.Columns, name)
	}
}

// OutputColumns returns the columns written to the report, in schema order.
func (l *Ledger) OutputColumns() []string {
	cols := make([]string, 0, len(l.Columns)+1)
	cols = append(cols, l.Columns...)
	if !l.HasColumn(ColRecoRemark) {
		cols = append(cols, ColRecoRemark)
	}
	return cols
}

// Matched counts records marked MATCHED.
func (l *Ledger) Matched() int {
	n := 0
	for _, r := range l.Records {
		if r.Remark == RemarkMatched {
			n++
		}
	}
	return n
}

// --- Matching results ---

// MatchPhase identifies which matching pass paired the records.
type MatchPhase string

// Match phases.
const (
	PhaseInvoice  MatchPhase = "INVOICE"
	PhaseFallback MatchPhase = "FALLBACK"
)

// Match pairs one or more BOOKS records with a single GSTR_2B record.
// Indexes point into the ledgers' Records slices.
type Match struct {
	Phase  MatchPhase `json:"phase"`
	Books  []int      `json:"books"`
	GSTR2B int        `json:"gstr_2b"`
}

// LedgerStats describes one ledger after a run.
type LedgerStats struct {
	Sheet           string     `json:"sheet"`
	Header          HeaderInfo `json:"header"`
	Records         int        `json:"records"`
	Matched         int        `json:"matched"`
	Unmatched       int        `json:"unmatched"`
	InvalidNumerics int        `json:"invalid_numerics"`
}

// Summary describes a finished reconciliation run.
type Summary struct {
	GSTR2B          LedgerStats `json:"gstr_2b"`
	Books           LedgerStats `json:"books"`
	InvoiceMatches  int         `json:"invoice_matches"`
	FallbackMatches int         `json:"fallback_matches"`
	Strategy        string      `json:"strategy"`
	Tolerance       string      `json:"tolerance"`
}

// --- Discrepancy analysis ---

// FindingStatus explains why a record stayed unmatched.
type FindingStatus string

// Finding statuses.
const (
	StatusAmountMismatch  FindingStatus = "AMOUNT_MISMATCH"
	StatusMissingInGSTR2B FindingStatus = "MISSING_IN_GSTR2B"
	StatusMissingInBooks  FindingStatus = "MISSING_IN_BOOKS"
)

// Finding describes one unmatched record.
type Finding struct {
	Sheet             string        `json:"sheet"`
	Row               int           `json:"row"`
	InvoiceNo         string        `json:"invoice_no"`
	SupplierName      string        `json:"supplier_name"`
	GSTIN             string        `json:"gstin"`
	TaxStructure      TaxStructure  `json:"tax_structure"`
	Amounts           Amounts       `json:"amounts"`
	Status            FindingStatus `json:"status"`
	CounterpartRow    int           `json:"counterpart_row,omitempty"`
	Delta             *Amounts      `json:"delta,omitempty"`
	SuggestedSupplier string        `json:"suggested_supplier,omitempty"`
	Alerts            []string      `json:"alerts"`
}

// Analysis is the JSON report of a run that was not written to a workbook.
type Analysis struct {
	Summary  Summary   `json:"summary"`
	Findings []Finding `json:"findings"`
}
