package reconciliation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

type sheet struct {
	name string
	rows [][]interface{}
}

func writeWorkbook(t *testing.T, path string, sheets ...sheet) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range s.rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			row := row
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				t.Fatalf("write row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func sampleGSTR2B() sheet {
	return sheet{name: domain.SheetGSTR2B, rows: [][]interface{}{
		{"GSTR-2B Auto-drafted ITC Statement"},
		{"Period", "Apr-2024"},
		{"GSTIN of Supplier", "Name of the Supplier", "Invoice Number", "Integrated Tax", "Central Tax", "State Tax"},
		{"27AAACA1234A1Z5", "Acme Pvt Ltd", "INV001", 118, 0, 0},
		{"29BBBCB5678B1Z1", "Beta Traders", "B-77", 0, 59, 59.5},
		{"07CCCCC9999C1Z9", "Gamma LLP", "G-1", 500, 0, 0},
	}}
}

func sampleBooks() sheet {
	return sheet{name: domain.SheetBooks, rows: [][]interface{}{
		{"Party Name", "Bill No", "IGST Amount", "CGST Amount", "SGST Amount", "Narration"},
		{"Acme Private", "INV-001", 118, 0, 0, "April purchase"},
		{"Beta", "BT/991", 0, 59, 60, "Freight"},
		{"Delta", "D-5", 42, 0, 0, "Not uploaded by supplier"},
	}}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(DefaultOptions(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

func TestReconcileFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "purchases.xlsx")
	output := filepath.Join(dir, "Reconciled_purchases.xlsx")
	writeWorkbook(t, input, sampleGSTR2B(), sampleBooks())

	summary, err := newTestService(t).ReconcileFile(input, output)
	if err != nil {
		t.Fatalf("ReconcileFile: %v", err)
	}

	if summary.InvoiceMatches != 1 || summary.FallbackMatches != 1 {
		t.Errorf("matches by phase = %d/%d, want 1/1", summary.InvoiceMatches, summary.FallbackMatches)
	}
	if summary.GSTR2B.Header.Row != 2 || summary.Books.Header.Row != 0 {
		t.Errorf("header rows = %d/%d, want 2/0", summary.GSTR2B.Header.Row, summary.Books.Header.Row)
	}
	if summary.GSTR2B.Matched != 2 || summary.Books.Matched != 2 || summary.Books.Unmatched != 1 {
		t.Errorf("summary = %+v", summary)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != domain.SheetGSTR2B || got[1] != domain.SheetBooks {
		t.Fatalf("sheets = %v", got)
	}

	gstr, _ := f.GetRows(domain.SheetGSTR2B)
	wantGSTRHeader := []string{"GSTIN", "Supplier_Name", "Invoice_No", "IGST", "CGST", "SGST", "RECO_REMARK"}
	for i, h := range wantGSTRHeader {
		if cellAt(gstr, 0, i) != h {
			t.Fatalf("GSTR_2B header = %v, want %v", gstr[0], wantGSTRHeader)
		}
	}
	for r, want := range []string{"MATCHED", "MATCHED", "NOT MATCHED"} {
		if got := cellAt(gstr, r+1, 6); got != want {
			t.Errorf("GSTR_2B row %d remark = %q, want %q", r+1, got, want)
		}
	}
	if got := cellAt(gstr, 2, 5); got != "59.5" {
		t.Errorf("SGST written as %q", got)
	}

	books, _ := f.GetRows(domain.SheetBooks)
	wantBooksHeader := []string{"Supplier_Name", "Invoice_No", "IGST", "CGST", "SGST", "Narration", "GSTIN", "RECO_REMARK"}
	for i, h := range wantBooksHeader {
		if cellAt(books, 0, i) != h {
			t.Fatalf("BOOKS header = %v, want %v", books[0], wantBooksHeader)
		}
	}
	for r := 1; r <= 3; r++ {
		if got := cellAt(books, r, 6); got != "" {
			t.Errorf("BOOKS row %d GSTIN = %q, want empty", r, got)
		}
	}
	if got := cellAt(books, 3, 7); got != "NOT MATCHED" {
		t.Errorf("BOOKS Delta remark = %q", got)
	}
	if got := cellAt(books, 1, 5); got != "April purchase" {
		t.Errorf("passthrough column = %q", got)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".reconciled-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestReconcileFileMissingSheet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "only2b.xlsx")
	output := filepath.Join(dir, "out.xlsx")
	writeWorkbook(t, input, sampleGSTR2B())

	_, err := newTestService(t).ReconcileFile(input, output)

	var notFound *domain.SheetNotFoundError
	if !errors.As(err, &notFound) || notFound.Sheet != domain.SheetBooks {
		t.Fatalf("want SheetNotFoundError for BOOKS, got %v", err)
	}
	if err.Error() != "Sheet 'BOOKS' not found in the uploaded file." {
		t.Errorf("message = %q", err.Error())
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Errorf("output file must not exist, stat err = %v", statErr)
	}
}

func TestReconcileFileChecksGSTR2BFirst(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "other.xlsx")
	writeWorkbook(t, input, sheet{name: "Data", rows: [][]interface{}{{"x"}}})

	_, err := newTestService(t).ReconcileFile(input, filepath.Join(dir, "out.xlsx"))
	var notFound *domain.SheetNotFoundError
	if !errors.As(err, &notFound) || notFound.Sheet != domain.SheetGSTR2B {
		t.Fatalf("want SheetNotFoundError for GSTR_2B, got %v", err)
	}
}

func TestReconcileFileUnsupported(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.xlsx")
	if err := os.WriteFile(input, []byte("definitely not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := newTestService(t).ReconcileFile(input, filepath.Join(dir, "out.xlsx"))
	if !errors.Is(err, domain.ErrUnsupportedWorkbook) {
		t.Fatalf("want ErrUnsupportedWorkbook, got %v", err)
	}
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "purchases.xlsx")
	writeWorkbook(t, input, sampleGSTR2B(), sampleBooks())

	analysis, err := newTestService(t).AnalyzeFile(input)
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if len(analysis.Findings) != 2 {
		t.Fatalf("want 2 findings, got %+v", analysis.Findings)
	}
	statuses := map[domain.FindingStatus]string{}
	for _, f := range analysis.Findings {
		statuses[f.Status] = f.InvoiceNo
	}
	if statuses[domain.StatusMissingInGSTR2B] != "D-5" || statuses[domain.StatusMissingInBooks] != "G-1" {
		t.Errorf("statuses = %v", statuses)
	}
	if analysis.Summary.Strategy != StrategyFirst || analysis.Summary.Tolerance != "1" {
		t.Errorf("summary = %+v", analysis.Summary)
	}
}

func TestReconcileGridsWithHeaderBelowTitle(t *testing.T) {
	gstr := textGrid(
		[]string{"Statement"},
		[]string{""},
		[]string{"Generated"},
		[]string{"Party Name", "Invoice No", "IGST"},
		[]string{"Acme", "INV-001", "118"},
	)
	books := textGrid(
		[]string{"Party Name", "Invoice No", "IGST"},
		[]string{"Acme", "INV001", "118.4"},
	)

	res := newTestService(t).Reconcile(gstr, books)
	if res.GSTR2B.Header.Row != 3 {
		t.Fatalf("GSTR_2B header row = %d, want 3", res.GSTR2B.Header.Row)
	}
	if res.GSTR2B.Matched() != 1 || res.Books.Matched() != 1 {
		t.Fatalf("matched = %d/%d", res.GSTR2B.Matched(), res.Books.Matched())
	}
}

func TestNewServiceRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = "random"
	if _, err := NewService(opts, nil); err == nil {
		t.Errorf("unknown strategy accepted")
	}

	opts = DefaultOptions()
	opts.Tolerance = decimal.NewFromInt(-1)
	if _, err := NewService(opts, nil); err == nil {
		t.Errorf("negative tolerance accepted")
	}
}
