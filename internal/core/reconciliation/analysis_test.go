package reconciliation

import (
	"strings"
	"testing"

	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
)

func TestAnalyze(t *testing.T) {
	books := testLedger(t, domain.SheetBooks,
		line{supplier: "Zenith Corp", invoice: "INV-1", igst: "100"},
		line{supplier: "Acme Traders Pvt Ltd", invoice: "INV-2", igst: "10"},
		line{supplier: "Matched Co", invoice: "M-1", igst: "5"},
	)
	gstr2b := testLedger(t, domain.SheetGSTR2B,
		line{supplier: "Zenith Corp", invoice: "INV1", igst: "150"},
		line{supplier: "ACME TRADERS", invoice: "INV-3", cgst: "5", sgst: "5"},
		line{supplier: "Matched Co", invoice: "M1", igst: "5"},
	)
	NewMatcher(DefaultTolerance, nil).Match(books, gstr2b)
	before := append(remarks(books), remarks(gstr2b)...)

	findings := analyze(books, gstr2b, DefaultTolerance)

	if after := append(remarks(books), remarks(gstr2b)...); !equalRemarks(before, after) {
		t.Fatalf("analysis changed match state: %v -> %v", before, after)
	}
	if len(findings) != 4 {
		t.Fatalf("want 4 findings, got %d: %+v", len(findings), findings)
	}

	byKey := make(map[string]domain.Finding)
	for _, f := range findings {
		byKey[f.Sheet+"/"+f.InvoiceNo] = f
	}

	mismatch := byKey["BOOKS/INV-1"]
	if mismatch.Status != domain.StatusAmountMismatch || mismatch.CounterpartRow != 2 {
		t.Errorf("BOOKS INV-1 = %+v", mismatch)
	}
	if mismatch.Delta == nil || !mismatch.Delta.IGST.Equal(dec(t, "-50")) {
		t.Errorf("BOOKS INV-1 delta = %+v", mismatch.Delta)
	}
	if len(mismatch.Alerts) != 1 || !strings.HasPrefix(mismatch.Alerts[0], "IGST differs by -50") {
		t.Errorf("BOOKS INV-1 alerts = %v", mismatch.Alerts)
	}
	if other := byKey["GSTR_2B/INV1"]; other.Status != domain.StatusAmountMismatch || other.CounterpartRow != 2 {
		t.Errorf("GSTR_2B INV1 = %+v", other)
	}

	missing := byKey["BOOKS/INV-2"]
	if missing.Status != domain.StatusMissingInGSTR2B {
		t.Errorf("BOOKS INV-2 status = %s", missing.Status)
	}
	if missing.SuggestedSupplier != "ACME TRADERS" {
		t.Errorf("BOOKS INV-2 suggestion = %q", missing.SuggestedSupplier)
	}
	if f := byKey["GSTR_2B/INV-3"]; f.Status != domain.StatusMissingInBooks {
		t.Errorf("GSTR_2B INV-3 status = %s", f.Status)
	}
}

func TestAnalyzeReportsConsumedCounterpart(t *testing.T) {
	books := testLedger(t, domain.SheetBooks,
		line{invoice: "D-1", igst: "10"},
		line{invoice: "D-1", igst: "10"},
		line{invoice: "E-1", igst: "999"},
	)
	gstr2b := testLedger(t, domain.SheetGSTR2B,
		line{invoice: "D1", igst: "10"},
		line{invoice: "E1", igst: "10"},
	)
	NewMatcher(DefaultTolerance, nil).Match(books, gstr2b)

	findings := analyze(books, gstr2b, DefaultTolerance)
	if len(findings) != 1 {
		t.Fatalf("want 1 finding, got %+v", findings)
	}
	f := findings[0]
	if f.InvoiceNo != "E-1" || f.Status != domain.StatusMissingInGSTR2B {
		t.Fatalf("finding = %+v", f)
	}
	if len(f.Alerts) != 1 || !strings.Contains(f.Alerts[0], "already matched") {
		t.Errorf("alerts = %v", f.Alerts)
	}
}

func TestNormalizeText(t *testing.T) {
	if got := normalizeText("  Café-Déjà   vu "); got != "CAFE DEJA VU" {
		t.Errorf("normalizeText = %q", got)
	}
}
