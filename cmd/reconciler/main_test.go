package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/api/handlers"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/core/reconciliation"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestRouterHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, err := reconciliation.NewService(reconciliation.DefaultOptions(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.New(filepath.Join(t.TempDir(), "u"), filepath.Join(t.TempDir(), "d"), false)
	if err != nil {
		t.Fatal(err)
	}
	router := newRouter(handlers.NewReconcileHandler(svc, store, zap.NewNop()), 8)

	if router.MaxMultipartMemory != 8<<20 {
		t.Errorf("MaxMultipartMemory = %d", router.MaxMultipartMemory)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["status"] != "UP" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTemplateCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "template.xlsx")
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"template", "-o", out})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("template: %v", err)
	}
	if !strings.Contains(stdout.String(), out) {
		t.Errorf("output = %q", stdout.String())
	}
	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 2 || got[0] != domain.SheetGSTR2B {
		t.Errorf("sheets = %v", got)
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &domain.Summary{
		GSTR2B:          domain.LedgerStats{Sheet: domain.SheetGSTR2B, Records: 3, Matched: 2, Unmatched: 1, Header: domain.HeaderInfo{Row: 2, Rule: "supplier"}},
		Books:           domain.LedgerStats{Sheet: domain.SheetBooks, Records: 2, Matched: 2, InvalidNumerics: 1},
		InvoiceMatches:  1,
		FallbackMatches: 1,
		Strategy:        "first",
		Tolerance:       "1",
	}, "out.xlsx")

	got := buf.String()
	for _, want := range []string{"out.xlsx", "GSTR_2B", "header row 2 (supplier)", "1 invalid amounts read as 0", "1 by invoice number, 1 by amount"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
