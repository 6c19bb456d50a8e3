// package reconciliation/service.go
package reconciliation

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/workbook"
	"go.uber.org/zap"
)

// Options configures a reconciliation service.
type Options struct {
	Tolerance decimal.Decimal
	Strategy  string
	ScanLimit int
	Synonyms  Synonyms
}

// DefaultOptions returns the built-in settings: tolerance 1, first-match tie-break, 20 scanned rows.
func DefaultOptions() Options {
	return Options{
		Tolerance: DefaultTolerance,
		Strategy:  StrategyFirst,
		ScanLimit: DefaultScanLimit,
	}
}

// Result holds the annotated ledgers of one run.
type Result struct {
	GSTR2B  *domain.Ledger
	Books   *domain.Ledger
	Matches []domain.Match
	Summary domain.Summary
}

// Service defines the reconciliation operations.
type Service interface {
	// ReconcileFile reads GSTR_2B and BOOKS from inputPath and writes the annotated
	// ledgers to outputPath. Nothing is written when the run fails.
	ReconcileFile(inputPath, outputPath string) (*domain.Summary, error)
	// AnalyzeFile runs the same pipeline and explains every unmatched record.
	AnalyzeFile(inputPath string) (*domain.Analysis, error)
	// Reconcile runs the pipeline on grids already read from a workbook.
	Reconcile(gstr2b, books domain.Grid) *Result
}

type service struct {
	locator    *HeaderLocator
	normalizer *SchemaNormalizer
	matcher    *Matcher
	logger     *zap.Logger
}

// NewService creates a reconciliation service. The returned value holds no per-run
// state and may be shared between requests.
func NewService(opts Options, logger *zap.Logger) (Service, error) {
	if opts.Tolerance.IsNegative() {
		return nil, fmt.Errorf("tolerance must not be negative, got %s", opts.Tolerance)
	}
	selector, err := SelectorByName(opts.Strategy)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		locator:    NewHeaderLocator(opts.ScanLimit),
		normalizer: NewSchemaNormalizer(opts.Synonyms),
		matcher:    NewMatcher(opts.Tolerance, selector),
		logger:     logger,
	}, nil
}

func (s *service) ReconcileFile(inputPath, outputPath string) (*domain.Summary, error) {
	res, err := s.reconcilePath(inputPath)
	if err != nil {
		return nil, err
	}
	if err := workbook.WriteLedgers(outputPath, res.GSTR2B, res.Books); err != nil {
		return nil, fmt.Errorf("failed to write reconciled workbook: %w", err)
	}
	s.logger.Info("reconciled workbook written", zap.String("output", outputPath))
	return &res.Summary, nil
}

func (s *service) AnalyzeFile(inputPath string) (*domain.Analysis, error) {
	res, err := s.reconcilePath(inputPath)
	if err != nil {
		return nil, err
	}
	return &domain.Analysis{
		Summary:  res.Summary,
		Findings: analyze(res.Books, res.GSTR2B, s.matcher.Tolerance),
	}, nil
}

func (s *service) reconcilePath(inputPath string) (*Result, error) {
	book, err := workbook.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	grids, err := workbook.ReadSheets(book, domain.SheetGSTR2B, domain.SheetBooks)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(grids[0], grids[1]), nil
}

func (s *service) Reconcile(gstr2bGrid, booksGrid domain.Grid) *Result {
	gstr2b := s.prepare(domain.SheetGSTR2B, gstr2bGrid)
	books := s.prepare(domain.SheetBooks, booksGrid)

	matches := s.matcher.Match(books, gstr2b)

	res := &Result{GSTR2B: gstr2b, Books: books, Matches: matches}
	res.Summary = s.summarize(res)

	s.logger.Info("reconciliation finished",
		zap.Int("gstr2b_records", res.Summary.GSTR2B.Records),
		zap.Int("books_records", res.Summary.Books.Records),
		zap.Int("gstr2b_matched", res.Summary.GSTR2B.Matched),
		zap.Int("books_matched", res.Summary.Books.Matched),
		zap.Int("invoice_matches", res.Summary.InvoiceMatches),
		zap.Int("fallback_matches", res.Summary.FallbackMatches),
	)
	return res
}

// prepare locates the header, normalizes the schema, cleans and classifies one sheet.
func (s *service) prepare(name string, grid domain.Grid) *domain.Ledger {
	header := s.locator.Locate(grid)
	ledger := s.normalizer.Normalize(name, grid, header)
	invalid := CleanLedger(ledger)
	ClassifyLedger(ledger)

	s.logger.Debug("sheet prepared",
		zap.String("sheet", name),
		zap.Int("header_row", header.Row),
		zap.String("header_rule", header.Rule),
		zap.Strings("columns", ledger.Columns),
		zap.Int("records", len(ledger.Records)),
	)
	for _, e := range invalid {
		s.logger.Debug("invalid amount read as zero", zap.String("sheet", name), zap.Error(e))
	}
	return ledger
}

func (s *service) summarize(res *Result) domain.Summary {
	sum := domain.Summary{
		GSTR2B:    ledgerStats(res.GSTR2B),
		Books:     ledgerStats(res.Books),
		Strategy:  s.matcher.Selector.Name(),
		Tolerance: s.matcher.Tolerance.String(),
	}
	for _, m := range res.Matches {
		switch m.Phase {
		case domain.PhaseInvoice:
			sum.InvoiceMatches++
		case domain.PhaseFallback:
			sum.FallbackMatches++
		}
	}
	return sum
}

func ledgerStats(l *domain.Ledger) domain.LedgerStats {
	matched := l.Matched()
	return domain.LedgerStats{
		Sheet:           l.Name,
		Header:          l.Header,
		Records:         len(l.Records),
		Matched:         matched,
		Unmatched:       len(l.Records) - matched,
		InvalidNumerics: l.InvalidNumerics,
	}
}
