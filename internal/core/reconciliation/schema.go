package reconciliation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
	"golang.org/x/text/cases"
)

// Synonyms maps a canonical column name to the header spellings that resolve to it.
type Synonyms map[string][]string

// CanonicalColumns lists the canonical names a synonym may resolve to.
var CanonicalColumns = []string{
	domain.ColSupplierName,
	domain.ColInvoiceNo,
	domain.ColIGST,
	domain.ColCGST,
	domain.ColSGST,
	domain.ColGSTIN,
}

// DefaultSynonyms is the built-in header mapping. Comparison is case-insensitive.
var DefaultSynonyms = Synonyms{
	domain.ColSupplierName: {"Supplier Name", "Party Name", "Vendor Name", "Name of the Supplier"},
	domain.ColInvoiceNo:    {"Invoice No", "Invoice Number", "Bill No", "Document Number"},
	domain.ColIGST:         {"Integrated Tax", "IGST Amount"},
	domain.ColCGST:         {"Central Tax", "CGST Amount"},
	domain.ColSGST:         {"State Tax", "SGST Amount"},
	domain.ColGSTIN:        {"GSTIN", "GSTIN of Supplier", "Supplier GSTIN", "GST Number"},
}

// IsCanonical reports whether name is one of CanonicalColumns.
func IsCanonical(name string) bool {
	for _, c := range CanonicalColumns {
		if c == name {
			return true
		}
	}
	return false
}

// SchemaNormalizer turns a located header row and the rows below it into a Ledger
// whose columns use canonical names where a synonym matched.
type SchemaNormalizer struct {
	lookup map[string]string
}

// NewSchemaNormalizer builds the lookup from DefaultSynonyms plus extra. Extra entries
// only add spellings; they never replace a built-in one.
func NewSchemaNormalizer(extra Synonyms) *SchemaNormalizer {
	n := &SchemaNormalizer{lookup: make(map[string]string)}
	for _, canonical := range CanonicalColumns {
		n.add(canonical, canonical)
		for _, s := range DefaultSynonyms[canonical] {
			n.add(s, canonical)
		}
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, canonical := range keys {
		for _, s := range extra[canonical] {
			n.add(s, canonical)
		}
	}
	return n
}

func (n *SchemaNormalizer) add(spelling, canonical string) {
	key := foldKey(cleanHeader(spelling))
	if key == "" {
		return
	}
	if _, exists := n.lookup[key]; !exists {
		n.lookup[key] = canonical
	}
}

// Canonical returns the canonical name for a cleaned header, if any.
func (n *SchemaNormalizer) Canonical(header string) (string, bool) {
	c, ok := n.lookup[foldKey(header)]
	return c, ok
}

// Columns computes the normalized column names for a header row of the given width.
func (n *SchemaNormalizer) Columns(header []domain.Cell, width int) []string {
	if len(header) > width {
		width = len(header)
	}

	cleaned := make([]string, width)
	seen := make(map[string]bool, width)
	for i := 0; i < width; i++ {
		h := ""
		if i < len(header) {
			h = cleanHeader(header[i].Text)
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		cleaned[i] = uniqueName(h, seen)
	}

	columns := make([]string, width)
	claimed := make(map[string]bool, len(CanonicalColumns))
	for i, h := range cleaned {
		if canonical, ok := n.Canonical(h); ok && !claimed[canonical] {
			claimed[canonical] = true
			columns[i] = canonical
		}
	}

	// Columns that kept their header must not collide with a claimed canonical name.
	used := make(map[string]bool, width)
	for c := range claimed {
		used[c] = true
	}
	for i, h := range cleaned {
		if columns[i] == "" {
			columns[i] = uniqueName(h, used)
		}
	}
	return columns
}

// Normalize builds a ledger from the grid. Rows above and including the header are
// dropped, fully blank rows are skipped, and every remaining row becomes a record.
func (n *SchemaNormalizer) Normalize(name string, grid domain.Grid, header domain.HeaderInfo) *domain.Ledger {
	var headerRow []domain.Cell
	if header.Row < len(grid) {
		headerRow = grid[header.Row]
	}

	width := len(headerRow)
	for r := header.Row + 1; r < len(grid); r++ {
		if len(grid[r]) > width {
			width = len(grid[r])
		}
	}

	ledger := &domain.Ledger{
		Name:    name,
		Columns: n.Columns(headerRow, width),
		Header:  header,
	}

	for r := header.Row + 1; r < len(grid); r++ {
		row := grid[r]
		if isBlankRow(row) {
			continue
		}
		rec := &domain.Record{
			Row:   r + 1,
			Cells: make(map[string]domain.Cell, len(ledger.Columns)),
		}
		for i, col := range ledger.Columns {
			if i < len(row) {
				rec.Cells[col] = row[i]
			}
		}
		ledger.Records = append(ledger.Records, rec)
	}
	return ledger
}

var headerReplacer = strings.NewReplacer("\u00a0", "", "\n", "", "\r", "")

// cleanHeader trims a header and removes non-breaking spaces and line breaks inside it.
func cleanHeader(s string) string {
	return headerReplacer.Replace(strings.TrimSpace(s))
}

func foldKey(s string) string {
	return cases.Fold().String(s)
}

func uniqueName(name string, seen map[string]bool) string {
	candidate := name
	for i := 1; seen[candidate]; i++ {
		candidate = fmt.Sprintf("%s.%d", name, i)
	}
	seen[candidate] = true
	return candidate
}

func isBlankRow(row []domain.Cell) bool {
	for _, c := range row {
		if strings.TrimSpace(c.Raw) != "" || strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}
