package reconciliation

import (
	"strings"

	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
)

// DefaultScanLimit is how many leading rows are inspected when looking for the header.
const DefaultScanLimit = 20

// HeaderRule is one named predicate of the header heuristic. Match receives the
// lowercase, space-joined text of a row.
type HeaderRule struct {
	Name  string
	Match func(rowText string) bool
}

// DefaultHeaderRules are tried in order; each one is a full pass over the scanned rows.
var DefaultHeaderRules = []HeaderRule{
	{
		Name: "supplier-with-reference",
		Match: func(t string) bool {
			return containsAny(t, "supplier", "party") && containsAny(t, "gst", "invoice")
		},
	},
	{
		Name: "supplier",
		Match: func(t string) bool {
			return containsAny(t, "supplier", "party")
		},
	},
	{
		Name: "invoice-with-date-or-number",
		Match: func(t string) bool {
			return strings.Contains(t, "invoice") && containsAny(t, "date", "no")
		},
	},
}

// HeaderRuleDefault names the outcome when no rule matched and row 0 is assumed.
const HeaderRuleDefault = "default"

// HeaderLocator finds the header row inside a sheet that may carry title rows above it.
type HeaderLocator struct {
	Rules []HeaderRule
	Limit int
}

// NewHeaderLocator returns a locator using DefaultHeaderRules. A non-positive limit
// falls back to DefaultScanLimit.
func NewHeaderLocator(limit int) *HeaderLocator {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	return &HeaderLocator{Rules: DefaultHeaderRules, Limit: limit}
}

// Locate returns the 0-based index of the header row. When nothing matches the
// result points at row 0 with Found set to false.
func (l *HeaderLocator) Locate(grid domain.Grid) domain.HeaderInfo {
	n := l.Limit
	if len(grid) < n {
		n = len(grid)
	}

	texts := make([]string, n)
	for i := 0; i < n; i++ {
		texts[i] = rowText(grid[i])
	}

	for _, rule := range l.Rules {
		for i, t := range texts {
			if rule.Match(t) {
				return domain.HeaderInfo{Row: i, Rule: rule.Name, Found: true}
			}
		}
	}
	return domain.HeaderInfo{Row: 0, Rule: HeaderRuleDefault}
}

func rowText(row []domain.Cell) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = c.Text
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
