package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Site answered
	SymbolFail    = "✗" // Site failed
	SymbolPending = "○" // Site disabled
	SymbolSorted  = "▲" // Ascending primary sorter
	SymbolReverse = "▼" // Descending primary sorter
)

// SortIndicator returns the header marker of a sort order as returned by
// Cell.SortOrder.
func SortIndicator(order string) string {
	switch order {
	case "asc":
		return SymbolSorted
	case "desc":
		return SymbolReverse
	}
	return ""
}
