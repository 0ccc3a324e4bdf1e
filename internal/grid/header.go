package grid

import "strings"

// Sort direction markers appended to the label of the sorted column.
const (
	AscendingMarker  = " ▲"
	DescendingMarker = " ▼"
)

// Headers returns the column labels for display, with the direction marker
// on the sorted column.
func (g *Grid) Headers() []string {
	out := g.Columns()
	if g.sort.Active && g.sort.Column < len(out) {
		out[g.sort.Column] += g.sort.Dir.marker()
	}
	return out
}

// StripSortMarker removes a trailing direction marker from a header label.
func StripSortMarker(label string) string {
	for _, m := range []string{AscendingMarker, DescendingMarker} {
		if strings.HasSuffix(label, m) {
			return strings.TrimSuffix(label, m)
		}
	}
	return label
}

func (d Direction) marker() string {
	if d == Descending {
		return DescendingMarker
	}
	return AscendingMarker
}
