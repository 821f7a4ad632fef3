package report

import "golang.org/x/text/width"

// displayWidth returns the terminal display width of a header, counting
// East Asian wide and fullwidth runes as two cells. Column headers in the
// source reports mix ASCII and CJK, so len() alone undersizes columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}
