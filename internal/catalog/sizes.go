package catalog

import (
	"strconv"
	"strings"
	"unicode"
)

var apparelRank = map[string]int{
	"XS":  0,
	"S":   1,
	"M":   2,
	"L":   3,
	"XL":  4,
	"2XL": 5,
	"3XL": 6,
	"4XL": 7,
	"5XL": 8,
}

// leadingInt extracts the integer a size label starts with, so
// dimension labels like "12×12" and "30x40 cm" sort numerically.
func leadingInt(size string) (int, bool) {
	size = strings.TrimSpace(size)
	end := 0
	for end < len(size) && unicode.IsDigit(rune(size[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(size[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// sizeLess orders sizes for display: dimension labels by their leading
// number, apparel labels by the XS..5XL rank, anything unrecognized
// after those, alphabetically. The rank table must win before the
// numeric branch: "2XL" starts with a digit but is not a dimension.
func sizeLess(a, b string) bool {
	ar, aApp := apparelRank[strings.ToUpper(strings.TrimSpace(a))]
	br, bApp := apparelRank[strings.ToUpper(strings.TrimSpace(b))]
	if aApp && bApp {
		return ar < br
	}

	ai, aNum := leadingInt(a)
	bi, bNum := leadingInt(b)
	aNum = aNum && !aApp
	bNum = bNum && !bApp
	if aNum && bNum {
		if ai != bi {
			return ai < bi
		}
		return a < b
	}
	if aNum != bNum {
		return aNum
	}
	if aApp != bApp {
		return aApp
	}
	return a < b
}

// isSquareSize reports whether a dimension label is W×H with W == H.
// Labels without a dimension pair are not square.
func isSquareSize(size string) bool {
	w, h, ok := dimensions(size)
	return ok && w == h
}

// dimensions parses "W×H" or "WxH" from a size label, tolerating a
// trailing unit.
func dimensions(size string) (int, int, bool) {
	size = strings.TrimSpace(size)
	sep := strings.IndexAny(size, "x×")
	if sep < 0 {
		return 0, 0, false
	}
	w, ok := leadingInt(size[:sep])
	if !ok {
		return 0, 0, false
	}
	rest := size[sep:]
	rest = strings.TrimLeft(rest, "x×")
	h, ok := leadingInt(rest)
	if !ok {
		return 0, 0, false
	}
	return w, h, true
}
