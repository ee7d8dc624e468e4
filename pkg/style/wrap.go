package style

import "strings"

// WrapWidth is the longest name drawn on a single line.
const WrapWidth = 12

// Wrap breaks names longer than [WrapWidth] characters in two by replacing
// the space nearest the middle with a newline. Ties go to the earlier space.
// Names without a usable space are returned unchanged.
func Wrap(name string) string {
	r := []rune(name)
	if len(r) <= WrapWidth {
		return name
	}

	half := len(r) / 2
	best, dist := -1, len(r)+1
	for i, c := range r {
		if c != ' ' {
			continue
		}
		if d := abs(half - i); d < dist {
			best, dist = i, d
		}
	}
	// A leading space would leave an empty first line.
	if best <= 0 {
		return name
	}
	return string(r[:best]) + "\n" + string(r[best+1:])
}

// Lines returns the wrapped name split into display lines.
func Lines(name string) []string { return strings.Split(Wrap(name), "\n") }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
