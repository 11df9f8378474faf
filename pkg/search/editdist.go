package search

// Bounded Levenshtein distance used as the last-resort scorer. Costs are
// uniformly 1 for insertion, deletion and substitution; no transpositions.

// Tolerance returns the maximum edit distance at which two tokens still
// count as a fuzzy match: a quarter of the shorter token's length, but
// never less than one edit.
func Tolerance(a, b string) int {
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	tol := shorter / 4
	if tol < 1 {
		tol = 1
	}
	return tol
}

// Distance computes the Levenshtein distance between a and b, giving up as
// soon as the distance provably exceeds bound. It uses a single rolling row
// rather than a full matrix, and abandons the sweep once every entry in the
// current row is above the bound. Returns ok=false when the bound was
// exceeded; the returned distance is then meaningless.
func Distance(a, b string, bound int) (int, bool) {
	if a == b {
		return 0, true
	}
	// Roll over the shorter string to keep the row small.
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > bound {
		return 0, false
	}
	if len(a) == 0 {
		return len(b), len(b) <= bound
	}

	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}

	for j := 1; j <= len(b); j++ {
		prev := row[0]
		row[0] = j
		rowMin := row[0]
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			sub := prev + cost
			del := row[i] + 1
			ins := row[i-1] + 1

			prev = row[i]
			best := sub
			if del < best {
				best = del
			}
			if ins < best {
				best = ins
			}
			row[i] = best
			if best < rowMin {
				rowMin = best
			}
		}
		if rowMin > bound {
			return 0, false
		}
	}

	d := row[len(a)]
	return d, d <= bound
}
