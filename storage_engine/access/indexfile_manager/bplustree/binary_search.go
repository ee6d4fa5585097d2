package bplus

// findChildIndex returns the smallest i in [0,count] such that
// key < keys[i] (or count if key is >= every occupied separator) — the
// child-selection rule used by both locate and descent (spec.md §4.2).
func (w *width) findChildIndex(keys [][]byte, count int, key []byte) int {
	lo, hi := 0, count
	for lo < hi {
		mid := (lo + hi) / 2
		if w.compare(key, keys[mid]) < 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// findLeafIndex returns the position at which key belongs in a leaf's
// occupied prefix, and whether an equal key is already present there
// (spec.md §4.3 "find the insertion index j").
func (w *width) findLeafIndex(keys [][]byte, count int, key []byte) (idx int, found bool) {
	lo, hi := 0, count
	for lo < hi {
		mid := (lo + hi) / 2
		if w.compare(keys[mid], key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < count && w.compare(keys[lo], key) == 0 {
		return lo, true
	}
	return lo, false
}
