// Package diff computes index based changes between two ordered lists of
// identifiers.
package diff

import "sort"

// Result holds the change between two lists. Deletions and Modifications
// index into the old list, Insertions into the new one. All three are sorted.
type Result struct {
	Insertions    []int
	Deletions     []int
	Modifications []int
}

func (r Result) Empty() bool {
	return len(r.Insertions) == 0 && len(r.Deletions) == 0 && len(r.Modifications) == 0
}

// IDs compares old and new by identifier. An identifier present in both
// lists is reported as modified when changed returns true for it. One whose
// position relative to the others changed is reported as a deletion plus an
// insertion so the result can be replayed against the old list: remove the
// deletions, then insert in ascending order.
func IDs(old, new []string, changed func(oldIdx, newIdx int) bool) Result {
	var res Result
	newIndex := make(map[string]int, len(new))
	for j, id := range new {
		newIndex[id] = j
	}
	oldIndex := make(map[string]int, len(old))
	for i, id := range old {
		oldIndex[id] = i
	}

	var commonOld, commonNew []int
	for i, id := range old {
		if j, ok := newIndex[id]; ok {
			commonOld = append(commonOld, i)
			commonNew = append(commonNew, j)
		} else {
			res.Deletions = append(res.Deletions, i)
		}
	}

	stay := longestIncreasing(commonNew)
	moved := make(map[int]bool)
	for k, i := range commonOld {
		j := commonNew[k]
		if !stay[k] {
			res.Deletions = append(res.Deletions, i)
			moved[j] = true
			continue
		}
		if changed != nil && changed(i, j) {
			res.Modifications = append(res.Modifications, i)
		}
	}
	for j, id := range new {
		if _, ok := oldIndex[id]; !ok || moved[j] {
			res.Insertions = append(res.Insertions, j)
		}
	}

	sort.Ints(res.Deletions)
	return res
}

// Replay applies r to old and returns the resulting identifiers, taking
// inserted identifiers from new.
func Replay(old, new []string, r Result) []string {
	out := append([]string(nil), old...)
	for k := len(r.Deletions) - 1; k >= 0; k-- {
		i := r.Deletions[k]
		out = append(out[:i], out[i+1:]...)
	}
	for _, j := range r.Insertions {
		out = append(out, "")
		copy(out[j+1:], out[j:])
		out[j] = new[j]
	}
	return out
}

// longestIncreasing marks the members of one longest strictly increasing
// subsequence of seq.
func longestIncreasing(seq []int) []bool {
	n := len(seq)
	keep := make([]bool, n)
	if n == 0 {
		return keep
	}
	var tails []int // index into seq of the smallest tail for each length
	prev := make([]int, n)
	for i, v := range seq {
		k := sort.Search(len(tails), func(x int) bool { return seq[tails[x]] >= v })
		prev[i] = -1
		if k > 0 {
			prev[i] = tails[k-1]
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}
