package internal

import "sort"

// lisLength returns the length of the longest strictly increasing
// subsequence. Patience sorting: tails[i] holds the smallest possible tail
// of an increasing subsequence of length i+1.
func lisLength(seq []int) int {
	tails := make([]int, 0, len(seq))

	for _, v := range seq {
		i := sort.Search(len(tails), func(i int) bool { return tails[i] >= v })
		if i == len(tails) {
			tails = append(tails, v)
		} else {
			tails[i] = v
		}
	}

	return len(tails)
}
