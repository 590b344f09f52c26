package timedquiz

import (
	"math/rand"
	"time"
)

// SampleQuestions draws min(n, len(bank)) distinct questions from bank in random order.
//
// It runs a partial Fisher-Yates shuffle over an index permutation: position i is
// swapped with a uniformly chosen position in [i, len). After n steps the first n
// indexes are a uniformly random ordered n-subset of the bank. bank is not modified.
func SampleQuestions(bank []Question, n int, rng *rand.Rand) []Question {
	if n <= 0 || len(bank) == 0 {
		return nil
	}
	if n > len(bank) {
		n = len(bank)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	idx := make([]int, len(bank))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	selected := make([]Question, n)
	for i := 0; i < n; i++ {
		selected[i] = bank[idx[i]]
	}
	return selected
}
