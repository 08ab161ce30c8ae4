package loader

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// TrainTestSplit partitions the row indices 0..n-1 into disjoint train and
// test sets. The test set holds ceil(testRatio*n) rows drawn from a
// permutation seeded by seed, so the same seed always gives the same split.
// Both sets keep the permutation order; folds cut from them are therefore
// not contiguous runs of the original rows.
func TrainTestSplit(n int, testRatio float64, seed int64) (train, test []int, err error) {
	if !(testRatio > 0 && testRatio < 1) {
		return nil, nil, fmt.Errorf("split: test ratio %v outside (0,1)", testRatio)
	}
	nTest := int(math.Ceil(testRatio * float64(n)))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, fmt.Errorf("split: %d rows cannot be split with test ratio %v", n, testRatio)
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	test = append([]int(nil), indices[:nTest]...)
	train = append([]int(nil), indices[nTest:]...)
	return train, test, nil
}

// KFold splits 0..n-1 into k contiguous folds. The first n%k folds hold one
// extra row.
func KFold(n, k int) ([][]int, error) {
	if err := checkFolds(n, k); err != nil {
		return nil, err
	}
	folds := make([][]int, k)
	start := 0
	for f := range k {
		size := n / k
		if f < n%k {
			size++
		}
		for i := start; i < start+size; i++ {
			folds[f] = append(folds[f], i)
		}
		start += size
	}
	return folds, nil
}

// KFoldSplit yields k folds of shuffled indices.
func KFoldSplit(n, k int, seed int64) ([][]int, error) {
	if err := checkFolds(n, k); err != nil {
		return nil, err
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i := range n {
		folds[i%k] = append(folds[i%k], indices[i])
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds, nil
}

// StratifiedKFold splits row indices into k folds so each class is spread as
// evenly as possible: the rows of every class are cut, in order, into k
// contiguous chunks and chunk f goes to fold f.
func StratifiedKFold(y []int, k int) ([][]int, error) {
	if err := checkFolds(len(y), k); err != nil {
		return nil, err
	}
	byClass := map[int][]int{}
	var classes []int
	for i, label := range y {
		if _, ok := byClass[label]; !ok {
			classes = append(classes, label)
		}
		byClass[label] = append(byClass[label], i)
	}
	sort.Ints(classes)

	folds := make([][]int, k)
	offset := 0
	for _, c := range classes {
		rows := byClass[c]
		start := 0
		for f := range k {
			// rotate which folds get the remainder so small classes do not all
			// land in the first folds
			slot := (f + offset) % k
			size := len(rows) / k
			if f < len(rows)%k {
				size++
			}
			folds[slot] = append(folds[slot], rows[start:start+size]...)
			start += size
		}
		offset += len(rows) % k
	}
	for f := range folds {
		if len(folds[f]) == 0 {
			return nil, fmt.Errorf("split: fold %d is empty", f)
		}
		sort.Ints(folds[f])
	}
	return folds, nil
}

// Complement returns the indices of 0..n-1 that are not in fold.
func Complement(n int, fold []int) []int {
	in := make([]bool, n)
	for _, i := range fold {
		in[i] = true
	}
	out := make([]int, 0, n-len(fold))
	for i := range n {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

func checkFolds(n, k int) error {
	if k < 2 {
		return fmt.Errorf("split: need at least 2 folds, got %d", k)
	}
	if k > n {
		return fmt.Errorf("split: %d folds requested for %d rows", k, n)
	}
	return nil
}
