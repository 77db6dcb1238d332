package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"mlpipe/domain/core"
)

// StratifiedSplit partitions row indices into train and test so that each class
// keeps its share of rows. The test set holds ceil(testSize*n) rows; per-class
// test counts are allocated by largest remainder. The same seed gives the same split.
func StratifiedSplit(y []float64, testSize float64, seed int64) (train, test []int, err error) {
	n := len(y)
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0, 1), got %v", testSize)
	}

	byClass := make(map[float64][]int)
	for i, label := range y {
		if math.IsNaN(label) {
			return nil, nil, fmt.Errorf("%w: target has missing values", core.ErrInsufficientData)
		}
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]float64, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Float64s(classes)

	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if len(classes) < 2 {
		return nil, nil, core.ErrSingleClass
	}
	if nTest < len(classes) || nTrain < len(classes) {
		return nil, nil, fmt.Errorf("%w: %d rows cannot be split into %d test rows over %d classes",
			core.ErrInsufficientData, n, nTest, len(classes))
	}
	for _, c := range classes {
		if len(byClass[c]) < 2 {
			return nil, nil, fmt.Errorf("%w: class %v has a single member", core.ErrInsufficientData, c)
		}
	}

	alloc := allocate(classes, byClass, nTest, n)

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		idx := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		test = append(test, idx[:alloc[c]]...)
		train = append(train, idx[alloc[c]:]...)
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })
	return train, test, nil
}

// allocate distributes nTest across classes by largest remainder; ties go to the smaller label
func allocate(classes []float64, byClass map[float64][]int, nTest, n int) map[float64]int {
	type share struct {
		class     float64
		remainder float64
	}
	alloc := make(map[float64]int, len(classes))
	shares := make([]share, 0, len(classes))
	assigned := 0
	for _, c := range classes {
		exact := float64(nTest) * float64(len(byClass[c])) / float64(n)
		base := int(math.Floor(exact))
		alloc[c] = base
		assigned += base
		shares = append(shares, share{class: c, remainder: exact - float64(base)})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].remainder > shares[j].remainder })
	for i := 0; assigned < nTest; i++ {
		c := shares[i%len(shares)].class
		if alloc[c] < len(byClass[c])-1 {
			alloc[c]++
			assigned++
		}
	}
	return alloc
}
