package testutil

import (
	"sync"

	dErrors "kycgate/pkg/domain-errors"
)

// ConcurrentResult tallies the outcomes of RunConcurrent.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	ByCode    map[dErrors.Code]int32 // failures by domain code
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors
}

// RunConcurrent calls fn from n goroutines released together and waits
// for all of them.
func RunConcurrent(n int, fn func(idx int) error) *ConcurrentResult {
	res := &ConcurrentResult{ByCode: map[dErrors.Code]int32{}}
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		ready sync.WaitGroup
	)
	gate := make(chan struct{})
	ready.Add(n)

	for i := range n {
		wg.Go(func() {
			ready.Done()
			<-gate
			err := fn(i)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				res.Successes++
				return
			}
			res.Errors++
			res.ByCode[dErrors.CodeOf(err)]++
		})
	}

	ready.Wait()
	close(gate)
	wg.Wait()
	return res
}
