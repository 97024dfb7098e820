package uploader

import (
	"sync"
	"time"
)

// WindowPool runs tasks in fixed-size concurrency windows. All tasks in a
// window start together and the pool waits for every one of them to settle
// before the next window begins, so one task's failure never cancels its
// siblings. A pause between windows throttles load on the backend.
type WindowPool struct {
	Size  int
	Pause time.Duration
}

// Run executes the tasks and returns one error slot per task, index-aligned
// with the input. It always runs to completion.
func (p *WindowPool) Run(tasks []func() error) []error {
	size := p.Size
	if size < 1 {
		size = 1
	}

	errs := make([]error, len(tasks))
	for start := 0; start < len(tasks); start += size {
		end := start + size
		if end > len(tasks) {
			end = len(tasks)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = tasks[i]()
			}(i)
		}
		wg.Wait()

		if end < len(tasks) && p.Pause > 0 {
			time.Sleep(p.Pause)
		}
	}

	return errs
}
