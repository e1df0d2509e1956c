package concurrency

import "sync"

// FanOut distributes task indices 0..tasks-1 across at most workers
// goroutines and blocks until every task has run. fn must be safe to call
// concurrently for distinct indices.
func FanOut(workers, tasks int, fn func(index int)) {
	if tasks == 0 {
		return
	}
	if workers > tasks {
		workers = tasks
	}
	if workers < 1 {
		workers = 1
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(i)
			}
		}()
	}
	for i := 0; i < tasks; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}
