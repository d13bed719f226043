// Package parallel spreads independent loop iterations over a fixed number
// of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"
)

// Config sizes the worker pool.
type Config struct {
	Enabled      bool // false runs every loop on the calling goroutine
	NumWorkers   int
	MinChunkSize int // loops shorter than this stay sequential
}

// DefaultConfig uses one worker per physical core as reported by cpuid,
// or runtime.NumCPU when cpuid cannot tell.
func DefaultConfig() Config {
	n := cpuid.CPU.PhysicalCores
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return Config{Enabled: n > 1, NumWorkers: n, MinChunkSize: 1}
}

// Sequential returns a config that never starts goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

func (c Config) workers(n int) int {
	if !c.Enabled || n < 2 || n < c.MinChunkSize {
		return 1
	}
	return max(min(c.NumWorkers, n), 1)
}

// For calls f(i) for every i in [0, n) and returns when all calls are done.
// Workers claim indices one at a time, so iterations of uneven cost still
// balance. f must be safe to call concurrently for distinct i.
func For(n int, f func(i int), cfg Config) {
	workers := cfg.workers(n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				f(i)
			}
		}()
	}
	wg.Wait()
}
