package renderer

import "runtime"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of goroutines tracing blocks of rows in parallel. If zero,
	// one worker per CPU is used.
	Workers int
}

// Get the number of workers to use for a frame. Each worker is assigned
// at least one row.
func (o Options) workerCount() int {
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > int(o.FrameH) {
		workers = int(o.FrameH)
	}
	return workers
}
