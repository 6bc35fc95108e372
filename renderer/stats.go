package renderer

import "time"

type WorkerStat struct {
	// The worker id.
	Id int

	// The block start row, height and the percentage of total frame
	// area it represents.
	BlockY       uint32
	BlockH       uint32
	FramePercent float32

	// Number of traced rays and the number of rays that hit the scene.
	Rays uint64
	Hits uint64

	// Render time for assigned block
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual worker stats.
	Workers []WorkerStat

	// Total render time for entire frame.
	RenderTime time.Duration
}
