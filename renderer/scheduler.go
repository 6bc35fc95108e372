package renderer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign them to a
	// pool of workers using feedback collected from the previous frame.
	//
	// This function returns the block height assignment for each worker.
	// The assigned heights always add up to frameH.
	Schedule(workers int, lastFrame []WorkerStat, frameH uint32) []uint32
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of workers using feedback collected from the previous frame.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for worker w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(workers int, lastFrame []WorkerStat, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of workers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != workers || len(lastFrame) != workers || !hasTimings(lastFrame) {
		sch.blockAssignment = make([]uint32, workers)
		for idx := range sch.blockAssignment {
			sch.blockAssignment[idx] = frameH / uint32(workers)
		}
		sch.blockAssignment[0] += frameH % uint32(workers)
		return sch.blockAssignment
	}

	// Use last frame statistics
	var total float64 = 0.0
	for _, stat := range lastFrame {
		total += float64(stat.BlockH) / float64(stat.RenderTime)
	}

	scaler := float64(frameH) / total
	var scheduledRows int64 = 0
	for idx, stat := range lastFrame {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stat.BlockH)/float64(stat.RenderTime)*scaler)))
		scheduledRows += int64(sch.blockAssignment[idx])
	}

	// Rows lost to rounding go to the first worker while extra rows caused
	// by the one row minimum are taken from the largest blocks.
	if missing := int64(frameH) - scheduledRows; missing >= 0 {
		sch.blockAssignment[0] += uint32(missing)
	} else {
		for ; missing < 0; missing++ {
			largest := 0
			for idx, rows := range sch.blockAssignment {
				if rows > sch.blockAssignment[largest] {
					largest = idx
				}
			}
			sch.blockAssignment[largest]--
		}
	}

	return sch.blockAssignment
}

// Returns true if every worker reported a render time for a non-empty block.
func hasTimings(stats []WorkerStat) bool {
	for _, stat := range stats {
		if stat.RenderTime <= 0 || stat.BlockH == 0 {
			return false
		}
	}
	return true
}
