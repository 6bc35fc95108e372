package renderer

import (
	"testing"
	"time"
)

func TestPerfectScheduler(t *testing.T) {
	type spec struct {
		frameH   uint32
		rTime1   time.Duration
		rTime2   time.Duration
		expRows1 uint32
		expRows2 uint32
	}
	specs := []spec{
		// First call splits the frame evenly
		{10, time.Duration(1), time.Duration(5), 5, 5},
		// Second call should use the render times to assign rows
		{10, time.Duration(1), time.Duration(5), 9, 1},
		// This time worker 2 performed much better
		{10, time.Duration(5), time.Duration(1), 7, 3},
	}

	sch := NewPerfectScheduler()
	var lastBlocks []uint32
	for index, s := range specs {
		// Timings of the current spec refer to the blocks assigned by the
		// previous call
		var lastFrame []WorkerStat
		if lastBlocks != nil {
			lastFrame = []WorkerStat{
				{BlockH: lastBlocks[0], RenderTime: s.rTime1},
				{BlockH: lastBlocks[1], RenderTime: s.rTime2},
			}
		}

		blockAssignment := sch.Schedule(2, lastFrame, s.frameH)

		if blockAssignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d rows; got %d", index, s.expRows1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d rows; got %d", index, s.expRows2, blockAssignment[1])
		}

		lastBlocks = []uint32{blockAssignment[0], blockAssignment[1]}
	}
}

func TestPerfectSchedulerKeepsFrameHeight(t *testing.T) {
	sch := NewPerfectScheduler()

	type spec struct {
		workers int
		frameH  uint32
	}
	specs := []spec{
		{3, 10},
		{4, 4},
		{1, 7},
	}

	for index, s := range specs {
		blocks := sch.Schedule(s.workers, nil, s.frameH)
		assertRows(t, index, blocks, s.frameH)

		// One very slow worker forces the one row minimum on the others
		lastFrame := make([]WorkerStat, s.workers)
		for i := range lastFrame {
			lastFrame[i] = WorkerStat{BlockH: blocks[i], RenderTime: time.Duration(1)}
		}
		lastFrame[0].RenderTime = time.Duration(1)
		for i := 1; i < s.workers; i++ {
			lastFrame[i].RenderTime = time.Hour
		}

		blocks = sch.Schedule(s.workers, lastFrame, s.frameH)
		assertRows(t, index, blocks, s.frameH)
	}
}

func assertRows(t *testing.T, index int, blocks []uint32, frameH uint32) {
	var total uint32
	for worker, rows := range blocks {
		if rows == 0 {
			t.Fatalf("[spec %d] expected worker %d to be assigned at least one row", index, worker)
		}
		total += rows
	}
	if total != frameH {
		t.Fatalf("[spec %d] expected assigned rows to add up to %d; got %d", index, frameH, total)
	}
}
