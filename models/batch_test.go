package models

import (
	"sync"
	"testing"
)

func TestBatchJobRecordAndSnapshot(t *testing.T) {
	job := NewBatchJob("batch-x", 3)

	snap := job.Snapshot()
	if snap.Status != "processing" || snap.Completed != 0 || snap.Total != 3 {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	job.RecordResult(1, &CheckResponse{Success: true, Status: StatusValid})
	snap = job.Snapshot()
	if snap.Completed != 1 {
		t.Errorf("completed = %d, want 1", snap.Completed)
	}
	if snap.Results[0] != nil || snap.Results[1] == nil {
		t.Errorf("results = %v, want only index 1 set", snap.Results)
	}

	job.Finish("completed")
	if got := job.Snapshot().Status; got != "completed" {
		t.Errorf("status = %q, want completed", got)
	}
}

// Workers record results while status polls snapshot the same job; run with
// the race detector to verify the accesses are synchronized.
func TestBatchJobConcurrentRecordAndSnapshot(t *testing.T) {
	const n = 50
	job := NewBatchJob("batch-race", n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			job.RecordResult(idx, &CheckResponse{Success: true, Status: StatusInvalid})
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = job.Snapshot()
		}()
	}
	wg.Wait()
	job.Finish("completed")

	snap := job.Snapshot()
	if snap.Completed != n {
		t.Errorf("completed = %d, want %d", snap.Completed, n)
	}
	for i, res := range snap.Results {
		if res == nil {
			t.Errorf("result %d missing", i)
		}
	}
}
