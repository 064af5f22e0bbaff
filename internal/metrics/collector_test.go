package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()

	c.RecordTiming(OpToolCall, 10*time.Millisecond)
	c.RecordTiming(OpToolCall, 30*time.Millisecond)
	c.RecordTiming(OpToolCall, 20*time.Millisecond)

	if got := c.Count(OpToolCall); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}

	snap := c.GetSnapshot()
	if snap.ToolCall == nil {
		t.Fatal("ToolCall snapshot should not be nil")
	}
	if snap.ToolCall.Count != 3 {
		t.Errorf("snapshot count = %d, want 3", snap.ToolCall.Count)
	}
	if snap.ToolCall.MinTimeMs != 10 {
		t.Errorf("MinTimeMs = %d, want 10", snap.ToolCall.MinTimeMs)
	}
	if snap.ToolCall.MaxTimeMs != 30 {
		t.Errorf("MaxTimeMs = %d, want 30", snap.ToolCall.MaxTimeMs)
	}
	if snap.ToolCall.AvgTimeMs != 20 {
		t.Errorf("AvgTimeMs = %v, want 20", snap.ToolCall.AvgTimeMs)
	}

	if snap.Embedding != nil {
		t.Error("operations that never ran should snapshot as nil")
	}
}

func TestCount_Unrecorded(t *testing.T) {
	c := NewCollector()
	if got := c.Count(OpModelCall); got != 0 {
		t.Errorf("Count of unrecorded op = %d, want 0", got)
	}
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordTiming(OpEmbedding, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := c.Count(OpEmbedding); got != 1000 {
		t.Errorf("Count = %d, want 1000", got)
	}
}
