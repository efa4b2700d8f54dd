package parallel

import "testing"

func TestChunkRanges_EvenSplit(t *testing.T) {
	ranges := ChunkRanges(100, 4)

	if len(ranges) != 4 {
		t.Fatalf("len(ranges) = %d, want 4", len(ranges))
	}
	for i, r := range ranges {
		if r.End-r.Start != 25 {
			t.Errorf("range %d size = %d, want 25", i, r.End-r.Start)
		}
	}
}

func TestChunkRanges_RemainderToFirst(t *testing.T) {
	// 103 items over 4 chunks: remainder 3 goes to the first 3 chunks.
	ranges := ChunkRanges(103, 4)

	if len(ranges) != 4 {
		t.Fatalf("len(ranges) = %d, want 4", len(ranges))
	}

	wantSizes := []int{26, 26, 26, 25}
	for i, r := range ranges {
		if got := r.End - r.Start; got != wantSizes[i] {
			t.Errorf("range %d size = %d, want %d", i, got, wantSizes[i])
		}
	}
}

func TestChunkRanges_Contiguous(t *testing.T) {
	ranges := ChunkRanges(1001, 7)

	if ranges[0].Start != 0 {
		t.Errorf("first range starts at %d, want 0", ranges[0].Start)
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Start != ranges[i-1].End {
			t.Errorf("range %d starts at %d, previous ends at %d", i, ranges[i].Start, ranges[i-1].End)
		}
	}
	if last := ranges[len(ranges)-1]; last.End != 1001 {
		t.Errorf("last range ends at %d, want 1001", last.End)
	}
}

func TestChunkRanges_SingleChunk(t *testing.T) {
	ranges := ChunkRanges(50, 1)

	if len(ranges) != 1 {
		t.Fatalf("len(ranges) = %d, want 1", len(ranges))
	}
	if ranges[0].Start != 0 || ranges[0].End != 50 {
		t.Errorf("range = [%d, %d), want [0, 50)", ranges[0].Start, ranges[0].End)
	}
}

func TestChunkRanges_FewerItemsThanChunks(t *testing.T) {
	ranges := ChunkRanges(3, 8)

	if len(ranges) != 1 {
		t.Fatalf("len(ranges) = %d, want 1 (no point splitting tiny work)", len(ranges))
	}
	if ranges[0].Start != 0 || ranges[0].End != 3 {
		t.Errorf("range = [%d, %d), want [0, 3)", ranges[0].Start, ranges[0].End)
	}
}

func TestChunkRanges_Empty(t *testing.T) {
	if ranges := ChunkRanges(0, 4); ranges != nil {
		t.Errorf("ChunkRanges(0, 4) = %v, want nil", ranges)
	}
	if ranges := ChunkRanges(-10, 4); ranges != nil {
		t.Errorf("ChunkRanges(-10, 4) = %v, want nil", ranges)
	}
}
