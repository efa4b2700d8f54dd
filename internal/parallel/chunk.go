package parallel

// Range is a half-open [Start, End) span of work items.
type Range struct {
	Start int
	End   int
}

// ChunkRanges splits total items into at most chunks contiguous ranges.
// Items divide evenly; any remainder goes to the first ranges, one extra
// item each, so range sizes never differ by more than one. Returns a single
// range when chunks <= 1 or total is small enough not to split.
func ChunkRanges(total, chunks int) []Range {
	if total <= 0 {
		return nil
	}
	if chunks <= 1 || total <= chunks {
		return []Range{{0, total}}
	}

	per := total / chunks
	rem := total % chunks

	ranges := make([]Range, 0, chunks)
	start := 0
	for i := 0; i < chunks; i++ {
		size := per
		if i < rem {
			size++
		}
		ranges = append(ranges, Range{start, start + size})
		start += size
	}
	return ranges
}
