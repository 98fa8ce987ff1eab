package splithttp

import "fmt"

// Range is an inclusive byte interval assigned to one worker. Index defines
// the assembly order.
type Range struct {
	Index     int
	FirstByte int64
	LastByte  int64
}

func (r Range) Header() string {
	return fmt.Sprintf("bytes=%d-%d", r.FirstByte, r.LastByte)
}

// ExpectedLength is the number of bytes a server sends for r on a resource
// of size bytes. The final range ends at size, one past the last byte, so it
// is clamped here.
func (r Range) ExpectedLength(size int64) int64 {
	last := min(r.LastByte, size-1)
	return max(0, last-r.FirstByte+1)
}

// PlanRanges splits size into workers contiguous ranges. Range ends are
// accumulated rather than computed as i*perWorker, and the last worker always
// ends at size, absorbing the division remainder.
func PlanRanges(size int64, workers int) ([]Range, error) {
	if workers < 1 || size <= 0 {
		return nil, &PlanningError{Size: size, Workers: workers}
	}
	perWorker := size / int64(workers)
	if perWorker == 0 {
		return nil, &PlanningError{Size: size, Workers: workers}
	}
	ranges := make([]Range, workers)
	var lastByte int64
	for i := range workers {
		first := int64(0)
		if i > 0 {
			first = lastByte + 1
		}
		last := lastByte + perWorker
		if i == workers-1 {
			last = size
		}
		ranges[i] = Range{Index: i, FirstByte: first, LastByte: last}
		lastByte = last
	}
	return ranges, nil
}
