package splithttp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRangesExamples(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		workers int
		want    []Range
	}{
		{
			name:    "remainder goes to last worker",
			size:    10,
			workers: 3,
			want:    []Range{{0, 0, 3}, {1, 4, 6}, {2, 7, 10}},
		},
		{
			name:    "even split",
			size:    1000,
			workers: 4,
			want:    []Range{{0, 0, 250}, {1, 251, 500}, {2, 501, 750}, {3, 751, 1000}},
		},
		{
			name:    "single worker",
			size:    42,
			workers: 1,
			want:    []Range{{0, 0, 42}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanRanges(tt.size, tt.workers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanRangesPartition(t *testing.T) {
	for size := int64(1); size <= 120; size++ {
		for workers := 1; int64(workers) <= size; workers++ {
			ranges, err := PlanRanges(size, workers)
			require.NoError(t, err, "size=%d workers=%d", size, workers)
			require.Len(t, ranges, workers)
			require.Equal(t, int64(0), ranges[0].FirstByte)
			require.Equal(t, size, ranges[workers-1].LastByte)
			var covered int64
			for i, r := range ranges {
				require.Equal(t, i, r.Index)
				require.LessOrEqual(t, r.FirstByte, r.LastByte)
				if i > 0 {
					require.Equal(t, ranges[i-1].LastByte+1, r.FirstByte, "size=%d workers=%d index=%d", size, workers, i)
				}
				covered += r.ExpectedLength(size)
			}
			require.Equal(t, size, covered, "size=%d workers=%d", size, workers)
		}
	}
}

func TestPlanRangesTooManyWorkers(t *testing.T) {
	ranges, err := PlanRanges(3, 4)
	require.Error(t, err)
	assert.Nil(t, ranges)

	var planErr *PlanningError
	require.True(t, errors.As(err, &planErr))
	assert.Equal(t, int64(3), planErr.Size)
	assert.Equal(t, 4, planErr.Workers)
}

func TestPlanRangesInvalidInput(t *testing.T) {
	_, err := PlanRanges(0, 1)
	var planErr *PlanningError
	assert.True(t, errors.As(err, &planErr))

	_, err = PlanRanges(10, 0)
	assert.True(t, errors.As(err, &planErr))
}

func TestRangeHeaderAndExpectedLength(t *testing.T) {
	r := Range{Index: 2, FirstByte: 7, LastByte: 10}
	assert.Equal(t, "bytes=7-10", r.Header())
	assert.Equal(t, int64(3), r.ExpectedLength(10))
	assert.Equal(t, int64(4), r.ExpectedLength(100))

	tail := Range{Index: 2, FirstByte: 3, LastByte: 3}
	assert.Equal(t, int64(0), tail.ExpectedLength(3))
}
