package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunksEmpty(t *testing.T) {
	assert.Nil(t, Chunks(0, 14))
}

func TestChunksSingle(t *testing.T) {
	chunks := Chunks(5, 14)
	require.Len(t, chunks, 1)
	assert.Equal(t, [2]int{0, 5}, chunks[0])
}

func TestChunksSplit(t *testing.T) {
	// 14 columns allow 4680 rows per statement under the parameter cap.
	chunks := Chunks(10_000, 14)
	require.Len(t, chunks, 3)

	assert.Equal(t, 0, chunks[0][0])
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1][1], chunks[i][0], "chunks must be contiguous")
	}
	assert.Equal(t, 10_000, chunks[len(chunks)-1][1])
}

func TestChunksStayUnderParamCeiling(t *testing.T) {
	for _, cols := range []int{1, 3, 9, 14, 200} {
		for _, chunk := range Chunks(200_000, cols) {
			params := (chunk[1] - chunk[0]) * cols
			assert.Less(t, params, maxPostgresParams)
		}
	}
}

func TestChunksWideRow(t *testing.T) {
	// A row wider than the ceiling still gets one row per statement.
	chunks := Chunks(3, maxPostgresParams+1)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, [2]int{i, i + 1}, c)
	}
}
