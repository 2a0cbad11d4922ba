package store

// maxPostgresParams is the hard bind-parameter ceiling of the postgres wire
// protocol. Multi-row inserts must stay strictly under it.
const maxPostgresParams = 65535

// Chunks splits n rows of columnsPerRow columns each into [start, end)
// index pairs sized so every resulting statement binds fewer than
// maxPostgresParams parameters.
func Chunks(n int, columnsPerRow int) [][2]int {
	rowsPerChunk := 1
	if columnsPerRow > 0 {
		if byParams := (maxPostgresParams - 1) / columnsPerRow; byParams > 1 {
			rowsPerChunk = byParams
		}
	}

	var chunks [][2]int
	for start := 0; start < n; start += rowsPerChunk {
		end := start + rowsPerChunk
		if end > n {
			end = n
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}
