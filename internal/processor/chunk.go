package processor

// Chunk is one contiguous window of data rows. Start is the index of the
// first row within the table body, so results can be re-aligned after
// batching.
type Chunk struct {
	Start int
	Rows  [][]string
}

// Chunks lazily produces fixed-size row windows in strict ascending order.
// The windows partition the rows exactly; only the final window may be
// shorter than the configured size. Restarting requires a new Chunks.
type Chunks struct {
	rows [][]string
	size int
	next int
}

// NewChunks creates an iterator over rows with the given window size.
// A size below 1 is treated as 1.
func NewChunks(rows [][]string, size int) *Chunks {
	if size < 1 {
		size = 1
	}
	return &Chunks{rows: rows, size: size}
}

// Next returns the next window, or ok=false when the rows are exhausted.
func (c *Chunks) Next() (Chunk, bool) {
	if c.next >= len(c.rows) {
		return Chunk{}, false
	}

	end := c.next + c.size
	if end > len(c.rows) {
		end = len(c.rows)
	}

	chunk := Chunk{Start: c.next, Rows: c.rows[c.next:end]}
	c.next = end
	return chunk, true
}
