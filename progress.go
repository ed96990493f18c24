package geocsv

// Progress receives the whole percentage of rows processed.
type Progress func(percent int)

// progressTracker reports a percentage only when it moves past the last
// reported one.
type progressTracker struct {
	total int
	last  int
	fn    Progress
}

func newProgressTracker(total int, fn Progress) *progressTracker {
	return &progressTracker{total: total, fn: fn}
}

// rowDone records that global row has been emitted.
func (p *progressTracker) rowDone(row int) {
	if p.fn == nil || p.total <= 0 {
		return
	}
	current := (row + 1) * 100 / p.total
	if current > p.last {
		p.last = current
		p.fn(current)
	}
}
