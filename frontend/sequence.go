package frontend

// ContinuityResult is the outcome of a sequence continuity check.
type ContinuityResult int

const (
	// ContinuityInitialized is reported for the very first scan seen.
	ContinuityInitialized ContinuityResult = iota
	// ContinuityOK means the scan directly follows the previous one.
	ContinuityOK
	// ContinuityGap means at least one scan was dropped or reordered. A gap
	// is a warning, never an error; the current scan is still processed.
	ContinuityGap
)

// SequenceGuard tracks the monotonically increasing scan sequence counter and
// flags gaps.
type SequenceGuard struct {
	initialized bool
	previous    uint32
}

// Check records the sequence number and reports continuity against the
// previously seen one. The stored value advances regardless of the result.
func (g *SequenceGuard) Check(sequence uint32) ContinuityResult {
	if !g.initialized {
		g.previous = sequence
		g.initialized = true
		return ContinuityInitialized
	}
	result := ContinuityOK
	if sequence != g.previous+1 {
		result = ContinuityGap
	}
	g.previous = sequence
	return result
}
