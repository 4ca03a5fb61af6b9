package frontend

// ScanDensity classifies a scan by its point count.
type ScanDensity int

const (
	// DensityNormal is any scan at or below the open-space threshold.
	DensityNormal ScanDensity = iota
	// DensityOpenSpace is a scan strictly above the open-space threshold,
	// used to adapt downstream filtering aggressiveness.
	DensityOpenSpace
)

func (d ScanDensity) String() string {
	if d == DensityOpenSpace {
		return "open_space"
	}
	return "normal"
}

// ClassifyDensity classifies a scan from its point count. The comparison is
// a strict greater-than: a count equal to the threshold is normal.
func ClassifyDensity(pointCount, threshold int) ScanDensity {
	if pointCount > threshold {
		return DensityOpenSpace
	}
	return DensityNormal
}
