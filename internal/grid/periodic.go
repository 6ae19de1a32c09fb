package grid

// ApplyPeriodic refreshes the halo ring from the opposite interior edge so
// the domain wraps on both axes. Rows are copied over the full width before
// columns are copied over the full height, which leaves each corner equal to
// the diagonally opposite interior corner.
func ApplyPeriodic(f *Field) {
	n, s, d := f.n, f.stride, f.data

	copy(d[0:s], d[n*s:(n+1)*s])
	copy(d[(n+1)*s:(n+2)*s], d[s:2*s])

	for i := 0; i < n+2; i++ {
		row := i * s
		d[row] = d[row+n]
		d[row+n+1] = d[row+1]
	}
}
