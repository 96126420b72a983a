package excel

// ReadOptions controls how cells become values
type ReadOptions struct {
	Sheet string // xlsx only; the first sheet when empty

	// MaskMissing marks empty and unparsable cells in the mask instead of
	// storing NaN. Masked cells hold zero.
	MaskMissing bool
}

// Table is a numeric data set read from a file
type Table struct {
	Headers []string
	Rows    [][]string
}
