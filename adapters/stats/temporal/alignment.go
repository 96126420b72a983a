package temporal

import (
	"gonum.org/v1/gonum/mat"

	"gocit/domain/core"
	"gocit/domain/dataset"
	"gocit/internal"
	"gocit/internal/errors"
)

// ============================================================================
// LAG ALIGNMENT LAYER
// ============================================================================
// This package turns a (T, N) time series plus lagged node lists X, Y, Z into
// the (dim, T_eff) sample array every dependence measure consumes. Column t of
// the result holds values that are mutually lag-consistent: node (v, -tau) in
// column t was observed tau steps before the Y reference time of that column.
// ============================================================================

// Spec names the nodes of one test I(X;Y|Z)
type Spec struct {
	X, Y, Z core.NodeSet
	TauMax  int
}

// Options controls masking during construction
type Options struct {
	UseMask  bool
	MaskType core.MaskType
}

// Aligned is the constructed array together with the cleaned node lists
type Aligned struct {
	Array   *dataset.Array
	X, Y, Z core.NodeSet
	MaxLag  int
}

// Builder constructs lag-aligned sample arrays
type Builder struct {
	logger *internal.Logger
}

// NewBuilder creates a Builder; a nil logger uses the default logger
func NewBuilder(logger *internal.Logger) *Builder {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Builder{logger: logger}
}

// ============================================================================
// FUNCTION 1: Build
// ============================================================================
// Deduplicates the node lists, validates them against the data, shifts every
// row onto the common index range [max_lag, T) and optionally drops masked
// columns.

// Build constructs the sample array for spec from df
func (b *Builder) Build(df *dataset.DataFrame, spec Spec, opts Options) (*Aligned, error) {
	if df == nil || df.Values == nil {
		return nil, errors.InvalidSpec("no data set")
	}
	T, N := df.Dims()

	x := spec.X.Unique()
	y := spec.Y.Unique()
	z := spec.Z.Unique().Without(x, y)

	if len(x) == 0 {
		return nil, errors.InvalidSpec("X must be non-empty")
	}
	if len(y) == 0 {
		return nil, errors.InvalidSpec("Y must be non-empty")
	}
	if spec.TauMax < 0 {
		return nil, errors.InvalidSpec("tau_max = %d, but must be non-negative", spec.TauMax)
	}

	xyz := make(core.NodeSet, 0, len(x)+len(y)+len(z))
	xyz = append(append(append(xyz, x...), y...), z...)
	if err := xyz.Validate(N); err != nil {
		return nil, err
	}
	if !hasReferenceNode(y) {
		return nil, errors.InvalidSpec("Y-nodes are %s, but one of the Y-nodes must have zero lag", y)
	}

	maxLag := xyz.MaxAbsLag()
	if spec.TauMax > maxLag {
		maxLag = spec.TauMax
	}
	tEff := T - maxLag
	if tEff <= 0 {
		return nil, errors.Newf(errors.CodeNoUsableSamples, "max lag %d leaves no samples out of %d", maxLag, T)
	}

	roles := roleVector(len(x), len(y), len(z))
	dim := len(xyz)

	keep := make([]bool, tEff)
	for t := range keep {
		keep[t] = true
	}
	kept := tEff
	if opts.UseMask {
		if df.Mask == nil {
			return nil, errors.InvalidConfig("use_mask is set but the data has no mask")
		}
		kept = selectUnmasked(df.Mask, xyz, roles, maxLag, opts.MaskType, keep)
		if kept == 0 {
			return nil, errors.NoUsableSamples("no unmasked samples")
		}
	}

	values := mat.NewDense(dim, kept, nil)
	for i, node := range xyz {
		row := values.RawRowView(i)
		col := 0
		for t := 0; t < tEff; t++ {
			if !keep[t] {
				continue
			}
			row[col] = df.Values.At(maxLag+node.Lag+t, node.Var)
			col++
		}
	}

	b.logger.Trace("constructed array of shape (%d, %d) from X = %s, Y = %s, Z = %s", dim, kept, x, y, z)
	if opts.UseMask {
		b.logger.Trace("masked samples in %s removed", opts.MaskType)
	}

	return &Aligned{
		Array:  dataset.NewArray(values, roles),
		X:      x,
		Y:      y,
		Z:      z,
		MaxLag: maxLag,
	}, nil
}

// hasReferenceNode reports whether some Y node sits at lag zero
func hasReferenceNode(y core.NodeSet) bool {
	for _, n := range y {
		if n.Lag == 0 {
			return true
		}
	}
	return false
}

func roleVector(nx, ny, nz int) []core.Role {
	roles := make([]core.Role, 0, nx+ny+nz)
	for i := 0; i < nx; i++ {
		roles = append(roles, core.RoleX)
	}
	for i := 0; i < ny; i++ {
		roles = append(roles, core.RoleY)
	}
	for i := 0; i < nz; i++ {
		roles = append(roles, core.RoleZ)
	}
	return roles
}

// selectUnmasked clears keep[t] for every column where a node of a selected
// role group is masked, and returns the number of columns left
func selectUnmasked(mask *dataset.Mask, xyz core.NodeSet, roles []core.Role, maxLag int, mt core.MaskType, keep []bool) int {
	kept := 0
	for t := range keep {
		for i, node := range xyz {
			if !mt.Includes(roles[i]) {
				continue
			}
			if mask.At(maxLag+node.Lag+t, node.Var) {
				keep[t] = false
				break
			}
		}
		if keep[t] {
			kept++
		}
	}
	return kept
}
