package cluster

import (
	"fmt"

	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects the rows of x onto the leading principal components,
// returning an n-by-components coordinate matrix for visualization.
func PCA(x *mat.Dense, components int) (*mat.Dense, error) {
	n, d := x.Dims()
	if max := min(n, d); components > max {
		components = max
	}
	if components < 1 {
		return nil, pfx.Err(fmt.Errorf("no components to project onto (%d x %d input)", n, d))
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, pfx.Err(fmt.Errorf("principal component decomposition failed"))
	}

	var vec mat.Dense
	pc.VectorsTo(&vec)

	var proj mat.Dense
	proj.Mul(x, vec.Slice(0, d, 0, components))

	return &proj, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
