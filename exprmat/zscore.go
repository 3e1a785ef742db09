package exprmat

import (
	"fmt"
	"math"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runningvariance"
)

// ZScores expresses each tumor sample as standard deviations from the
// control distribution of its gene: (value - control mean) / control sample
// SD, computed over the control columns only. A gene whose control values
// are all equal has no usable spread; its tumor entries become NaN, which
// downstream consumers must treat as "no signal" rather than a magnitude.
// Output columns are the tumor columns only, first column winning when two
// tumor columns share one patient identifier. Gene labels are reduced to
// the symbol preceding the first '|'.
func (m *Matrix) ZScores(controlCols, tumorCols []int) (*Matrix, error) {
	if len(controlCols) == 0 {
		return nil, pfx.Err(fmt.Errorf("no control columns"))
	}
	if len(tumorCols) == 0 {
		return nil, pfx.Err(fmt.Errorf("no tumor columns"))
	}
	for _, c := range append(append([]int{}, controlCols...), tumorCols...) {
		if c < 0 || c >= len(m.Samples) {
			return nil, pfx.Err(fmt.Errorf("column index %d out of range (%d samples)", c, len(m.Samples)))
		}
	}

	seen := make(map[string]struct{})
	keep := make([]int, 0, len(tumorCols))
	for _, c := range tumorCols {
		id := m.Samples[c]
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		keep = append(keep, c)
	}

	out := &Matrix{
		Samples: make([]string, len(keep)),
		Genes:   make([]string, len(m.Genes)),
		Data:    make([][]float64, len(m.Data)),
	}
	for j, c := range keep {
		out.Samples[j] = m.Samples[c]
	}

	for i, row := range m.Data {
		rs := runningvariance.NewRunningStat()
		for _, c := range controlCols {
			rs.Push(row[c])
		}
		mean := rs.Mean()
		sd := rs.StandardDeviation()

		z := make([]float64, len(keep))
		for j, c := range keep {
			if sd == 0 || math.IsNaN(sd) {
				z[j] = math.NaN()
				continue
			}
			z[j] = (row[c] - mean) / sd
		}

		out.Genes[i] = geneSymbol(m.Genes[i])
		out.Data[i] = z
	}

	return out, nil
}

// geneSymbol reduces a composite "SYMBOL|ENTREZID" label to its symbol.
func geneSymbol(label string) string {
	if i := strings.Index(label, "|"); i >= 0 {
		return label[:i]
	}
	return label
}
