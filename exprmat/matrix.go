// Package exprmat holds a gene-by-sample expression matrix and the
// transformations applied to it before survival analysis: low-expression
// filtering, variance stabilization, and control-referenced z-scores.
package exprmat

import (
	"fmt"
	"sort"

	"github.com/carbocation/exprsurv/barcode"
	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Matrix is a dense gene-by-sample matrix. Genes labels rows, Samples
// labels columns, and Data is row-major with len(Genes) rows of
// len(Samples) values each.
type Matrix struct {
	Genes   []string
	Samples []string
	Data    [][]float64
}

// TumorColumns returns the indices of the sample identifiers that carry a
// tumor sample-type code.
func TumorColumns(samples []string) []int {
	var out []int
	for i, s := range samples {
		if barcode.IsTumor(s) {
			out = append(out, i)
		}
	}
	return out
}

// NormalColumns returns the indices of the sample identifiers that carry a
// normal (control) sample-type code.
func NormalColumns(samples []string) []int {
	var out []int
	for i, s := range samples {
		if barcode.IsNormal(s) {
			out = append(out, i)
		}
	}
	return out
}

// SelectColumns returns the sub-matrix holding the named columns, in the
// given order. When an identifier labels more than one column, the first
// column wins. Asking for an identifier that is not present is an error.
func (m *Matrix) SelectColumns(ids []string) (*Matrix, error) {
	byID := make(map[string]int)
	for i, s := range m.Samples {
		if _, seen := byID[s]; !seen {
			byID[s] = i
		}
	}

	cols := make([]int, 0, len(ids))
	for _, id := range ids {
		c, exists := byID[id]
		if !exists {
			return nil, pfx.Err(fmt.Errorf("no column named %q", id))
		}
		cols = append(cols, c)
	}

	out := &Matrix{
		Genes:   m.Genes,
		Samples: append([]string{}, ids...),
		Data:    make([][]float64, len(m.Data)),
	}
	for i, row := range m.Data {
		sub := make([]float64, len(cols))
		for j, c := range cols {
			sub[j] = row[c]
		}
		out.Data[i] = sub
	}

	return out, nil
}

// ColumnsAt returns the sub-matrix holding the columns at the given
// indices, in order. When two indices carry the same identifier the first
// wins and later ones are dropped. Tumor columns are materialized through
// this so that a patient's matched normal, which shares the patient
// identifier after renaming, can never stand in for the tumor sample.
func (m *Matrix) ColumnsAt(cols []int) (*Matrix, error) {
	seen := make(map[string]struct{})
	keep := make([]int, 0, len(cols))
	for _, c := range cols {
		if c < 0 || c >= len(m.Samples) {
			return nil, pfx.Err(fmt.Errorf("column index %d out of range (%d samples)", c, len(m.Samples)))
		}
		id := m.Samples[c]
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		keep = append(keep, c)
	}

	out := &Matrix{
		Genes:   m.Genes,
		Samples: make([]string, len(keep)),
		Data:    make([][]float64, len(m.Data)),
	}
	for j, c := range keep {
		out.Samples[j] = m.Samples[c]
	}
	for i, row := range m.Data {
		sub := make([]float64, len(keep))
		for j, c := range keep {
			sub[j] = row[c]
		}
		out.Data[i] = sub
	}

	return out, nil
}

// TopVarianceRows returns the k rows with the greatest variance across all
// columns, ordered by descending variance. Ties keep input order.
func (m *Matrix) TopVarianceRows(k int) *Matrix {
	if k > len(m.Data) {
		k = len(m.Data)
	}

	variances := make([]float64, len(m.Data))
	for i, row := range m.Data {
		variances[i] = stat.Variance(row, nil)
	}

	order := make([]int, len(m.Data))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return variances[order[i]] > variances[order[j]]
	})

	out := &Matrix{Samples: m.Samples}
	for _, i := range order[:k] {
		out.Genes = append(out.Genes, m.Genes[i])
		out.Data = append(out.Data, m.Data[i])
	}

	return out
}

// Dense copies the matrix into a gonum dense matrix (genes as rows).
func (m *Matrix) Dense() *mat.Dense {
	if len(m.Data) == 0 || len(m.Samples) == 0 {
		return nil
	}

	out := mat.NewDense(len(m.Data), len(m.Samples), nil)
	for i, row := range m.Data {
		out.SetRow(i, row)
	}
	return out
}
