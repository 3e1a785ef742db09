package exprmat

import (
	"fmt"
	"math"

	"github.com/carbocation/exprsurv/barcode"
	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"
)

// VarianceStabilize normalizes raw counts so that variance no longer tracks
// the mean: each column is scaled by a median-of-ratios size factor and the
// result is put on a log2(1+x) scale. tumorCols names the treatment columns
// of the design; the transform itself is computed blind to the design, so
// the indices are validated but do not alter the output. Column identifiers
// are rewritten to canonical patient barcodes, which maps a tumor sample and
// its matched normal onto the same identifier; consumers must therefore
// address columns by the tumorCols index set (ZScores, or ColumnsAt for the
// clustering features), never by identifier, with the first column winning
// within that set when two tumor columns share a patient.
func (m *Matrix) VarianceStabilize(tumorCols []int) (*Matrix, error) {
	if len(tumorCols) == 0 {
		return nil, pfx.Err(fmt.Errorf("no tumor columns in design"))
	}
	for _, c := range tumorCols {
		if c < 0 || c >= len(m.Samples) {
			return nil, pfx.Err(fmt.Errorf("tumor column index %d out of range (%d samples)", c, len(m.Samples)))
		}
	}

	factors, err := m.sizeFactors()
	if err != nil {
		return nil, err
	}

	out := &Matrix{
		Genes:   m.Genes,
		Samples: make([]string, len(m.Samples)),
		Data:    make([][]float64, len(m.Data)),
	}
	for j, s := range m.Samples {
		out.Samples[j] = barcode.Normalize(s)
	}
	for i, row := range m.Data {
		stabilized := make([]float64, len(row))
		for j, v := range row {
			stabilized[j] = math.Log2(1 + v/factors[j])
		}
		out.Data[i] = stabilized
	}

	return out, nil
}

// sizeFactors computes the median-of-ratios scaling factor for each sample
// column. The per-gene reference is the geometric mean across samples;
// genes with a zero count anywhere are excluded from the reference since
// their geometric mean collapses to zero.
func (m *Matrix) sizeFactors() ([]float64, error) {
	usable := make([]int, 0, len(m.Data))
	reference := make([]float64, 0, len(m.Data))

rows:
	for i, row := range m.Data {
		var logSum float64
		for _, v := range row {
			if v <= 0 {
				continue rows
			}
			logSum += math.Log(v)
		}
		usable = append(usable, i)
		reference = append(reference, math.Exp(logSum/float64(len(row))))
	}

	if len(usable) == 0 {
		return nil, pfx.Err(fmt.Errorf("no gene has nonzero counts in every sample; cannot derive size factors"))
	}

	factors := make([]float64, len(m.Samples))
	ratios := make([]float64, len(usable))
	for j := range m.Samples {
		for k, i := range usable {
			ratios[k] = m.Data[i][j] / reference[k]
		}

		med, err := stats.Median(ratios)
		if err != nil {
			return nil, pfx.Err(err)
		}
		if med <= 0 {
			return nil, pfx.Err(fmt.Errorf("size factor for column %q is not positive", m.Samples[j]))
		}
		factors[j] = med
	}

	return factors, nil
}
