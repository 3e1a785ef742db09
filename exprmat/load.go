package exprmat

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/carbocation/pfx"
)

// Load reads a tab-delimited gene-by-sample count matrix. The header row
// names the sample barcodes and the first column carries the gene label.
// Some exports place a single non-numeric descriptor row immediately after
// the header; if the first data row fails numeric coercion in every cell it
// is treated as that descriptor and discarded. Any other non-numeric cell
// is a data-format error identifying its line and column.
func Load(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(header) < 2 {
		return nil, pfx.Err(fmt.Errorf("header names %d columns; need a gene label column and at least one sample", len(header)))
	}

	m := &Matrix{Samples: append([]string{}, header[1:]...)}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}
		line++

		vals := make([]float64, len(rec)-1)
		bad := -1
		for i, cell := range rec[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				bad = i
				break
			}
			vals[i] = v
		}

		if bad >= 0 {
			if line == 2 && wholeRowNonNumeric(rec[1:]) {
				// Descriptor row.
				continue
			}
			return nil, pfx.Err(fmt.Errorf("line %d, column %d: cannot parse %q as a count", line, bad+2, rec[1+bad]))
		}

		m.Genes = append(m.Genes, rec[0])
		m.Data = append(m.Data, vals)
	}

	if len(m.Genes) == 0 {
		return nil, pfx.Err(fmt.Errorf("no gene rows found"))
	}

	return m, nil
}

func wholeRowNonNumeric(cells []string) bool {
	for _, cell := range cells {
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			return false
		}
	}
	return true
}

// FilterLowExpression drops gene rows whose zero-count fraction across all
// samples exceeds one half. Dropped rows do not participate in any
// downstream step.
func (m *Matrix) FilterLowExpression() *Matrix {
	out := &Matrix{Samples: m.Samples}

	half := float64(len(m.Samples)) / 2
	for i, row := range m.Data {
		var zeros int
		for _, v := range row {
			if v == 0 {
				zeros++
			}
		}
		if float64(zeros) > half {
			continue
		}
		out.Genes = append(out.Genes, m.Genes[i])
		out.Data = append(out.Data, row)
	}

	return out
}
