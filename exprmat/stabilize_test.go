package exprmat

import (
	"math"
	"testing"
)

func TestVarianceStabilizeEqualColumns(t *testing.T) {
	// Identical columns have unit size factors, so the transform reduces
	// to log2(1+x).
	m := &Matrix{
		Genes:   []string{"A|1", "B|2"},
		Samples: []string{"TCGA-A1-A0SB-01A", "TCGA-A1-A0SD-01A"},
		Data: [][]float64{
			{3, 3},
			{15, 15},
		},
	}

	got, err := m.VarianceStabilize([]int{0, 1})
	if err != nil {
		t.Fatal(err)
	}

	want := [][]float64{
		{2, 2},       // log2(1+3)
		{4, 4},       // log2(1+15)
	}
	for i := range want {
		for j := range want[i] {
			if math.Abs(got.Data[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("stabilized[%d][%d] = %v, want %v", i, j, got.Data[i][j], want[i][j])
			}
		}
	}
}

func TestVarianceStabilizeRenamesColumns(t *testing.T) {
	m := &Matrix{
		Genes:   []string{"A|1"},
		Samples: []string{"tcga.a1.a0sb.01a.11r", "TCGA-A1-A0SD-11A-33R"},
		Data:    [][]float64{{2, 4}},
	}

	got, err := m.VarianceStabilize([]int{0})
	if err != nil {
		t.Fatal(err)
	}

	if got.Samples[0] != "TCGA-A1-A0SB" || got.Samples[1] != "TCGA-A1-A0SD" {
		t.Errorf("renamed columns = %v", got.Samples)
	}
}

func TestVarianceStabilizeScalesBySizeFactor(t *testing.T) {
	// The second column is the first scaled by 2; its size factor should
	// absorb the scaling so stabilized values match across columns.
	m := &Matrix{
		Genes:   []string{"A|1", "B|2", "C|3"},
		Samples: []string{"s1-xxxxxxxxxxxxx", "s2-xxxxxxxxxxxxx"},
		Data: [][]float64{
			{2, 4},
			{8, 16},
			{5, 10},
		},
	}

	got, err := m.VarianceStabilize([]int{0, 1})
	if err != nil {
		t.Fatal(err)
	}

	for i := range got.Data {
		// Size factors are defined up to a common scale; equality across
		// columns is the invariant that matters.
		if math.Abs(got.Data[i][0]-got.Data[i][1]) > 1e-9 {
			t.Errorf("gene %d: columns diverge after stabilization: %v vs %v", i, got.Data[i][0], got.Data[i][1])
		}
	}
}

func TestVarianceStabilizeRejectsEmptyDesign(t *testing.T) {
	m := &Matrix{Genes: []string{"A|1"}, Samples: []string{"s1"}, Data: [][]float64{{1}}}
	if _, err := m.VarianceStabilize(nil); err == nil {
		t.Error("empty tumor design must fail")
	}
}
