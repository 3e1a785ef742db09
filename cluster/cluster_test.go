package cluster

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// blobs is two well-separated groups of points in 2D.
func blobs() *mat.Dense {
	return mat.NewDense(6, 2, []float64{
		0.0, 0.1,
		0.2, 0.0,
		0.1, 0.2,
		10.0, 10.1,
		10.2, 10.0,
		10.1, 10.2,
	})
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	labels, err := KMeans(blobs(), 2, 1, 100)
	if err != nil {
		t.Fatal(err)
	}

	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Errorf("first blob split across clusters: %v", labels)
	}
	if labels[3] != labels[4] || labels[4] != labels[5] {
		t.Errorf("second blob split across clusters: %v", labels)
	}
	if labels[0] == labels[3] {
		t.Errorf("blobs merged into one cluster: %v", labels)
	}
}

func TestKMeansDeterministicForFixedSeed(t *testing.T) {
	a, err := KMeans(blobs(), 2, 42, 100)
	if err != nil {
		t.Fatal(err)
	}
	b, err := KMeans(blobs(), 2, 42, 100)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs with the same seed diverge: %v vs %v", a, b)
		}
	}
}

func TestKMeansRejectsBadK(t *testing.T) {
	if _, err := KMeans(blobs(), 0, 1, 10); err == nil {
		t.Error("k = 0 must fail")
	}
	if _, err := KMeans(blobs(), 7, 1, 10); err == nil {
		t.Error("k > n must fail")
	}
}

func TestPCADimensions(t *testing.T) {
	proj, err := PCA(blobs(), 2)
	if err != nil {
		t.Fatal(err)
	}

	r, c := proj.Dims()
	if r != 6 || c != 2 {
		t.Errorf("projection is %dx%d, want 6x2", r, c)
	}
}

func TestPCASeparatesBlobs(t *testing.T) {
	proj, err := PCA(blobs(), 1)
	if err != nil {
		t.Fatal(err)
	}

	// The first component must separate the two blobs: all of one blob on
	// one side of the midpoint, all of the other on the opposite side.
	mid := (proj.At(0, 0) + proj.At(3, 0)) / 2
	for i := 0; i < 3; i++ {
		if (proj.At(i, 0) < mid) != (proj.At(0, 0) < mid) {
			t.Errorf("row %d projected on the wrong side", i)
		}
	}
	for i := 3; i < 6; i++ {
		if (proj.At(i, 0) < mid) != (proj.At(3, 0) < mid) {
			t.Errorf("row %d projected on the wrong side", i)
		}
	}
}
