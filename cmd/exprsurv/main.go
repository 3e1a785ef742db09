// exprsurv runs a one-shot expression/survival workflow: it loads an
// RNA-seq count matrix and a matched clinical table, filters and
// variance-stabilizes the counts, expresses tumor samples as z-scores
// against the normal-tissue controls, joins to survival outcomes, and fits
// stratified Kaplan-Meier curves for one gene of interest and for k-means
// clusters over the top-variance genes.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/carbocation/exprsurv/clinical"
	"github.com/carbocation/exprsurv/cluster"
	"github.com/carbocation/exprsurv/cohort"
	"github.com/carbocation/exprsurv/exprmat"
	"github.com/carbocation/exprsurv/survival"
	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/mat"
)

func main() {
	var expressionPath, clinicalPath, outDir, gene string
	var topGenes, clusters int
	var seed int64
	var zCut float64
	var plot bool

	flag.StringVar(&expressionPath, "expression", "", "Tab-delimited gene-by-sample count matrix. Header row of sample barcodes, first column SYMBOL|ENTREZID.")
	flag.StringVar(&clinicalPath, "clinical", "", "Tab-delimited clinical table in transposed layout (rows are fields, columns are patients).")
	flag.StringVar(&gene, "gene", "TP53", "Gene symbol for the single-gene stratified survival analysis.")
	flag.IntVar(&topGenes, "top", 1000, "Number of top-variance genes used as clustering features.")
	flag.IntVar(&clusters, "clusters", 2, "Number of k-means clusters.")
	flag.Int64Var(&seed, "seed", 1, "Random seed for the clustering step.")
	flag.Float64Var(&zCut, "zcut", 1.96, "Absolute z-score at or above which a tumor sample counts as dysregulated.")
	flag.StringVar(&outDir, "out", ".", "Directory for result tables and plots.")
	flag.BoolVar(&plot, "plot", false, "Also render Kaplan-Meier and PCA PNGs.")
	flag.Parse()

	if expressionPath == "" || clinicalPath == "" {
		flag.PrintDefaults()
		return
	}

	if err := run(expressionPath, clinicalPath, outDir, gene, topGenes, clusters, seed, zCut, plot); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}

func run(expressionPath, clinicalPath, outDir, gene string, topGenes, clusters int, seed int64, zCut float64, plot bool) error {
	f, err := os.Open(expressionPath)
	if err != nil {
		return pfx.Err(err)
	}
	raw, err := exprmat.Load(f)
	f.Close()
	if err != nil {
		return err
	}
	log.Println("Loaded", len(raw.Genes), "genes x", len(raw.Samples), "samples from", expressionPath)

	filtered := raw.FilterLowExpression()
	log.Println("Dropped", len(raw.Genes)-len(filtered.Genes), "low-expression genes;", len(filtered.Genes), "remain")

	tumorCols := exprmat.TumorColumns(filtered.Samples)
	controlCols := exprmat.NormalColumns(filtered.Samples)
	log.Println(len(tumorCols), "tumor and", len(controlCols), "normal sample columns")

	stabilized, err := filtered.VarianceStabilize(tumorCols)
	if err != nil {
		return err
	}

	z, err := stabilized.ZScores(controlCols, tumorCols)
	if err != nil {
		return err
	}
	if collapsed := len(tumorCols) - len(z.Samples); collapsed > 0 {
		log.Println("Collapsed", collapsed, "duplicate tumor columns (first per patient wins)")
	}

	cf, err := os.Open(clinicalPath)
	if err != nil {
		return pfx.Err(err)
	}
	table, err := clinical.Load(cf)
	cf.Close()
	if err != nil {
		return err
	}
	usable, excluded := table.Usable()
	log.Println("Clinical:", len(table.Patients), "patients;", excluded, "excluded for missing survival time")

	co, err := cohort.Match(usable, z)
	if err != nil {
		return err
	}
	log.Println("Matched cohort:", len(co.Patients), "patients (dropped", co.DroppedClinical, "clinical-only,", co.DroppedExpression, "expression-only)")

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return pfx.Err(err)
	}

	if err := singleGeneAnalysis(co, gene, zCut, outDir, plot); err != nil {
		return err
	}

	// Restrict the stabilized matrix to the tumor columns before selecting
	// cohort patients: after renaming, a matched normal shares its patient
	// identifier with the tumor sample, and only the tumor value may feed
	// the clustering features.
	tumorStabilized, err := stabilized.ColumnsAt(tumorCols)
	if err != nil {
		return err
	}

	return clusterAnalysis(co, tumorStabilized, topGenes, clusters, seed, outDir, plot)
}

// singleGeneAnalysis stratifies the cohort on one gene's z-score and
// compares survival between the dysregulated and normal groups.
func singleGeneAnalysis(co *cohort.Cohort, gene string, zCut float64, outDir string, plot bool) error {
	row := -1
	for i, g := range co.Expression.Genes {
		if strings.EqualFold(g, gene) {
			row = i
			break
		}
	}
	if row < 0 {
		return pfx.Err(fmt.Errorf("gene %q is not present after filtering", gene))
	}

	allTimes, allEvents := co.Times()

	var times []float64
	var events, groups []int
	var noSignal int
	for i, z := range co.Expression.Data[row] {
		if math.IsNaN(z) {
			// Undefined z-score (zero control spread): no signal, not a
			// large magnitude.
			noSignal++
			continue
		}
		g := 0
		if math.Abs(z) >= zCut {
			g = 1
		}
		times = append(times, allTimes[i])
		events = append(events, allEvents[i])
		groups = append(groups, g)
	}
	if noSignal > 0 {
		log.Println(gene+":", noSignal, "patients excluded for undefined z-scores")
	}

	chisq, p, err := survival.LogRank(times, events, groups)
	if err != nil {
		return err
	}
	log.Printf("%s: log-rank chisq = %.3f, p = %.4g\n", gene, chisq, p)

	curves, err := groupCurves(times, events, groups, map[int]string{0: "normal", 1: "dysregulated"})
	if err != nil {
		return err
	}

	stem := strings.ToLower(gene)
	if err := writeCurves(filepath.Join(outDir, "km_"+stem+".tsv"), curves); err != nil {
		return err
	}
	if plot {
		return plotCurves(filepath.Join(outDir, "km_"+stem+".png"), gene, curves)
	}

	return nil
}

// clusterAnalysis clusters the cohort's tumor samples on the top-variance
// genes of the tumor-only stabilized matrix and compares survival across
// clusters.
func clusterAnalysis(co *cohort.Cohort, tumorStabilized *exprmat.Matrix, topGenes, clusters int, seed int64, outDir string, plot bool) error {
	tumor, err := tumorStabilized.SelectColumns(co.Patients)
	if err != nil {
		return err
	}

	features := tumor.TopVarianceRows(topGenes)
	log.Println("Clustering", len(co.Patients), "samples on", len(features.Genes), "top-variance genes")

	// Samples as rows.
	x := mat.DenseCopyOf(features.Dense().T())

	labels, err := cluster.KMeans(x, clusters, seed, 100)
	if err != nil {
		return err
	}

	times, events := co.Times()
	chisq, p, err := survival.LogRank(times, events, labels)
	if err != nil {
		return err
	}
	log.Printf("clusters: log-rank chisq = %.3f, p = %.4g\n", chisq, p)

	names := make(map[int]string)
	for _, l := range labels {
		names[l] = fmt.Sprintf("cluster%d", l+1)
	}
	curves, err := groupCurves(times, events, labels, names)
	if err != nil {
		return err
	}
	if err := writeCurves(filepath.Join(outDir, "km_clusters.tsv"), curves); err != nil {
		return err
	}

	proj, err := cluster.PCA(x, 2)
	if err != nil {
		return err
	}
	if err := writeClusters(filepath.Join(outDir, "clusters.tsv"), co.Patients, labels, proj); err != nil {
		return err
	}

	if plot {
		if err := plotCurves(filepath.Join(outDir, "km_clusters.png"), "clusters", curves); err != nil {
			return err
		}
		return plotPCA(filepath.Join(outDir, "pca.png"), labels, proj)
	}

	return nil
}

type namedCurve struct {
	Name  string
	Curve *survival.Curve
}

// groupCurves fits one Kaplan-Meier curve per group label, in label order.
func groupCurves(times []float64, events, groups []int, names map[int]string) ([]namedCurve, error) {
	labels := make([]int, 0, len(names))
	for l := range names {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	out := make([]namedCurve, 0, len(labels))
	for _, l := range labels {
		var gTimes []float64
		var gEvents []int
		for i, g := range groups {
			if g != l {
				continue
			}
			gTimes = append(gTimes, times[i])
			gEvents = append(gEvents, events[i])
		}
		if len(gTimes) == 0 {
			continue
		}

		curve, err := survival.KaplanMeier(gTimes, gEvents)
		if err != nil {
			return nil, err
		}
		out = append(out, namedCurve{Name: names[l], Curve: curve})
	}

	return out, nil
}
