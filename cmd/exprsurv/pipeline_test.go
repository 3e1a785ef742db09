package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Raw counts are chosen as 2^v - 1 with unit size factors (three constant
// gene rows pin every column's median ratio at 1), so the stabilized value
// of the SHIFT gene is exactly v: controls {1,2,3,2} and two tumor samples
// shifted three control standard deviations up.
const testExpression = "gene_id\t" +
	"TCGA-A1-NB01-11A\tTCGA-A1-NB02-11A\tTCGA-A1-NB03-11A\tTCGA-A1-NB04-11A\t" +
	"TCGA-A1-A0SB-01A\tTCGA-A1-A0SD-01A\tTCGA-A1-A0SE-01A\tTCGA-A1-A0SF-01A\n" +
	"SHIFT|1\t1\t3\t7\t3\t20.84\t20.84\t3\t3\n" +
	"B|2\t15\t15\t15\t15\t15\t15\t15\t15\n" +
	"C|3\t31\t31\t31\t31\t31\t31\t31\t31\n" +
	"D|4\t7\t7\t7\t7\t7\t7\t7\t7\n"

// SB and SD (the shifted tumors) die early; SE dies late, SF is censored.
// A0SZ has no expression data and A0SY has no usable survival time.
const testClinical = "bcr_patient_barcode\ttcga.a1.a0sb\ttcga.a1.a0sd\ttcga.a1.a0se\ttcga.a1.a0sf\ttcga.a1.a0sz\ttcga.a1.a0sy\n" +
	"vital_status\tdead\tdead\tdead\talive\talive\talive\n" +
	"days_to_death\t100\t200\t900\tNA\tNA\tNA\n" +
	"days_to_last_followup\t90\t150\t850\t1000\t500\tNA\n"

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()

	exprPath := filepath.Join(dir, "expression.tsv")
	clinPath := filepath.Join(dir, "clinical.tsv")
	if err := os.WriteFile(exprPath, []byte(testExpression), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(clinPath, []byte(testClinical), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if err := run(exprPath, clinPath, outDir, "SHIFT", 2, 2, 1, 1.96, false); err != nil {
		t.Fatal(err)
	}

	km, err := os.ReadFile(filepath.Join(outDir, "km_shift.tsv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(km), "dysregulated") || !strings.Contains(string(km), "normal") {
		t.Errorf("km_shift.tsv is missing a stratum:\n%s", km)
	}

	if _, err := os.Stat(filepath.Join(outDir, "km_clusters.tsv")); err != nil {
		t.Error("km_clusters.tsv not written:", err)
	}

	assignments, err := os.ReadFile(filepath.Join(outDir, "clusters.tsv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(assignments)), "\n")
	if len(lines) != 5 { // header + 4 matched patients
		t.Errorf("clusters.tsv has %d lines, want 5:\n%s", len(lines), assignments)
	}
}

// A0SB carries both a matched normal and a tumor sample, with the normal
// column listed first. After renaming both collapse onto the patient
// identifier; the clustering features must carry the tumor value, so A0SB
// (tumor stabilized ~4.45) has to cluster with A0SD, not with the
// low-expression patients its normal sample resembles.
func TestRunMatchedNormalPrecedesTumor(t *testing.T) {
	expression := "gene_id\t" +
		"TCGA-A1-A0SB-11A\tTCGA-A1-NB02-11A\tTCGA-A1-NB03-11A\tTCGA-A1-NB04-11A\t" +
		"TCGA-A1-A0SB-01A\tTCGA-A1-A0SD-01A\tTCGA-A1-A0SE-01A\tTCGA-A1-A0SF-01A\n" +
		"SHIFT|1\t1\t3\t7\t3\t20.84\t20.84\t3\t3\n" +
		"B|2\t15\t15\t15\t15\t15\t15\t15\t15\n" +
		"C|3\t31\t31\t31\t31\t31\t31\t31\t31\n" +
		"D|4\t7\t7\t7\t7\t7\t7\t7\t7\n"

	dir := t.TempDir()
	exprPath := filepath.Join(dir, "expression.tsv")
	clinPath := filepath.Join(dir, "clinical.tsv")
	if err := os.WriteFile(exprPath, []byte(expression), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(clinPath, []byte(testClinical), 0o644); err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	if err := run(exprPath, clinPath, outDir, "SHIFT", 2, 2, 1, 1.96, false); err != nil {
		t.Fatal(err)
	}

	assignments, err := os.ReadFile(filepath.Join(outDir, "clusters.tsv"))
	if err != nil {
		t.Fatal(err)
	}

	clusterOf := make(map[string]string)
	lines := strings.Split(strings.TrimSpace(string(assignments)), "\n")
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		clusterOf[fields[0]] = fields[1]
	}
	if len(clusterOf) != 4 {
		t.Fatalf("clusters.tsv has %d patients, want 4:\n%s", len(clusterOf), assignments)
	}

	if clusterOf["TCGA-A1-A0SB"] != clusterOf["TCGA-A1-A0SD"] {
		t.Errorf("A0SB in cluster %s, A0SD in cluster %s; the shifted tumors must cluster together",
			clusterOf["TCGA-A1-A0SB"], clusterOf["TCGA-A1-A0SD"])
	}
	if clusterOf["TCGA-A1-A0SB"] == clusterOf["TCGA-A1-A0SE"] {
		t.Errorf("A0SB clustered with A0SE; its normal sample's values leaked into the feature matrix")
	}
	if clusterOf["TCGA-A1-A0SE"] != clusterOf["TCGA-A1-A0SF"] {
		t.Errorf("A0SE in cluster %s, A0SF in cluster %s; the unshifted tumors must cluster together",
			clusterOf["TCGA-A1-A0SE"], clusterOf["TCGA-A1-A0SF"])
	}
}

func TestRunUnknownGene(t *testing.T) {
	dir := t.TempDir()

	exprPath := filepath.Join(dir, "expression.tsv")
	clinPath := filepath.Join(dir, "clinical.tsv")
	if err := os.WriteFile(exprPath, []byte(testExpression), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(clinPath, []byte(testClinical), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(exprPath, clinPath, filepath.Join(dir, "out"), "NOSUCH", 2, 2, 1, 1.96, false); err == nil {
		t.Error("an absent gene symbol must fail")
	}
}
