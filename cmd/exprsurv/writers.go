package main

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"
)

type kmRow struct {
	Group    string  `csv:"group"`
	Time     float64 `csv:"time"`
	SurvProb float64 `csv:"surv_prob"`
	NRisk    int     `csv:"n_risk"`
	NEvents  int     `csv:"n_events"`
}

type clusterRow struct {
	PatientID string  `csv:"patient_id"`
	Cluster   int     `csv:"cluster"`
	PC1       float64 `csv:"pc1"`
	PC2       float64 `csv:"pc2"`
}

func init() {
	// Result tables are tab-delimited like the inputs.
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		w := csv.NewWriter(out)
		w.Comma = '\t'
		return gocsv.NewSafeCSVWriter(w)
	})
}

func writeCurves(path string, curves []namedCurve) error {
	var rows []*kmRow
	for _, nc := range curves {
		for i := range nc.Curve.Time {
			rows = append(rows, &kmRow{
				Group:    nc.Name,
				Time:     nc.Curve.Time[i],
				SurvProb: nc.Curve.SurvProb[i],
				NRisk:    nc.Curve.NRisk[i],
				NEvents:  nc.Curve.NEvents[i],
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

func writeClusters(path string, patients []string, labels []int, proj *mat.Dense) error {
	_, nComponents := proj.Dims()

	rows := make([]*clusterRow, 0, len(patients))
	for i, id := range patients {
		row := &clusterRow{PatientID: id, Cluster: labels[i] + 1, PC1: proj.At(i, 0)}
		if nComponents > 1 {
			row.PC2 = proj.At(i, 1)
		}
		rows = append(rows, row)
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}
