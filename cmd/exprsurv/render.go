package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/carbocation/exprsurv/survival"
	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/mat"
)

func plotCurves(filename, title string, curves []namedCurve) error {
	series := make([]chart.Series, 0, len(curves))
	for _, nc := range curves {
		xs, ys := stepPoints(nc.Curve)
		series = append(series, chart.ContinuousSeries{
			Name:    nc.Name,
			XValues: xs,
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  512,
		Height: 384,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(filename, graph)
}

// stepPoints expands a Kaplan-Meier curve into step-function coordinates
// starting at (0, 1).
func stepPoints(c *survival.Curve) ([]float64, []float64) {
	xs := []float64{0}
	ys := []float64{1}

	prev := 1.0
	for i := range c.Time {
		xs = append(xs, c.Time[i], c.Time[i])
		ys = append(ys, prev, c.SurvProb[i])
		prev = c.SurvProb[i]
	}

	return xs, ys
}

func plotPCA(filename string, labels []int, proj *mat.Dense) error {
	n, nComponents := proj.Dims()
	if nComponents < 2 {
		// Too few samples for a 2D projection; nothing to draw.
		return nil
	}

	byCluster := make(map[int]*chart.ContinuousSeries)
	var order []int
	for i := 0; i < n; i++ {
		s, exists := byCluster[labels[i]]
		if !exists {
			s = &chart.ContinuousSeries{
				Name: fmt.Sprintf("cluster%d", labels[i]+1),
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
				},
			}
			byCluster[labels[i]] = s
			order = append(order, labels[i])
		}
		s.XValues = append(s.XValues, proj.At(i, 0))
		s.YValues = append(s.YValues, proj.At(i, 1))
	}

	series := make([]chart.Series, 0, len(order))
	for _, l := range order {
		series = append(series, *byCluster[l])
	}

	graph := chart.Chart{
		Title:  "PCA",
		Width:  512,
		Height: 384,
		XAxis:  chart.XAxis{Name: "PC1"},
		YAxis:  chart.YAxis{Name: "PC2"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(filename, graph)
}

func renderPNG(filename string, graph chart.Chart) error {
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return pfx.Err(err)
	}

	outFile, err := os.Create(filename)
	if err != nil {
		return pfx.Err(err)
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return pfx.Err(err)
	}

	return nil
}
