// Package survival estimates right-censored survival curves and compares
// them across groups.
package survival

import (
	"fmt"
	"sort"

	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/stat/distuv"
)

// Curve is a Kaplan-Meier product-limit estimate. The slices are parallel:
// at Time[i], SurvProb[i] is the estimated survival probability, NRisk[i]
// the number at risk just before Time[i], and NEvents[i] the events at
// Time[i]. Only times with at least one event contribute a point.
type Curve struct {
	Time     []float64
	SurvProb []float64
	NRisk    []int
	NEvents  []int
}

// KaplanMeier fits the product-limit estimator to right-censored data.
// events[i] is 1 if the event was observed at times[i] and 0 if the
// observation was censored there.
func KaplanMeier(times []float64, events []int) (*Curve, error) {
	if len(times) != len(events) {
		return nil, pfx.Err(fmt.Errorf("times (%d) and events (%d) differ in length", len(times), len(events)))
	}
	if len(times) == 0 {
		return nil, pfx.Err(fmt.Errorf("no observations"))
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return times[order[i]] < times[order[j]] })

	curve := &Curve{}
	surv := 1.0
	atRisk := len(times)

	for i := 0; i < len(order); {
		t := times[order[i]]

		var d, n int
		for i < len(order) && times[order[i]] == t {
			if events[order[i]] == 1 {
				d++
			}
			n++
			i++
		}

		if d > 0 {
			surv *= 1 - float64(d)/float64(atRisk)
			curve.Time = append(curve.Time, t)
			curve.SurvProb = append(curve.SurvProb, surv)
			curve.NRisk = append(curve.NRisk, atRisk)
			curve.NEvents = append(curve.NEvents, d)
		}

		atRisk -= n
	}

	return curve, nil
}

// LogRank compares survival across groups with the log-rank test. groups
// assigns each observation a small integer label; the statistic is
// chi-square distributed with (number of groups - 1) degrees of freedom
// under the null of identical survival.
func LogRank(times []float64, events, groups []int) (chisq, p float64, err error) {
	if len(times) != len(events) || len(times) != len(groups) {
		return 0, 0, pfx.Err(fmt.Errorf("times (%d), events (%d) and groups (%d) differ in length", len(times), len(events), len(groups)))
	}

	labels := make(map[int]int)
	for _, g := range groups {
		if _, exists := labels[g]; !exists {
			labels[g] = len(labels)
		}
	}
	k := len(labels)
	if k < 2 {
		return 0, 0, pfx.Err(fmt.Errorf("log-rank needs at least two groups, got %d", k))
	}

	eventTimes := distinctEventTimes(times, events)
	if len(eventTimes) == 0 {
		return 0, 0, pfx.Err(fmt.Errorf("no events observed"))
	}

	observed := make([]float64, k)
	expected := make([]float64, k)

	for _, t := range eventTimes {
		var n, d int
		nGroup := make([]int, k)
		dGroup := make([]int, k)

		for i := range times {
			g := labels[groups[i]]
			if times[i] >= t {
				n++
				nGroup[g]++
			}
			if times[i] == t && events[i] == 1 {
				d++
				dGroup[g]++
			}
		}

		for g := 0; g < k; g++ {
			observed[g] += float64(dGroup[g])
			expected[g] += float64(d) * float64(nGroup[g]) / float64(n)
		}
	}

	for g := 0; g < k; g++ {
		if expected[g] == 0 {
			continue
		}
		diff := observed[g] - expected[g]
		chisq += diff * diff / expected[g]
	}

	p = distuv.ChiSquared{K: float64(k - 1)}.Survival(chisq)

	return chisq, p, nil
}

func distinctEventTimes(times []float64, events []int) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for i, t := range times {
		if events[i] != 1 {
			continue
		}
		if _, exists := seen[t]; exists {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Float64s(out)
	return out
}
