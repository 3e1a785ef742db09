// Package cohort joins clinical records to expression columns on patient
// identifier and fixes a single common ordering for both.
package cohort

import (
	"fmt"

	"github.com/carbocation/exprsurv/clinical"
	"github.com/carbocation/exprsurv/exprmat"
	"github.com/carbocation/pfx"
)

// Cohort is the set of patients present on both sides. Row i of Clinical
// and column i of Expression refer to the same patient, whose identifier is
// Patients[i]. Identifiers present on only one side are dropped, not an
// error; the counts are kept for reporting.
type Cohort struct {
	Patients   []string
	Clinical   []clinical.Patient
	Expression *exprmat.Matrix

	DroppedClinical   int
	DroppedExpression int
}

// Match intersects the table's patients with the matrix's columns. The
// common order is the matrix column order restricted to the intersection.
func Match(t *clinical.Table, m *exprmat.Matrix) (*Cohort, error) {
	byID := make(map[string]clinical.Patient, len(t.Patients))
	for _, p := range t.Patients {
		byID[p.PatientID] = p
	}

	co := &Cohort{}
	matched := make(map[string]struct{})
	for _, id := range m.Samples {
		p, exists := byID[id]
		if !exists {
			co.DroppedExpression++
			continue
		}
		if _, seen := matched[id]; seen {
			co.DroppedExpression++
			continue
		}
		matched[id] = struct{}{}
		co.Patients = append(co.Patients, id)
		co.Clinical = append(co.Clinical, p)
	}
	co.DroppedClinical = len(t.Patients) - len(co.Patients)

	if len(co.Patients) == 0 {
		return nil, pfx.Err(fmt.Errorf("no patients in common between clinical table (%d) and expression matrix (%d columns)", len(t.Patients), len(m.Samples)))
	}

	sub, err := m.SelectColumns(co.Patients)
	if err != nil {
		return nil, err
	}
	co.Expression = sub

	return co, nil
}

// Times returns the survival times and event indicators in cohort order.
func (co *Cohort) Times() (times []float64, events []int) {
	times = make([]float64, len(co.Clinical))
	events = make([]int, len(co.Clinical))
	for i, p := range co.Clinical {
		times[i] = p.NewDeath.Float64
		events[i] = p.DeathEvent
	}
	return times, events
}
