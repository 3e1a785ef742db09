// Package clinical reads patient outcome tables and derives the
// right-censored survival time and event indicator used by the survival
// analyses.
package clinical

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/exprsurv/barcode"
	"github.com/carbocation/pfx"
	"gopkg.in/guregu/null.v3"
)

// Field names required of the clinical source.
const (
	fieldVitalStatus        = "vital_status"
	fieldDaysToDeath        = "days_to_death"
	fieldDaysToLastFollowup = "days_to_last_followup"
)

// VitalStatusAlive is the literal against which death_event is derived.
// The comparison is case-sensitive: any other value counts as an event.
const VitalStatusAlive = "alive"

// Patient is one clinical record. NewDeath is the right-censored survival
// time: the observed death time when present, otherwise the last follow-up
// time, otherwise invalid. An invalid NewDeath means the patient has no
// usable survival time and must be excluded from survival analyses, never
// defaulted to zero.
type Patient struct {
	PatientID          string
	VitalStatus        string
	DaysToDeath        null.Float
	DaysToLastFollowup null.Float
	NewDeath           null.Float
	DeathEvent         int
}

// Table holds one Patient per row.
type Table struct {
	Patients []Patient
}

// Load reads a tab-delimited clinical table in transposed (field-per-row)
// layout: the header row names the patients and each subsequent row carries
// one field, named in its first cell. Patient identifiers are normalized to
// canonical barcodes. A missing required field is a data-format error.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(header) < 2 {
		return nil, pfx.Err(fmt.Errorf("header names %d columns; need at least one patient", len(header)))
	}
	ids := header[1:]

	fields := make(map[string][]string)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}
		fields[rec[0]] = rec[1:]
	}

	for _, name := range []string{fieldVitalStatus, fieldDaysToDeath, fieldDaysToLastFollowup} {
		if _, exists := fields[name]; !exists {
			return nil, pfx.Err(fmt.Errorf("clinical table is missing the %q field", name))
		}
	}

	t := &Table{Patients: make([]Patient, 0, len(ids))}
	for i, id := range ids {
		p := Patient{
			PatientID:   barcode.Normalize(id),
			VitalStatus: fields[fieldVitalStatus][i],
		}

		if p.DaysToDeath, err = parseDays(fields[fieldDaysToDeath][i]); err != nil {
			return nil, pfx.Err(fmt.Errorf("patient %s, %s: %v", p.PatientID, fieldDaysToDeath, err))
		}
		if p.DaysToLastFollowup, err = parseDays(fields[fieldDaysToLastFollowup][i]); err != nil {
			return nil, pfx.Err(fmt.Errorf("patient %s, %s: %v", p.PatientID, fieldDaysToLastFollowup, err))
		}

		p.derive()
		t.Patients = append(t.Patients, p)
	}

	return t, nil
}

// derive fills NewDeath and DeathEvent from the raw fields.
func (p *Patient) derive() {
	switch {
	case p.DaysToDeath.Valid:
		p.NewDeath = p.DaysToDeath
	case p.DaysToLastFollowup.Valid:
		p.NewDeath = p.DaysToLastFollowup
	}

	if p.VitalStatus != VitalStatusAlive {
		p.DeathEvent = 1
	}
}

// Usable returns the patients with a valid survival time, plus the count of
// those excluded for having none.
func (t *Table) Usable() (*Table, int) {
	out := &Table{}
	var excluded int
	for _, p := range t.Patients {
		if !p.NewDeath.Valid {
			excluded++
			continue
		}
		out.Patients = append(out.Patients, p)
	}

	return out, excluded
}

// naValues are the sentinels clinical exports use for missing data.
var naValues = map[string]struct{}{
	"":                 {},
	"NA":               {},
	"[Not Available]":  {},
	"[Not Applicable]": {},
	"null":             {},
}

func parseDays(s string) (null.Float, error) {
	s = strings.TrimSpace(s)
	if _, isNA := naValues[s]; isNA {
		return null.Float{}, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}, fmt.Errorf("cannot parse %q as days", s)
	}

	return null.FloatFrom(v), nil
}
